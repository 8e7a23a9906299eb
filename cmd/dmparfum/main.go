package main

import (
	"fmt"
	"os"

	"dmparfum/internal/app"
	"dmparfum/pkg/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg         *config.Config
	logger      *zap.Logger
	application *app.App
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dmparfum",
	Short: "Dm Parfum storefront: catalog, cart and WhatsApp ordering",
	Long: `dmparfum browses the perfume catalog published in a Google Sheet,
keeps a shopping cart in a local store and builds the WhatsApp links used
to place an order or contact the shop.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger, err = app.NewLogger(cfg.Log.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			if err := application.Close(); err != nil {
				logger.Warn("failed to close store", zap.Error(err))
			}
			application = nil
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// openApp builds the application on first use.
func openApp() (*app.App, error) {
	if application != nil {
		return application, nil
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	application = a
	return a, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(brandsCmd)
	rootCmd.AddCommand(featuredCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(contactCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
