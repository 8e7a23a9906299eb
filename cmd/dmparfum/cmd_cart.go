package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"dmparfum/internal/cart"
	"dmparfum/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var orderAsLink bool

// cartCmd is the parent command for the shopping cart
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
	Long: `The cart lives in the configured local store and survives restarts.
A cart untouched for longer than cart.max_idle is emptied on the next run.

Available subcommands:
  show   - Print the cart lines and totals
  add    - Add one unit of a product by id
  remove - Remove a line by index
  set    - Change the quantity of a line
  clear  - Empty the cart
  order  - Print the WhatsApp order message
  export - Write the cart to a JSON file
  import - Replace the cart with a JSON export
  watch  - Print the unit count whenever another process changes the cart`,
	RunE: runCartShow,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cart lines and totals",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add one unit of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove the line at index (as printed by show)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartSetCmd = &cobra.Command{
	Use:   "set <index> <quantity>",
	Short: "Set the quantity of a line",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartSet,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

var cartOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print the order message, or its WhatsApp link with --link",
	Args:  cobra.NoArgs,
	RunE:  runCartOrder,
}

var cartExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the cart to a JSON file (default dm_parfum_cart_<date>.json)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCartExport,
}

var cartImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the cart with a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartImport,
}

var cartWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow cart changes made by other processes",
	Args:  cobra.NoArgs,
	RunE:  runCartWatch,
}

func init() {
	cartOrderCmd.Flags().BoolVar(&orderAsLink, "link", false, "Print the wa.me link instead of the message")

	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartSetCmd)
	cartCmd.AddCommand(cartClearCmd)
	cartCmd.AddCommand(cartOrderCmd)
	cartCmd.AddCommand(cartExportCmd)
	cartCmd.AddCommand(cartImportCmd)
	cartCmd.AddCommand(cartWatchCmd)
}

func runCartShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	printCart(cmd.OutOrStdout(), a.Cart)
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	p, err := a.AddToCart(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s agregado al carrito (%d en total)\n", p.Name, a.Cart.QuantityOf(p.ID))
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	removed, err := a.Cart.RemoveItem(index)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s eliminado del carrito\n", removed.Name)
	return nil
}

func runCartSet(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	if err := a.Cart.SetQuantity(index, quantity); err != nil {
		return err
	}
	printCart(cmd.OutOrStdout(), a.Cart)
	return nil
}

func runCartClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	if err := a.Cart.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Carrito vaciado")
	return nil
}

func runCartOrder(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	if !orderAsLink {
		fmt.Fprintln(cmd.OutOrStdout(), a.Cart.OrderMessage(a.Config.Shop.Name))
		return nil
	}
	link, err := a.OrderLink()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func runCartExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	path := cart.ExportFileName(time.Now())
	if len(args) == 1 {
		path = args[0]
	}
	data, err := a.Cart.Export()
	if err != nil {
		return fmt.Errorf("failed to export cart: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Carrito exportado a %s\n", path)
	return nil
}

func runCartImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	if err := a.Cart.Import(data); err != nil {
		return err
	}
	printCart(cmd.OutOrStdout(), a.Cart)
	return nil
}

func runCartWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d\n", a.Cart.Count())

	stop := a.Cart.Watch(a.Store, func(count int) {
		fmt.Fprintf(out, "%d\n", count)
	})
	defer stop()
	logger.Info("watching cart", zap.String("driver", a.Config.Store.Driver))

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()
	logger.Info("cart watch stopped")
	return nil
}

// parseIndex turns the 1-based index shown by show into a line index.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", cart.ErrInvalidIndex, arg)
	}
	return n - 1, nil
}

func printCart(w io.Writer, c *cart.Cart) {
	lines := c.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(w, cart.EmptyCartMessage)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tBRAND\tQTY\tPRICE\tSUBTOTAL")
	for i, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i+1, l.Name, l.Brand, l.Quantity, utils.FormatCOP(l.Price), utils.FormatCOP(l.Subtotal()))
	}
	tw.Flush()
	fmt.Fprintf(w, "%d unidades, total %s\n", c.Count(), utils.FormatCOP(c.Total()))
}
