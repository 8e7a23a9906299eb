package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"dmparfum/internal/catalog"
	"dmparfum/internal/models"
	"dmparfum/utils"

	"github.com/spf13/cobra"
)

var (
	filterCategory string
	filterBrands   []string
	filterInStock  bool
	filterMin      string
	filterMax      string
	filterSearch   string
	filterSort     string
	outputJSON     bool
	featuredCount  int
)

// catalogCmd lists the filtered catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the catalog, optionally filtered and sorted",
	Long: `Loads the product feed and prints the products that pass every filter.

Sort keys: relevance, price-asc, price-desc, name-asc, name-desc

Example:
  dmparfum catalog --category femenino --brand Dior --brand Chanel --max 200000 --sort price-asc`,
	RunE: runCatalog,
}

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List the distinct brands of the catalog",
	RunE:  runBrands,
}

var featuredCmd = &cobra.Command{
	Use:   "featured",
	Short: "Show the products of the home carousel",
	RunE:  runFeatured,
}

// browseCmd drives a filter session from stdin
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively filter the catalog",
	Long: `Reads one control per line from stdin and prints the view after each change.
Plain text is a search (debounced); commands start with a colon:

  :cat <masculino|femenino|unisex|all>
  :brand <name>      toggle a brand
  :stock <on|off>
  :min <price>       empty clears the bound
  :max <price>
  :sort <key>
  :reset
  :refresh           fetch the feed again`,
	RunE: runBrowse,
}

func init() {
	f := catalogCmd.Flags()
	f.StringVar(&filterCategory, "category", models.CategoryAll, "Category: masculino, femenino, unisex or all")
	f.StringArrayVar(&filterBrands, "brand", nil, "Brand to include (repeatable)")
	f.BoolVar(&filterInStock, "in-stock", false, "Only products with units available")
	f.StringVar(&filterMin, "min", "", "Minimum price")
	f.StringVar(&filterMax, "max", "", "Maximum price")
	f.StringVar(&filterSearch, "search", "", "Case-insensitive name search")
	f.StringVar(&filterSort, "sort", string(models.SortRelevance), "Sort key")
	f.BoolVar(&outputJSON, "json", false, "Print JSON instead of a table")

	brandsCmd.Flags().BoolVar(&outputJSON, "json", false, "Print JSON instead of a list")
	featuredCmd.Flags().IntVarP(&featuredCount, "count", "n", catalog.DefaultFeaturedCount, "Number of products")
	featuredCmd.Flags().BoolVar(&outputJSON, "json", false, "Print JSON instead of a table")
}

func filterFromFlags() (models.FilterState, error) {
	fs := models.DefaultFilterState()
	fs.Category = filterCategory
	fs.SelectedBrands = filterBrands
	fs.StockOnly = filterInStock
	fs.PriceMin = catalog.ParseBound(filterMin)
	fs.PriceMax = catalog.ParseBound(filterMax)
	fs.SearchText = filterSearch
	fs.SortKey = models.SortKey(filterSort)
	if !fs.SortKey.Valid() {
		return fs, fmt.Errorf("unknown sort key %q", filterSort)
	}
	return fs, nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	fs, err := filterFromFlags()
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	snap := a.LoadCatalog(cmd.Context())
	warnDegraded(cmd.ErrOrStderr(), snap)

	view := catalog.ComputeView(snap.Products, fs)
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), view)
	}
	printView(cmd.OutOrStdout(), view, catalog.Status(snap.Products, view))
	return nil
}

func runBrands(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	snap := a.LoadCatalog(cmd.Context())
	warnDegraded(cmd.ErrOrStderr(), snap)

	brands := catalog.Brands(snap.Products)
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), brands)
	}
	for _, b := range brands {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.Slug, b.Name)
	}
	return nil
}

func runFeatured(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	snap := a.LoadCatalog(cmd.Context())
	warnDegraded(cmd.ErrOrStderr(), snap)

	featured := catalog.Featured(snap.Products, featuredCount)
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), featured)
	}
	printView(cmd.OutOrStdout(), featured, catalog.Status(snap.Products, featured))
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	snap := a.LoadCatalog(cmd.Context())
	warnDegraded(cmd.ErrOrStderr(), snap)

	out := cmd.OutOrStdout()
	session := catalog.NewSession(a.Catalog, func(view []models.Product, status catalog.ViewStatus) {
		printView(out, view, status)
	}, catalog.DefaultSearchDelay)
	session.Refresh()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ":") {
			session.Search(line)
			continue
		}
		name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
		arg = strings.TrimSpace(arg)
		switch name {
		case "cat":
			session.SetCategory(arg)
		case "brand":
			session.ToggleBrand(arg)
		case "stock":
			session.SetStockOnly(arg == "on")
		case "min":
			session.SetPriceMin(arg)
		case "max":
			session.SetPriceMax(arg)
		case "sort":
			if err := session.SetSort(models.SortKey(arg)); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
		case "reset":
			session.Reset()
		case "refresh":
			snap := a.LoadCatalog(cmd.Context())
			warnDegraded(cmd.ErrOrStderr(), snap)
			session.Refresh()
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "unknown control %q\n", name)
		}
	}
	session.Flush()
	return scanner.Err()
}

func warnDegraded(w io.Writer, snap *catalog.Snapshot) {
	if snap.Degraded {
		fmt.Fprintf(w, "warning: product feed unavailable (%v), showing backup catalog\n", snap.Err)
	}
}

func printView(w io.Writer, view []models.Product, status catalog.ViewStatus) {
	if status != catalog.StatusOK {
		fmt.Fprintln(w, status)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range view {
		stock := p.Stock.String()
		if p.Stock.Low() {
			stock += " ¡Últimas unidades!"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Brand, p.Category, utils.FormatCOP(p.Price), stock)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d products\n", len(view))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
