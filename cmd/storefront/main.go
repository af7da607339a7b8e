package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"puntomoda/internal/domain"
	"puntomoda/internal/logging"
	"puntomoda/internal/storefront"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type catalogFlags struct {
	api      string
	category string
	search   string
	size     string
	color    string
	minPrice string
	maxPrice string
	options  bool
	verbose  bool
}

func rootCmd() *cobra.Command {
	var f catalogFlags
	cmd := &cobra.Command{
		Use:          "storefront",
		Short:        "Browse the catalog the way the storefront shows it",
		Long:         "Loads the product listing from the API and falls back to the bundled sample catalog when the API is down or empty.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := f.pageFilter()
			if err != nil {
				return err
			}
			logger := zap.NewNop()
			if f.verbose {
				logger = logging.Must("development").Named("storefront")
				defer func() { _ = logger.Sync() }()
			}

			client := storefront.New(f.api, storefront.WithLogger(logger))
			cat, err := client.LoadCatalog(cmd.Context(), storefront.Query{
				Category: f.category,
				Search:   f.search,
				MinPrice: f.minPrice,
				MaxPrice: f.maxPrice,
			})
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			if cat.Fallback {
				fmt.Fprintln(cmd.ErrOrStderr(), cat.Warning)
			}

			if f.options {
				return renderOptions(cmd.OutOrStdout(), cat.Products)
			}
			return renderProducts(cmd.OutOrStdout(), storefront.FilterProducts(cat.Products, filter))
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.api, "api", "http://localhost:3000/api", "base URL of the storefront API")
	fl.StringVar(&f.category, "category", "", "only products in this category")
	fl.StringVar(&f.search, "search", "", "text search over name and description")
	fl.StringVar(&f.size, "size", "", "only products with a variant in this size")
	fl.StringVar(&f.color, "color", "", "only products with a variant in this color")
	fl.StringVar(&f.minPrice, "min-price", "", "lowest effective price")
	fl.StringVar(&f.maxPrice, "max-price", "", "highest effective price")
	fl.BoolVar(&f.options, "options", false, "print the available categories, sizes and colors instead of products")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log client errors")
	return cmd
}

// pageFilter repeats the server-side bounds locally; the bundled catalog
// ignores the query.
func (f catalogFlags) pageFilter() (storefront.PageFilter, error) {
	pf := storefront.PageFilter{Category: f.category, Size: f.size, Color: f.color}
	var err error
	if pf.MinPrice, err = parsePrice("min-price", f.minPrice); err != nil {
		return pf, err
	}
	if pf.MaxPrice, err = parsePrice("max-price", f.maxPrice); err != nil {
		return pf, err
	}
	return pf, nil
}

func parsePrice(flag, v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("--%s: %q is not a number", flag, v)
	}
	return &d, nil
}

func renderProducts(w io.Writer, products []domain.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products match the filters.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		price := p.EffectivePrice().String()
		if p.SalePrice != nil {
			price += " (was " + p.Price.String() + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.Name, p.Category, price, stock(p))
	}
	return tw.Flush()
}

func stock(p domain.Product) int {
	n := 0
	for _, v := range p.Variants {
		n += v.StockQuantity
	}
	return n
}

func renderOptions(w io.Writer, products []domain.Product) error {
	categories, sizes, colors := storefront.Options(products)
	_, err := fmt.Fprintf(w, "categories: %s\nsizes: %s\ncolors: %s\n",
		strings.Join(categories, ", "), strings.Join(sizes, ", "), strings.Join(colors, ", "))
	return err
}
