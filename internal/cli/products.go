package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"stockroom/internal/client"
	"stockroom/internal/dashboard"
	"stockroom/internal/domain"
	"stockroom/internal/validate"
)

const (
	categoryFlag    = "category"
	searchFlag      = "search"
	nameFlag        = "name"
	descriptionFlag = "description"
	priceFlag       = "price"
	quantityFlag    = "quantity"
	imageFlag       = "image"
)

func newProductsCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "List, inspect and edit products",
	}
	cmd.AddCommand(newProductsListCommand(g))
	cmd.AddCommand(newProductsStatsCommand(g))
	cmd.AddCommand(newProductsCreateCommand(g))
	cmd.AddCommand(newProductsUpdateCommand(g))
	cmd.AddCommand(newProductsDeleteCommand(g))
	return cmd
}

func listFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		categoryFlag: &cobraflags.StringFlag{
			Name:  categoryFlag,
			Value: "",
			Usage: "Only products in this category id",
		},
		searchFlag: &cobraflags.StringFlag{
			Name:  searchFlag,
			Value: "",
			Usage: "Case-insensitive name search",
		},
	}
}

func newProductsListCommand(g *globals) *cobra.Command {
	flags := listFlags()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := fetchProducts(cmd, g, flags)
			if err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), ps)
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newProductsStatsCommand(g *globals) *cobra.Command {
	flags := listFlags()
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show inventory totals and low-stock counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := fetchProducts(cmd, g, flags)
			if err != nil {
				return err
			}
			s := dashboard.Compute(ps)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total products:  %d\n", s.TotalProducts)
			fmt.Fprintf(w, "Total value:     $%s\n", s.TotalValue.StringFixed(2))
			fmt.Fprintf(w, "Low stock items: %d\n", s.LowStock)
			fmt.Fprintf(w, "Healthy items:   %d\n", s.Healthy)
			fmt.Fprintf(w, "Average price:   $%s\n", s.AveragePrice.StringFixed(2))
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func fetchProducts(cmd *cobra.Command, g *globals, flags map[string]cobraflags.Flag) ([]domain.Product, error) {
	catID, err := validate.OptionalID("category", flags[categoryFlag].GetString())
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(cmd)
	defer cancel()
	ps, err := g.client().ListProducts(ctx, domain.ProductFilter{CategoryID: catID})
	if err != nil {
		return nil, err
	}
	return dashboard.FilterByName(ps, flags[searchFlag].GetString()), nil
}

func printProducts(w io.Writer, ps []domain.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tQTY\tSTATUS")
	for _, p := range ps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.Name, p.CategoryName(), p.Price.StringFixed(2), p.Quantity, domain.StatusFor(p.Quantity))
	}
	return tw.Flush()
}

func productFlags(imageUsage string) map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		nameFlag:        &cobraflags.StringFlag{Name: nameFlag, Value: "", Usage: "Product name"},
		descriptionFlag: &cobraflags.StringFlag{Name: descriptionFlag, Value: "", Usage: "Product description"},
		priceFlag:       &cobraflags.StringFlag{Name: priceFlag, Value: "", Usage: "Unit price, e.g. 49.99"},
		quantityFlag:    &cobraflags.StringFlag{Name: quantityFlag, Value: "", Usage: "Units in stock"},
		categoryFlag:    &cobraflags.StringFlag{Name: categoryFlag, Value: "", Usage: "Category id"},
		imageFlag:       &cobraflags.StringFlag{Name: imageFlag, Value: "", Usage: imageUsage},
	}
}

// formFromFlags parses the product flags the same way the API parses a form.
func formFromFlags(flags map[string]cobraflags.Flag) (client.ProductForm, error) {
	keys := map[string]string{
		"name":        nameFlag,
		"description": descriptionFlag,
		"price":       priceFlag,
		"quantity":    quantityFlag,
		"category_id": categoryFlag,
	}
	f, err := validate.Product(func(k string) string { return flags[keys[k]].GetString() }, validate.ProductOptions{})
	if err != nil {
		return client.ProductForm{}, err
	}
	return client.ProductForm{Name: f.Name, Description: f.Description, Price: f.Price, Quantity: f.Quantity, CategoryID: f.CategoryID}, nil
}

func newProductsCreateCommand(g *globals) *cobra.Command {
	flags := productFlags("Path to the product image (required)")
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product with an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := formFromFlags(flags)
			if err != nil {
				return err
			}
			path := flags[imageFlag].GetString()
			if path == "" {
				return fmt.Errorf("--%s is required", imageFlag)
			}
			img, closer, err := client.OpenUpload(path)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, cancel := withTimeout(cmd)
			defer cancel()
			p, err := g.client().CreateProduct(ctx, form, img)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created product %d (%s)\n", p.ID, p.Image)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newProductsUpdateCommand(g *globals) *cobra.Command {
	flags := productFlags("Path to a replacement image (optional)")
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a product's fields, optionally with a new image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			form, err := formFromFlags(flags)
			if err != nil {
				return err
			}
			var img *client.Upload
			if path := flags[imageFlag].GetString(); path != "" {
				up, closer, err := client.OpenUpload(path)
				if err != nil {
					return err
				}
				defer closer.Close()
				img = up
			}

			ctx, cancel := withTimeout(cmd)
			defer cancel()
			p, err := g.client().UpdateProduct(ctx, id, form, img)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated product %d\n", p.ID)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newProductsDeleteCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if err := g.client().DeleteProduct(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted product %d\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, ok := validate.ID(s)
	if !ok {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
