package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-extras/cobraflags"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"stockroom/internal/client"
)

const fileFlag = "file"

// SeedFile is the YAML fixture accepted by `stockroomctl seed`.
type SeedFile struct {
	Categories []string      `yaml:"categories"`
	Products   []SeedProduct `yaml:"products"`
}

type SeedProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Price       string `yaml:"price"`
	Quantity    int    `yaml:"quantity"`
	Image       string `yaml:"image"` // relative to the fixture file
}

func LoadSeed(path string) (SeedFile, error) {
	var f SeedFile
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Seed creates the fixture's categories, then its products. Categories are
// upserted, so re-running only adds products.
func Seed(ctx context.Context, api *client.Client, f SeedFile, baseDir string, out io.Writer) error {
	ids := map[string]int64{}
	upsert := func(name string) error {
		if _, ok := ids[name]; ok || name == "" {
			return nil
		}
		c, err := api.CreateCategory(ctx, name)
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		ids[name] = c.ID
		return nil
	}
	for _, name := range f.Categories {
		if err := upsert(name); err != nil {
			return err
		}
	}

	for _, sp := range f.Products {
		if err := upsert(sp.Category); err != nil {
			return err
		}
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return fmt.Errorf("product %q: bad price %q", sp.Name, sp.Price)
		}
		form := client.ProductForm{Name: sp.Name, Description: sp.Description, Price: price, Quantity: sp.Quantity}
		if id, ok := ids[sp.Category]; ok {
			form.CategoryID = &id
		}

		path := sp.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		img, closer, err := client.OpenUpload(path)
		if err != nil {
			return fmt.Errorf("product %q: %w", sp.Name, err)
		}
		p, err := api.CreateProduct(ctx, form, img)
		closer.Close()
		if err != nil {
			return fmt.Errorf("product %q: %w", sp.Name, err)
		}
		fmt.Fprintf(out, "created product %d %s\n", p.ID, p.Name)
	}
	fmt.Fprintf(out, "seeded %d categories, %d products\n", len(ids), len(f.Products))
	return nil
}

func newSeedCommand(g *globals) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		fileFlag: &cobraflags.StringFlag{
			Name:  fileFlag,
			Value: "seed.yaml",
			Usage: "YAML fixture with categories and products",
		},
	}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and products from a YAML fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags[fileFlag].GetString()
			f, err := LoadSeed(path)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return Seed(ctx, g.client(), f, filepath.Dir(path), cmd.OutOrStdout())
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}
