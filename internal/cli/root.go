package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stockroom/internal/client"
)

const (
	defaultAPI = "http://localhost:3000"
	timeout    = 30 * time.Second
)

type globals struct {
	api   string
	token string
}

func (g *globals) client() *client.Client { return client.New(g.api, g.token) }

// env resolves STOCKROOM_API and STOCKROOM_TOKEN defaults for the global flags.
func env() *viper.Viper {
	v := viper.New()
	v.SetDefault("STOCKROOM_API", defaultAPI)
	v.SetDefault("STOCKROOM_TOKEN", "")
	v.AutomaticEnv()
	return v
}

// NewRootCommand builds the stockroomctl command tree.
func NewRootCommand() *cobra.Command {
	v := env()
	g := &globals{}
	root := &cobra.Command{
		Use:           "stockroomctl",
		Short:         "Command-line client for the stockroom inventory API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.api, "api", v.GetString("STOCKROOM_API"), "API base URL (env STOCKROOM_API)")
	root.PersistentFlags().StringVar(&g.token, "token", v.GetString("STOCKROOM_TOKEN"), "bearer token for mutations (env STOCKROOM_TOKEN)")

	root.AddCommand(newHealthCommand(g))
	root.AddCommand(newProductsCommand(g))
	root.AddCommand(newCategoriesCommand(g))
	root.AddCommand(newSeedCommand(g))
	return root
}

func newHealthCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if err := g.client().Health(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", g.api)
			return nil
		},
	}
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}
