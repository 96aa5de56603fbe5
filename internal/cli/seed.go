package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	app "github.com/okian/fulfillment/internal/app"
	"github.com/okian/fulfillment/internal/config"
	"github.com/okian/fulfillment/pkg/logger"
)

// SeedCmd loads a YAML fixture into a document store.
func SeedCmd() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load players, tournaments and matches into a store",
		Long: `Load a YAML fixture into the configured document store.

Examples:
  fulfilctl seed fixtures/sample.yaml --store sqlite --path fulfillment.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags.seed = args[0]
			cfg, err := flags.config(ctx)
			if err != nil {
				return err
			}
			store, err := app.OpenStore(ctx, cfg, logger.Nop())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			counts, err := store.Count(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", color.New(color.FgGreen).Sprint("seeded"), describe(cfg))
			for _, name := range []string{"players", "tournaments", "matches"} {
				fmt.Fprintf(out, "  %-12s %d\n", name, counts[name])
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func describe(cfg *config.Config) string {
	if cfg.StoreDriver == config.StoreSQLite {
		return cfg.StoreDriver + ":" + cfg.SQLitePath
	}
	return cfg.StoreDriver
}
