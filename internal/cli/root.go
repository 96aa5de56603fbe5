// Package cli implements the fulfilctl command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	app "github.com/okian/fulfillment/internal/app"
	"github.com/okian/fulfillment/internal/config"
	"github.com/okian/fulfillment/pkg/logger"
)

// storeFlags are shared by every command that opens the document store.
type storeFlags struct {
	driver string
	path   string
	seed   string
	mode   string
}

func (f *storeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "store", "", "document store driver (memory or sqlite)")
	cmd.Flags().StringVar(&f.path, "path", "", "sqlite database file")
	cmd.Flags().StringVar(&f.seed, "seed", "", "YAML fixture applied before the command runs")
	cmd.Flags().StringVar(&f.mode, "lookup", "", "lookup mode (scan or indexed)")
}

// config loads the layered configuration and applies flag overrides on top.
func (f *storeFlags) config(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if f.driver != "" {
		cfg.StoreDriver = f.driver
	}
	if f.path != "" {
		cfg.SQLitePath = f.path
	}
	if f.seed != "" {
		cfg.SeedFile = f.seed
	}
	if f.mode != "" {
		cfg.LookupMode = f.mode
	}
	return cfg, cfg.Validate()
}

// RootCmd returns the fulfilctl root command.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fulfilctl",
		Short: "Inspect and exercise the conversational fulfillment backend",
		Long: `fulfilctl seeds document stores and replays single conversational turns
against the same intent handlers the webhook serves.`,
		SilenceUsage: true,
	}
	root.AddCommand(SeedCmd())
	root.AddCommand(AskCmd())
	root.AddCommand(IntentsCmd())
	return root
}

// IntentsCmd lists the routable intent names.
func IntentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "intents",
		Short: "List the intents the router dispatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := app.New(app.WithLogger(logger.Nop()))
			if err := svc.Start(cmd.Context()); err != nil {
				return err
			}
			defer svc.Stop()
			for _, name := range svc.Intents() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
