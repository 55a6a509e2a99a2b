package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dorysbakehouse/bakehouse/backend/internal/config"
	"github.com/dorysbakehouse/bakehouse/backend/internal/store"
)

// app carries what every subcommand needs once the root command has run.
type app struct {
	cfg     *config.Config
	backend string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "datastore",
		Short: "Manage the bakehouse documents",
		Long: `datastore works on the documents the bakehouse backend keeps
(products, gallery, reviews, about, today and counters). It reads the same
environment and .env file as the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.backend == "" {
				a.backend = cfg.Data.Backend
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "document backend: file or mongo (default: DATA_BACKEND)")

	root.AddCommand(newInitCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newCopyCmd(a))
	return root
}

// open returns the backend of the given kind and its close function.
func (a *app) open(ctx context.Context, kind string) (store.Backend, func(), error) {
	return store.OpenBackend(ctx, kind, a.cfg)
}
