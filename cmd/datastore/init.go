package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dorysbakehouse/bakehouse/backend/internal/bakery"
	"github.com/dorysbakehouse/bakehouse/backend/internal/store"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create missing documents with their default content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, closeFn, err := a.open(ctx, a.backend)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			defer closeFn()

			st := store.New(b)
			out := cmd.OutOrStdout()
			for _, d := range bakery.Documents() {
				_, err := b.Read(ctx, d.Name)
				switch {
				case err == nil:
					fmt.Fprintf(out, "exists   %s\n", d.Name)
				case errors.Is(err, store.ErrNotFound):
					if err := st.Ensure(ctx, d.Name, d.Default); err != nil {
						return fmt.Errorf("init: %w", err)
					}
					fmt.Fprintf(out, "created  %s\n", d.Name)
				default:
					return fmt.Errorf("init: read %s: %w", d.Name, err)
				}
			}
			return nil
		},
	}
}
