package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dorysbakehouse/bakehouse/backend/internal/store"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a document as indented JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, closeFn, err := a.open(ctx, a.backend)
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}
			defer closeFn()

			raw, err := b.Read(ctx, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("document %q not found", args[0])
			}
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, raw, "", "  "); err != nil {
				return fmt.Errorf("show: %s is not valid JSON: %w", args[0], err)
			}
			buf.WriteByte('\n')
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}
