package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dorysbakehouse/bakehouse/backend/internal/bakery"
	"github.com/dorysbakehouse/bakehouse/backend/internal/store"
)

func newCopyCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "copy --from <backend> --to <backend>",
		Short: "Copy every document from one backend to another",
		Example: `  datastore copy --from file --to mongo
  datastore copy --from mongo --to file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == to {
				return fmt.Errorf("copy: --from and --to must differ")
			}
			ctx := cmd.Context()
			src, closeSrc, err := a.open(ctx, from)
			if err != nil {
				return fmt.Errorf("copy: open %s: %w", from, err)
			}
			defer closeSrc()
			dst, closeDst, err := a.open(ctx, to)
			if err != nil {
				return fmt.Errorf("copy: open %s: %w", to, err)
			}
			defer closeDst()

			n, err := copyDocuments(ctx, src, dst, cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("copy: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d document(s) copied from %s to %s\n", n, from, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source backend: file or mongo")
	cmd.Flags().StringVar(&to, "to", "", "target backend: file or mongo")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// copyDocuments copies every known document that exists in src to dst,
// overwriting what dst holds. It returns the number of documents written.
func copyDocuments(ctx context.Context, src, dst store.Backend, out io.Writer) (int, error) {
	var n int
	for _, d := range bakery.Documents() {
		raw, err := src.Read(ctx, d.Name)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(out, "skip     %s (missing)\n", d.Name)
			continue
		}
		if err != nil {
			return n, fmt.Errorf("read %s: %w", d.Name, err)
		}
		if err := dst.Write(ctx, d.Name, raw); err != nil {
			return n, fmt.Errorf("write %s: %w", d.Name, err)
		}
		fmt.Fprintf(out, "copied   %s\n", d.Name)
		n++
	}
	return n, nil
}
