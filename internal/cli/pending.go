package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/modqueue-backend/internal/app"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

var folders = []domain.Folder{domain.FolderPending, domain.FolderRejected, domain.FolderMerged, domain.FolderSpam}

// NewPendingCommand creates the pending command.
func NewPendingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Summarize the queue by folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return runPending(ctx, cmd, a)
			})
		},
	}
}

func runPending(ctx context.Context, cmd *cobra.Command, a *app.App) error {
	counts := make([]int, len(folders))
	var (
		newest time.Time
		ok     bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range folders {
		g.Go(func() error {
			n, err := a.Changes.CountByFolder(gctx, f)
			if err != nil {
				return fmt.Errorf("count %s: %w", f, err)
			}
			counts[i] = n
			return nil
		})
	}
	g.Go(func() error {
		var err error
		newest, ok, err = a.Moderation.NewestPendingTime(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, f := range folders {
		fmt.Fprintf(out, "%-10s %d\n", f, counts[i])
	}
	if ok {
		fmt.Fprintf(out, "newest     %s\n", newest.Format(time.RFC3339))
	}
	return nil
}
