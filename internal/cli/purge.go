package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/modqueue-backend/internal/app"
)

// NewPurgeCommand creates the purge command. It is intended to be invoked
// by an external cron job.
func NewPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete rejected changes older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			age := olderThan
			if age <= 0 {
				age = rootOpts.cfg.Moderation.PurgeAfter
			}
			return rootOpts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				threshold := time.Now().Add(-age)

				deleted, err := a.Changes.PurgeRejected(ctx, threshold)
				if err != nil {
					a.Log.ErrorContext(ctx, "purge failed",
						slog.String("error", err.Error()),
						slog.Time("threshold", threshold),
					)
					return err
				}

				a.Log.InfoContext(ctx, "purge completed",
					slog.Int64("deleted", deleted),
					slog.Time("threshold", threshold),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", deleted)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention period (default from moderation.purge_after)")
	return cmd
}
