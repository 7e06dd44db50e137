package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/modqueue-backend/internal/app"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// authorFlags select the author whose rows a batch command acts on.
type authorFlags struct {
	name      string
	anonToken string
}

func (f *authorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "author", "", "registered author name")
	cmd.Flags().StringVar(&f.anonToken, "anon-token", "", "anonymous author token")
	cmd.MarkFlagsMutuallyExclusive("author", "anon-token")
	cmd.MarkFlagsOneRequired("author", "anon-token")
}

func (f *authorFlags) preloadID() string {
	if f.anonToken != "" {
		return domain.AnonPreloadID(f.anonToken)
	}
	return domain.Author{ID: 1, Name: domain.NormalizeTitle(f.name)}.PreloadID()
}

// NewApproveAllCommand creates the approve-all command.
func NewApproveAllCommand(rootOpts *RootOptions) *cobra.Command {
	var author authorFlags

	cmd := &cobra.Command{
		Use:   "approve-all",
		Short: "Approve every pending change of one author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			moderator, err := rootOpts.moderator()
			if err != nil {
				return err
			}
			return rootOpts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				res, err := a.Moderation.ApproveAll(ctx, author.preloadID(), moderator)
				if err != nil && res.Errors == nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "approved %d\n", res.Approved)
				for _, id := range slices.Sorted(maps.Keys(res.Errors)) {
					key, _ := domain.MessageOf(res.Errors[id])
					fmt.Fprintf(out, "row %d: %s: %v\n", id, key, res.Errors[id])
				}
				if err != nil {
					return err
				}
				if len(res.Errors) > 0 {
					return errors.New("some changes were not approved")
				}
				return nil
			})
		},
	}
	author.register(cmd)
	return cmd
}

// NewRejectAllCommand creates the reject-all command.
func NewRejectAllCommand(rootOpts *RootOptions) *cobra.Command {
	var author authorFlags

	cmd := &cobra.Command{
		Use:   "reject-all",
		Short: "Reject every pending change of one author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			moderator, err := rootOpts.moderator()
			if err != nil {
				return err
			}
			return rootOpts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				n, err := a.Moderation.RejectAll(ctx, author.preloadID(), moderator)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rejected %d\n", n)
				return nil
			})
		},
	}
	author.register(cmd)
	return cmd
}
