// Package cli implements modctl, the maintenance command line for the
// moderation queue.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/modqueue-backend/internal/app"
	"github.com/heartmarshall/modqueue-backend/internal/config"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/pkg/ctxutil"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile       string
	ConfigFile    string
	ModeratorID   int64
	ModeratorName string

	cfg *config.Config
	log *slog.Logger
}

// NewRootCommand creates the modctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	long := "Maintenance commands for the moderation queue: migrations, queue summary, batch decisions and purging."
	if usage, err := config.Usage(); err == nil {
		long += "\n\n" + usage
	}

	cmd := &cobra.Command{
		Use:           "modctl",
		Short:         "Moderation queue maintenance",
		Long:          long,
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnvFile(opts.EnvFile); err != nil {
				return err
			}
			cfg, err := config.Load(opts.ConfigFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.log = app.NewLogger(cfg.Log)
			ctx := ctxutil.WithRequestID(cmd.Context(), ctxutil.NewRequestID())
			cmd.SetContext(ctx)
			opts.log.DebugContext(ctx, "modctl starting",
				slog.String("command", cmd.CommandPath()),
				slog.String("version", app.BuildVersion()),
			)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the configuration (ignored if missing)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML configuration file (default $"+config.PathEnv+" or "+config.DefaultPath+")")
	cmd.PersistentFlags().Int64Var(&opts.ModeratorID, "moderator-id", 0, "user id of the acting moderator")
	cmd.PersistentFlags().StringVar(&opts.ModeratorName, "moderator", "", "user name of the acting moderator")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewPendingCommand(opts))
	cmd.AddCommand(NewApproveAllCommand(opts))
	cmd.AddCommand(NewRejectAllCommand(opts))
	cmd.AddCommand(NewPurgeCommand(opts))

	return cmd
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// moderator returns the acting moderator from the global flags.
func (o *RootOptions) moderator() (domain.Author, error) {
	if o.ModeratorID <= 0 || o.ModeratorName == "" {
		return domain.Author{}, errors.New("--moderator and --moderator-id are required")
	}
	return domain.Author{ID: o.ModeratorID, Name: domain.NormalizeTitle(o.ModeratorName)}, nil
}

// withApp wires the application for the duration of fn.
func (o *RootOptions) withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	a, err := app.New(ctx, o.cfg, o.log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
