package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/modqueue-backend/internal/adapter/cache"
	postgres "github.com/heartmarshall/modqueue-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modqueue-backend/internal/adapter/postgres/audit"
	"github.com/heartmarshall/modqueue-backend/internal/adapter/postgres/block"
	"github.com/heartmarshall/modqueue-backend/internal/adapter/postgres/change"
	"github.com/heartmarshall/modqueue-backend/internal/adapter/postgres/content"
	"github.com/heartmarshall/modqueue-backend/internal/config"
	"github.com/heartmarshall/modqueue-backend/internal/consequence"
	"github.com/heartmarshall/modqueue-backend/internal/merge"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
	"github.com/heartmarshall/modqueue-backend/internal/rollback"
	"github.com/heartmarshall/modqueue-backend/internal/service/moderation"
)

// App holds the wired application components.
type App struct {
	Config     *config.Config
	Log        *slog.Logger
	Pool       *pgxpool.Pool
	Changes    *change.Repo
	Audit      *audit.Repo
	Blocks     *block.Repo
	Moderation *moderation.Service

	executor *rollback.Executor
}

// New connects to the database and wires the moderation service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	txm := postgres.NewTxManager(pool)
	hub := pipeline.NewHub(pipeline.NewClock())

	changes := change.New(pool)
	audits := audit.New(pool)
	blocks := block.New(pool)
	pending := cache.NewPendingTime(changes.NewestPendingTime, cfg.Moderation.PendingTimeTTL)
	executor := rollback.NewExecutor(txm, logger)

	runner := consequence.NewRunner(consequence.Env{
		Rows:     changes,
		Audit:    audits,
		Blocks:   blocks,
		Pipeline: content.NewPipeline(pool, txm, hub, content.Options{}),
		Cache:    pending,
		Executor: executor,
	}, logger)

	svc := moderation.NewService(
		logger,
		runner,
		changes,
		blocks,
		merge.NewResolver(content.NewReader(pool)),
		hub,
		content.NewStore(pool),
		txm,
		pending,
		moderation.NewStaticAuthorizer(cfg.Moderation.Moderators),
		moderation.Options{
			ApproveRejectedGrace: cfg.Moderation.ApproveRejectedGrace,
			DisableIPStorage:     cfg.Moderation.DisableIPStorage,
			EnableEditChange:     cfg.Moderation.EnableEditChange,
			ApproveAllLimit:      cfg.Moderation.ApproveAllLimit,
			DefaultTags:          cfg.Moderation.DefaultTags,
		},
	)

	return &App{
		Config:     cfg,
		Log:        logger,
		Pool:       pool,
		Changes:    changes,
		Audit:      audits,
		Blocks:     blocks,
		Moderation: svc,
		executor:   executor,
	}, nil
}

// Close releases rollback registrations and the database pool.
func (a *App) Close() {
	a.executor.Close()
	a.Pool.Close()
}
