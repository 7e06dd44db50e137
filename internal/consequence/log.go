package consequence

import (
	"context"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// AddLogEntry appends a moderation log entry and returns its id.
type AddLogEntry struct {
	Entry domain.LogEntry
}

func (AddLogEntry) Name() string { return NameAddLogEntry }

func (c AddLogEntry) Apply(ctx context.Context, env *Env) (any, error) {
	return env.Audit.Create(ctx, c.Entry)
}

// InvalidatePendingTime drops the cached newest pending time.
type InvalidatePendingTime struct{}

func (InvalidatePendingTime) Name() string { return NameInvalidatePendingTime }

func (InvalidatePendingTime) Apply(_ context.Context, env *Env) (any, error) {
	env.Cache.Invalidate()
	return nil, nil
}
