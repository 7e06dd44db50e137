// Package consequence turns every state-mutating moderation step into a
// command value. Orchestration code never writes storage directly: it hands
// consequences to a Manager, which either executes them (Runner) or records
// them for assertions (MockManager).
package consequence

import (
	"context"
	"fmt"
	"time"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
)

// Consequence is one side-effecting operation. Implementations are plain
// structs: all inputs are fields, all services come from Env.
type Consequence interface {
	// Name identifies the consequence type. MockManager keys results by it.
	Name() string
	Apply(ctx context.Context, env *Env) (any, error)
}

// Manager executes consequences synchronously in the order they are added.
type Manager interface {
	Add(ctx context.Context, c Consequence) (any, error)
}

// AddAs adds c to m and converts its result to T. A nil result yields the
// zero value of T.
func AddAs[T any](ctx context.Context, m Manager, c Consequence) (T, error) {
	var zero T

	res, err := m.Add(ctx, c)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("consequence %s: unexpected result type %T", c.Name(), res)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Services
// ---------------------------------------------------------------------------

// RowStore persists queue rows.
type RowStore interface {
	Upsert(ctx context.Context, c domain.PendingChange) (int64, error)
	Lock(ctx context.Context, id int64) error
	Modify(ctx context.Context, id int64, text, comment string, newLen int) error
	Delete(ctx context.Context, ids []int64) (int64, error)
	Reject(ctx context.Context, id int64, moderator domain.Author, at time.Time) (int64, error)
	RejectAll(ctx context.Context, preloadID string, moderator domain.Author, at time.Time) (int64, error)
	MarkConflict(ctx context.Context, id int64) error
	MarkMerged(ctx context.Context, id, revID int64) (int64, error)
	Reassign(ctx context.Context, fromPreloadID string, to domain.Author) (int64, error)
}

// AuditLog appends moderation log entries.
type AuditLog interface {
	Create(ctx context.Context, e domain.LogEntry) (int64, error)
}

// BlockList stores authors whose submissions are auto-rejected.
type BlockList interface {
	Block(ctx context.Context, b domain.Block) (bool, error)
	Unblock(ctx context.Context, address string) (bool, error)
}

// PendingTimeCache caches the newest pending submission time.
type PendingTimeCache interface {
	Invalidate()
}

// Performer runs a unit of work that must survive a transaction rollback.
type Performer interface {
	Perform(ctx context.Context, fn func(ctx context.Context) error) error
}

// Env holds the services consequences act on.
type Env struct {
	Rows     RowStore
	Audit    AuditLog
	Blocks   BlockList
	Pipeline pipeline.Pipeline
	Cache    PendingTimeCache
	Executor Performer
}
