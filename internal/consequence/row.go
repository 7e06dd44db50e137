package consequence

import (
	"context"
	"time"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// InsertRow upserts a queue row keyed on its natural key and returns the row
// id. The write runs through the rollback-resistant executor so a rollback
// of the surrounding transaction does not lose the submission.
type InsertRow struct {
	Change domain.PendingChange
}

func (InsertRow) Name() string { return NameInsertRow }

func (c InsertRow) Apply(ctx context.Context, env *Env) (any, error) {
	var id int64
	err := env.Executor.Perform(ctx, func(ctx context.Context) error {
		var err error
		id, err = env.Rows.Upsert(ctx, c.Change)
		return err
	})
	if err != nil {
		return nil, err
	}
	return id, nil
}

// LockRow claims a row for the approval running in the current
// transaction. It fails with domain.ErrNotFound when another decision
// removed or merged the row first.
type LockRow struct {
	ID int64
}

func (LockRow) Name() string { return NameLockRow }

func (c LockRow) Apply(ctx context.Context, env *Env) (any, error) {
	return nil, env.Rows.Lock(ctx, c.ID)
}

// ModifyPendingChange replaces the text and comment of a pending row.
type ModifyPendingChange struct {
	ID      int64
	Text    string
	Comment string
	NewLen  int
}

func (ModifyPendingChange) Name() string { return NameModifyPendingChange }

func (c ModifyPendingChange) Apply(ctx context.Context, env *Env) (any, error) {
	return nil, env.Rows.Modify(ctx, c.ID, c.Text, c.Comment, c.NewLen)
}

// DeleteRows removes approved rows. Returns the number of deleted rows.
type DeleteRows struct {
	IDs []int64
}

func (DeleteRows) Name() string { return NameDeleteRows }

func (c DeleteRows) Apply(ctx context.Context, env *Env) (any, error) {
	return env.Rows.Delete(ctx, c.IDs)
}

// RejectOne rejects a single pending row. Returns affected rows: 0 when the
// row was already rejected or merged.
type RejectOne struct {
	ID        int64
	Moderator domain.Author
	At        time.Time
}

func (RejectOne) Name() string { return NameRejectOne }

func (c RejectOne) Apply(ctx context.Context, env *Env) (any, error) {
	return env.Rows.Reject(ctx, c.ID, c.Moderator, c.At)
}

// RejectBatch rejects every pending row of one author.
type RejectBatch struct {
	PreloadID string
	Moderator domain.Author
	At        time.Time
}

func (RejectBatch) Name() string { return NameRejectBatch }

func (c RejectBatch) Apply(ctx context.Context, env *Env) (any, error) {
	return env.Rows.RejectAll(ctx, c.PreloadID, c.Moderator, c.At)
}

// MarkAsConflict flags a row whose edit could not be merged automatically.
type MarkAsConflict struct {
	ID int64
}

func (MarkAsConflict) Name() string { return NameMarkAsConflict }

func (c MarkAsConflict) Apply(ctx context.Context, env *Env) (any, error) {
	return nil, env.Rows.MarkConflict(ctx, c.ID)
}

// MarkAsMerged records the revision a moderator created by merging the row
// manually.
type MarkAsMerged struct {
	ID    int64
	RevID int64
}

func (MarkAsMerged) Name() string { return NameMarkAsMerged }

func (c MarkAsMerged) Apply(ctx context.Context, env *Env) (any, error) {
	return env.Rows.MarkMerged(ctx, c.ID, c.RevID)
}

// ReassignAnonChanges moves the pending rows of an anonymous token to the
// account that author just registered.
type ReassignAnonChanges struct {
	FromPreloadID string
	To            domain.Author
}

func (ReassignAnonChanges) Name() string { return NameReassignAnonChanges }

func (c ReassignAnonChanges) Apply(ctx context.Context, env *Env) (any, error) {
	return env.Rows.Reassign(ctx, c.FromPreloadID, c.To)
}
