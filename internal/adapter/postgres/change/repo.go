// Package change implements the queue row repository using PostgreSQL.
// Pending rows are keyed on (preloadable, kind, target, destination,
// preload id); a decided row sets preloadable to its own id so the author
// can submit again.
package change

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modqueue-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

const table = "moderation"

var columns = []string{
	"id", "submitted_at", "user_id", "user_text", "namespace", "title", "namespace2", "title2",
	"kind", "comment", "minor", "bot", "is_new", "last_oldid", "ip", "xff", "user_agent", "tags",
	"body", "old_len", "new_len", "preload_id", "rejected", "rejected_by_user",
	"rejected_by_user_text", "rejected_batch", "rejected_auto", "rejected_at", "merged_revid",
	"conflict", "stash_key",
}

// pendingOnly restricts a query to rows that still await a decision.
var pendingOnly = sq.Eq{"rejected": false, "merged_revid": 0}

// Repo provides queue row persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new queue row repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns a queue row by id.
// Returns domain.ErrNotFound if the row does not exist.
func (r *Repo) Get(ctx context.Context, id int64) (domain.PendingChange, error) {
	query := postgres.Builder().Select(columns...).From(table).Where(sq.Eq{"id": id})
	rows, err := r.selectRows(ctx, query)
	if err != nil {
		return domain.PendingChange{}, postgres.MapError(err, "change", id)
	}
	if len(rows) == 0 {
		return domain.PendingChange{}, fmt.Errorf("change %d: %w", id, domain.ErrNotFound)
	}
	return rows[0], nil
}

// List returns the rows of a folder, newest first.
func (r *Repo) List(ctx context.Context, folder domain.Folder, limit, offset int) ([]domain.PendingChange, error) {
	cond, err := folderCond(folder)
	if err != nil {
		return nil, err
	}

	query := postgres.Builder().Select(columns...).From(table).
		Where(cond).
		OrderBy("submitted_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	rows, err := r.selectRows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s changes: %w", folder, err)
	}
	return rows, nil
}

// CountByFolder returns the number of rows in folder.
func (r *Repo) CountByFolder(ctx context.Context, folder domain.Folder) (int, error) {
	cond, err := folderCond(folder)
	if err != nil {
		return 0, err
	}

	query, args, err := postgres.Builder().Select("count(*)").From(table).Where(cond).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s changes: %w", folder, err)
	}
	return n, nil
}

// ListPendingByPreloadID returns the pending rows of one author, oldest first.
func (r *Repo) ListPendingByPreloadID(ctx context.Context, preloadID string, limit int) ([]domain.PendingChange, error) {
	query := postgres.Builder().Select(columns...).From(table).
		Where(pendingOnly).
		Where(sq.Eq{"preload_id": preloadID}).
		OrderBy("submitted_at", "id").
		Limit(uint64(limit))

	rows, err := r.selectRows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list changes of %s: %w", preloadID, err)
	}
	return rows, nil
}

// Preload returns the author's own pending edit of target, so the author
// can continue editing it. Returns domain.ErrNotFound when there is none.
func (r *Repo) Preload(ctx context.Context, preloadID string, target domain.Target) (domain.PendingChange, error) {
	query := postgres.Builder().Select(columns...).From(table).
		Where(sq.Eq{
			"preloadable": 0,
			"preload_id":  preloadID,
			"kind":        string(domain.KindEdit),
			"namespace":   target.Namespace,
			"title":       target.Title,
		}).
		Limit(1)

	rows, err := r.selectRows(ctx, query)
	if err != nil {
		return domain.PendingChange{}, postgres.MapError(err, "preload", target)
	}
	if len(rows) == 0 {
		return domain.PendingChange{}, fmt.Errorf("preload %s: %w", target, domain.ErrNotFound)
	}
	return rows[0], nil
}

// NewestPendingTime returns the submission time of the newest pending row
// and false when the queue is empty.
func (r *Repo) NewestPendingTime(ctx context.Context) (time.Time, bool, error) {
	query, args, err := postgres.Builder().Select("MAX(submitted_at)").From(table).Where(pendingOnly).ToSql()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build newest pending: %w", err)
	}

	var ts *time.Time
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&ts); err != nil {
		return time.Time{}, false, fmt.Errorf("newest pending: %w", err)
	}
	if ts == nil {
		return time.Time{}, false, nil
	}
	return ts.UTC(), true, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Upsert stores c. A pending row with the same natural key is overwritten
// with the new submission and keeps its id. Auto-rejected rows are never
// merged into a pending row.
func (r *Repo) Upsert(ctx context.Context, c domain.PendingChange) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if c.Rejected {
		return r.insertRejected(ctx, q, c)
	}

	insert := postgres.Builder().Insert(table).
		Columns(insertColumns...).
		Values(insertValues(c)...).
		Suffix(`ON CONFLICT (preloadable, kind, namespace, title, namespace2, title2, preload_id) DO UPDATE SET ` +
			upsertSet + ` RETURNING id`)

	query, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "change", c.RecordKey())
	}
	return id, nil
}

// insertRejected stores a row that is decided on arrival. It takes its id
// up front so preloadable can equal it.
func (r *Repo) insertRejected(ctx context.Context, q postgres.Querier, c domain.PendingChange) (int64, error) {
	var id int64
	if err := q.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence('moderation', 'id'))`).Scan(&id); err != nil {
		return 0, fmt.Errorf("reserve change id: %w", err)
	}

	cols := append([]string{"id", "preloadable", "rejected", "rejected_auto", "rejected_at"}, insertColumns...)
	vals := append([]any{id, id, true, c.RejectedAuto, c.Timestamp}, insertValues(c)...)

	query, args, err := postgres.Builder().Insert(table).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build rejected insert: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return 0, postgres.MapError(err, "change", id)
	}
	return id, nil
}

// Lock takes a row lock for the rest of the transaction in ctx. It returns
// domain.ErrNotFound when the row is gone or merged; a concurrent approval
// or merge that committed first leaves it that way.
func (r *Repo) Lock(ctx context.Context, id int64) error {
	query, args, err := postgres.Builder().Select("id").From(table).
		Where(sq.Eq{"id": id, "merged_revid": 0}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock: %w", err)
	}

	var locked int64
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&locked); err != nil {
		return postgres.MapError(err, "change", id)
	}
	return nil
}

// Modify replaces the text of a row that was not merged.
func (r *Repo) Modify(ctx context.Context, id int64, text, comment string, newLen int) error {
	n, err := r.exec(ctx, "modify", postgres.Builder().Update(table).
		Set("body", text).
		Set("comment", comment).
		Set("new_len", newLen).
		Where(sq.Eq{"id": id, "merged_revid": 0}))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("change %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes rows and returns how many existed.
func (r *Repo) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := postgres.Builder().Delete(table).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete changes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Reject marks a pending row rejected. Returns 0 when the row was already
// decided, leaving the recorded moderator untouched.
func (r *Repo) Reject(ctx context.Context, id int64, moderator domain.Author, at time.Time) (int64, error) {
	return r.exec(ctx, "reject", rejectUpdate(moderator, at, false).
		Where(sq.Eq{"id": id}).
		Where(pendingOnly))
}

// RejectAll rejects every pending row of an author as one batch.
func (r *Repo) RejectAll(ctx context.Context, preloadID string, moderator domain.Author, at time.Time) (int64, error) {
	return r.exec(ctx, "reject all", rejectUpdate(moderator, at, true).
		Where(sq.Eq{"preload_id": preloadID}).
		Where(pendingOnly))
}

// MarkConflict flags a row for manual merge.
func (r *Repo) MarkConflict(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, "mark conflict", postgres.Builder().Update(table).
		Set("conflict", true).
		Where(sq.Eq{"id": id}))
	return err
}

// MarkMerged records the revision a moderator merged a row into.
func (r *Repo) MarkMerged(ctx context.Context, id, revID int64) (int64, error) {
	return r.exec(ctx, "mark merged", postgres.Builder().Update(table).
		Set("merged_revid", revID).
		Set("conflict", false).
		Set("preloadable", sq.Expr("id")).
		Where(sq.Eq{"id": id, "merged_revid": 0}))
}

// Reassign moves the pending rows of an anonymous identity to a registered author.
func (r *Repo) Reassign(ctx context.Context, fromPreloadID string, to domain.Author) (int64, error) {
	return r.exec(ctx, "reassign", postgres.Builder().Update(table).
		Set("preload_id", to.PreloadID()).
		Set("user_id", to.ID).
		Set("user_text", to.Name).
		Where(sq.Eq{"preload_id": fromPreloadID}).
		Where(pendingOnly))
}

// PurgeRejected deletes rejected rows decided before the cutoff.
func (r *Repo) PurgeRejected(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := postgres.Builder().Delete(table).
		Where(sq.Eq{"rejected": true}).
		Where(sq.Lt{"COALESCE(rejected_at, submitted_at)": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge: %w", err)
	}
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge rejected changes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var insertColumns = []string{
	"submitted_at", "user_id", "user_text", "namespace", "title", "namespace2", "title2",
	"kind", "comment", "minor", "bot", "is_new", "last_oldid", "ip", "xff", "user_agent", "tags",
	"body", "old_len", "new_len", "preload_id", "stash_key",
}

func insertValues(c domain.PendingChange) []any {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		c.Timestamp, c.Author.ID, c.Author.Name, c.Target.Namespace, c.Target.Title,
		c.NewTarget.Namespace, c.NewTarget.Title, string(c.Kind), c.Comment, c.Minor, c.Bot, c.New,
		c.BaseRevID, c.Network.IP, c.Network.XFF, c.Network.UserAgent, tags,
		c.Text, c.OldLen, c.NewLen, c.PreloadID, c.StashKey,
	}
}

// upsertSet lists the columns a repeated submission overwrites.
var upsertSet = func() string {
	cols := []string{
		"submitted_at", "user_id", "user_text", "comment", "minor", "bot", "is_new", "last_oldid",
		"ip", "xff", "user_agent", "tags", "body", "old_len", "new_len", "stash_key",
	}
	parts := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		parts = append(parts, c+" = EXCLUDED."+c)
	}
	parts = append(parts, "conflict = false")
	return strings.Join(parts, ", ")
}()

func rejectUpdate(moderator domain.Author, at time.Time, batch bool) sq.UpdateBuilder {
	b := postgres.Builder().Update(table).
		Set("rejected", true).
		Set("rejected_by_user", moderator.ID).
		Set("rejected_by_user_text", moderator.Name).
		Set("rejected_at", at.UTC()).
		Set("preloadable", sq.Expr("id"))
	if batch {
		b = b.Set("rejected_batch", true)
	}
	return b
}

func folderCond(folder domain.Folder) (sq.Sqlizer, error) {
	switch folder {
	case domain.FolderPending:
		return pendingOnly, nil
	case domain.FolderRejected:
		return sq.Eq{"rejected": true, "rejected_auto": false}, nil
	case domain.FolderMerged:
		return sq.NotEq{"merged_revid": 0}, nil
	case domain.FolderSpam:
		return sq.Eq{"rejected_auto": true}, nil
	}
	return nil, domain.NewValidationError("folder", fmt.Sprintf("unknown folder %q", folder))
}

func (r *Repo) exec(ctx context.Context, op string, b sq.UpdateBuilder) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", op, err)
	}
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "change", op)
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) selectRows(ctx context.Context, b sq.SelectBuilder) ([]domain.PendingChange, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []changeRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]domain.PendingChange, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}
