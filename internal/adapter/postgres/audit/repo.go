// Package audit implements the moderation log repository using PostgreSQL.
// It provides append-only operations for moderator actions.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modqueue-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// Repo provides moderation log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new moderation log repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a log entry and returns its id. A zero CreatedAt uses the
// database clock.
func (r *Repo) Create(ctx context.Context, e domain.LogEntry) (int64, error) {
	if !e.Subtype.IsValid() {
		return 0, domain.NewValidationError("subtype", fmt.Sprintf("unknown subtype %q", e.Subtype))
	}

	params := e.Params
	if params == nil {
		params = map[string]any{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("moderation_log marshal params: %w", err)
	}

	cols := []string{"subtype", "moderator_id", "moderator_name", "namespace", "title", "params", "rev_id"}
	vals := []any{string(e.Subtype), e.Moderator.ID, e.Moderator.Name, e.Target.Namespace, e.Target.Title, paramsJSON, e.RevID}
	if !e.CreatedAt.IsZero() {
		cols = append(cols, "created_at")
		vals = append(vals, e.CreatedAt.UTC())
	}

	query, args, err := postgres.Builder().Insert("moderation_log").
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build moderation_log insert: %w", err)
	}

	var id int64
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "moderation_log", e.Subtype)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

type logRow struct {
	ID            int64     `db:"id"`
	Subtype       string    `db:"subtype"`
	ModeratorID   int64     `db:"moderator_id"`
	ModeratorName string    `db:"moderator_name"`
	Namespace     int       `db:"namespace"`
	Title         string    `db:"title"`
	Params        []byte    `db:"params"`
	RevID         *int64    `db:"rev_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// Get returns one log entry.
func (r *Repo) Get(ctx context.Context, id int64) (domain.LogEntry, error) {
	entries, err := r.list(ctx, postgres.Builder().Select(logColumns...).From("moderation_log").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.LogEntry{}, postgres.MapError(err, "moderation_log", id)
	}
	if len(entries) == 0 {
		return domain.LogEntry{}, fmt.Errorf("moderation_log %d: %w", id, domain.ErrNotFound)
	}
	return entries[0], nil
}

// List returns log entries ordered by created_at DESC with pagination.
// A non-empty subtype filters by it.
func (r *Repo) List(ctx context.Context, subtype domain.LogSubtype, limit, offset int) ([]domain.LogEntry, error) {
	b := postgres.Builder().Select(logColumns...).From("moderation_log").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if subtype != "" {
		b = b.Where(sq.Eq{"subtype": string(subtype)})
	}

	entries, err := r.list(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("list moderation_log: %w", err)
	}
	return entries, nil
}

var logColumns = []string{
	"id", "subtype", "moderator_id", "moderator_name", "namespace", "title", "params", "rev_id", "created_at",
}

func (r *Repo) list(ctx context.Context, b sq.SelectBuilder) ([]domain.LogEntry, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build moderation_log select: %w", err)
	}

	var rows []logRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, err
	}

	entries := make([]domain.LogEntry, len(rows))
	for i, row := range rows {
		e, err := toDomainLogEntry(row)
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	return entries, nil
}

func toDomainLogEntry(row logRow) (domain.LogEntry, error) {
	var params map[string]any
	if len(row.Params) > 0 {
		if err := json.Unmarshal(row.Params, &params); err != nil {
			return domain.LogEntry{}, fmt.Errorf("moderation_log %d unmarshal params: %w", row.ID, err)
		}
	}

	return domain.LogEntry{
		ID:        row.ID,
		Subtype:   domain.LogSubtype(row.Subtype),
		Moderator: domain.Author{ID: row.ModeratorID, Name: row.ModeratorName},
		Target:    domain.Target{Namespace: row.Namespace, Title: row.Title},
		Params:    params,
		RevID:     row.RevID,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}
