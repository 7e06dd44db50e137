package content

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modqueue-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modqueue-backend/internal/fixup"
)

// Store implements fixup.Store. Every write is a single statement.
type Store struct {
	db postgres.Querier
}

// NewStore creates a Store.
func NewStore(db postgres.Querier) *Store {
	return &Store{db: db}
}

var _ fixup.Store = (*Store)(nil)

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func (s *Store) PriorTimestamps(ctx context.Context, revIDs []int64) (map[int64]time.Time, error) {
	out := make(map[int64]time.Time)
	if len(revIDs) == 0 {
		return out, nil
	}

	query, args, err := postgres.Builder().
		Select("r.id", "MAX(p.created_at) AS prior").
		From("revisions r").
		Join("revisions p ON p.page_id = r.page_id AND p.id < r.id").
		Where("r.id = ANY(?)", revIDs).
		Where("NOT (p.id = ANY(?))", revIDs).
		GroupBy("r.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build prior timestamps: %w", err)
	}

	var rows []struct {
		ID    int64     `db:"id"`
		Prior time.Time `db:"prior"`
	}
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, s.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("prior timestamps: %w", err)
	}
	for _, r := range rows {
		out[r.ID] = r.Prior.UTC()
	}
	return out, nil
}

func (s *Store) ChangeFeedIDs(ctx context.Context, revIDs, logIDs []int64) ([]fixup.ChangeFeedRef, error) {
	if len(revIDs) == 0 && len(logIDs) == 0 {
		return nil, nil
	}

	query, args, err := postgres.Builder().
		Select("id", "COALESCE(rev_id, 0) AS rev_id", "COALESCE(log_id, 0) AS log_id").
		From("recent_changes").
		Where(sq.Or{sq.Eq{"rev_id": revIDs}, sq.Eq{"log_id": logIDs}}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build change feed lookup: %w", err)
	}

	var rows []struct {
		ID    int64 `db:"id"`
		RevID int64 `db:"rev_id"`
		LogID int64 `db:"log_id"`
	}
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, s.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("change feed lookup: %w", err)
	}

	refs := make([]fixup.ChangeFeedRef, len(rows))
	for i, r := range rows {
		refs[i] = fixup.ChangeFeedRef{ID: r.ID, RevID: r.RevID, LogID: r.LogID}
	}
	return refs, nil
}

func (s *Store) TaggedRecords(ctx context.Context, rcIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	if len(rcIDs) == 0 {
		return out, nil
	}

	query, args, err := postgres.Builder().
		Select("DISTINCT rc_id").
		From("change_tags").
		Where(sq.Eq{"rc_id": rcIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tagged lookup: %w", err)
	}

	var ids []int64
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, s.db), &ids, query, args...); err != nil {
		return nil, fmt.Errorf("tagged lookup: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

func (s *Store) UpdateRevisionTimestamps(ctx context.Context, ts map[int64]time.Time) error {
	return s.updateTimestamps(ctx, "revisions", ts)
}

func (s *Store) UpdateLogEntries(ctx context.Context, ts map[int64]time.Time) error {
	return s.updateTimestamps(ctx, "log_entries", ts)
}

func (s *Store) updateTimestamps(ctx context.Context, table string, ts map[int64]time.Time) error {
	if len(ts) == 0 {
		return nil
	}
	ids := slices.Sorted(maps.Keys(ts))

	return s.exec(ctx, table, postgres.Builder().Update(table).
		Set("created_at", postgres.CaseByID("id", "created_at", "timestamptz", ts, ids)).
		Where(sq.Eq{"id": ids}))
}

func (s *Store) UpdateChangeFeed(ctx context.Context, updates []fixup.ChangeFeedUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(updates))
	ips := make(map[int64]string, len(updates))
	ts := make(map[int64]time.Time)
	var tsIDs []int64
	for _, u := range updates {
		ids = append(ids, u.ID)
		ips[u.ID] = u.IP
		if !u.Timestamp.IsZero() {
			ts[u.ID] = u.Timestamp
			tsIDs = append(tsIDs, u.ID)
		}
	}

	b := postgres.Builder().Update("recent_changes").
		Set("ip", postgres.CaseByID("id", "ip", "text", ips, ids))
	if len(tsIDs) > 0 {
		b = b.Set("created_at", postgres.CaseByID("id", "created_at", "timestamptz", ts, tsIDs))
	}
	return s.exec(ctx, "recent_changes", b.Where(sq.Eq{"id": ids}))
}

func (s *Store) UpdateCheckUser(ctx context.Context, updates []fixup.CheckUserUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(updates))
	ips := make(map[int64]string, len(updates))
	xffs := make(map[int64]string, len(updates))
	agents := make(map[int64]string, len(updates))
	for _, u := range updates {
		ids = append(ids, u.ChangeFeedID)
		ips[u.ChangeFeedID] = u.IP
		xffs[u.ChangeFeedID] = u.XFF
		agents[u.ChangeFeedID] = u.UserAgent
	}

	return s.exec(ctx, "cu_changes", postgres.Builder().Update("cu_changes").
		Set("ip", postgres.CaseByID("rc_id", "ip", "text", ips, ids)).
		Set("xff", postgres.CaseByID("rc_id", "xff", "text", xffs, ids)).
		Set("agent", postgres.CaseByID("rc_id", "agent", "text", agents, ids)).
		Where(sq.Eq{"rc_id": ids}))
}

func (s *Store) InsertTags(ctx context.Context, tags []fixup.TagAssoc) error {
	if len(tags) == 0 {
		return nil
	}

	b := postgres.Builder().Insert("change_tags").Columns("tag", "rev_id", "rc_id", "log_id")
	for _, t := range tags {
		b = b.Values(t.Tag, nullID(t.RevID), nullID(t.RCID), nullID(t.LogID))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build change_tags insert: %w", err)
	}
	if _, err := postgres.QuerierFromCtx(ctx, s.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "change_tags", len(tags))
	}
	return nil
}

func (s *Store) FillAuditRevIDs(ctx context.Context, revByLog map[int64]int64) error {
	if len(revByLog) == 0 {
		return nil
	}
	ids := slices.Sorted(maps.Keys(revByLog))

	return s.exec(ctx, "moderation_log", postgres.Builder().Update("moderation_log").
		Set("rev_id", postgres.CaseByID("id", "rev_id", "bigint", revByLog, ids)).
		Where(sq.Eq{"id": ids}).
		Where("rev_id IS NULL"))
}

func (s *Store) exec(ctx context.Context, table string, b sq.UpdateBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s update: %w", table, err)
	}
	if _, err := postgres.QuerierFromCtx(ctx, s.db).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}
