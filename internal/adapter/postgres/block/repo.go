// Package block implements the spam block list using PostgreSQL.
package block

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modqueue-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// Repo provides block list persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new block list repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// IsBlocked reports whether address (a user name or IP) is blocked.
func (r *Repo) IsBlocked(ctx context.Context, address string) (bool, error) {
	var blocked bool
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM moderation_block WHERE address = $1)`, address,
	).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("check block %s: %w", address, err)
	}
	return blocked, nil
}

// List returns all blocks, newest first.
func (r *Repo) List(ctx context.Context) ([]domain.Block, error) {
	query, args, err := postgres.Builder().
		Select("address", "blocker_id", "blocker_name", "created_at").
		From("moderation_block").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build block list: %w", err)
	}

	var rows []struct {
		Address     string    `db:"address"`
		BlockerID   int64     `db:"blocker_id"`
		BlockerName string    `db:"blocker_name"`
		CreatedAt   time.Time `db:"created_at"`
	}
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	blocks := make([]domain.Block, len(rows))
	for i, row := range rows {
		blocks[i] = domain.Block{
			Address:     row.Address,
			BlockerID:   row.BlockerID,
			BlockerName: row.BlockerName,
			CreatedAt:   row.CreatedAt.UTC(),
		}
	}
	return blocks, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Block adds b. Returns false when the address was already blocked.
func (r *Repo) Block(ctx context.Context, b domain.Block) (bool, error) {
	query, args, err := postgres.Builder().Insert("moderation_block").
		Columns("address", "blocker_id", "blocker_name", "created_at").
		Values(b.Address, b.BlockerID, b.BlockerName, b.CreatedAt.UTC()).
		Suffix("ON CONFLICT (address) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build block insert: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return false, postgres.MapError(err, "block", b.Address)
	}
	return tag.RowsAffected() > 0, nil
}

// Unblock removes address. Returns false when it was not blocked.
func (r *Repo) Unblock(ctx context.Context, address string) (bool, error) {
	query, args, err := postgres.Builder().Delete("moderation_block").
		Where(sq.Eq{"address": address}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build block delete: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return false, postgres.MapError(err, "block", address)
	}
	return tag.RowsAffected() > 0, nil
}
