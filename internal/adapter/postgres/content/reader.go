package content

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modqueue-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
)

// Reader implements pipeline.Reader.
type Reader struct {
	db postgres.Querier
}

// NewReader creates a Reader.
func NewReader(db postgres.Querier) *Reader {
	return &Reader{db: db}
}

// RevisionText returns the body of a revision.
func (r *Reader) RevisionText(ctx context.Context, revID int64) (string, error) {
	return revisionBody(ctx, postgres.QuerierFromCtx(ctx, r.db), revID)
}

// CurrentRevision returns the latest revision of target.
func (r *Reader) CurrentRevision(ctx context.Context, target domain.Target) (pipeline.Revision, error) {
	query, args, err := postgres.Builder().
		Select("r.id", "r.page_id", "r.body").
		From("pages p").
		Join("revisions r ON r.id = p.latest_rev").
		Where(sq.Eq{"p.namespace": target.Namespace, "p.title": target.Title}).
		ToSql()
	if err != nil {
		return pipeline.Revision{}, fmt.Errorf("build current revision: %w", err)
	}

	var row struct {
		ID     int64  `db:"id"`
		PageID int64  `db:"page_id"`
		Body   string `db:"body"`
	}
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return pipeline.Revision{}, fmt.Errorf("page %s: %w", target, domain.ErrNotFound)
		}
		return pipeline.Revision{}, postgres.MapError(err, "page", target)
	}
	return pipeline.Revision{ID: row.ID, PageID: row.PageID, Text: row.Body}, nil
}
