// Package content is a PostgreSQL reference implementation of the content
// store the moderation queue writes into: a save pipeline that attributes
// every record to the current request, a reader for conflict resolution and
// the batched writer the fixup queue uses to correct that attribution.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modqueue-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
	"github.com/heartmarshall/modqueue-backend/pkg/ctxutil"
)

// Options configure a Pipeline.
type Options struct {
	// DeferCompletions queues completions in the request scope instead of
	// delivering them as soon as the save finished.
	DeferCompletions bool
}

// Pipeline implements pipeline.Pipeline on the content tables.
type Pipeline struct {
	db   postgres.Querier
	tx   *postgres.TxManager
	hub  *pipeline.Hub
	opts Options
	now  func() time.Time
}

// NewPipeline creates a Pipeline reporting completions to hub.
func NewPipeline(db postgres.Querier, tx *postgres.TxManager, hub *pipeline.Hub, opts Options) *Pipeline {
	return &Pipeline{db: db, tx: tx, hub: hub, opts: opts, now: time.Now}
}

type pageRow struct {
	ID        int64 `db:"id"`
	LatestRev int64 `db:"latest_rev"`
}

// ---------------------------------------------------------------------------
// Pipeline operations
// ---------------------------------------------------------------------------

// Save writes a new revision of req.Target. A BaseRevID other than the
// page's latest revision is an edit conflict.
func (p *Pipeline) Save(ctx context.Context, req pipeline.SaveRequest) (pipeline.Result, error) {
	var (
		res  pipeline.Result
		done []domain.Completion
	)

	err := p.inTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, p.db)

		page, found, err := lockPage(ctx, q, req.Target)
		if err != nil {
			return err
		}
		if (found && page.LatestRev != req.BaseRevID) || (!found && req.BaseRevID != 0) {
			return fmt.Errorf("save %s at base %d: %w", req.Target, req.BaseRevID, domain.ErrConflict)
		}

		if found {
			current, err := revisionBody(ctx, q, page.LatestRev)
			if err != nil {
				return err
			}
			if current == req.Text {
				res = pipeline.Result{Status: domain.SaveStatusNoChange, RevisionID: page.LatestRev, PageID: page.ID}
				return nil
			}
		} else {
			if page.ID, err = createPage(ctx, q, req.Target, false); err != nil {
				return err
			}
		}

		now := p.now().UTC()
		revID, err := insertRevision(ctx, q, page.ID, page.LatestRev, req.Author, req.Summary, req.Text, req.Minor, now)
		if err != nil {
			return err
		}
		if err := p.recordChange(ctx, q, changeRow{
			revID: revID, pageID: page.ID, target: req.Target, author: req.Author, comment: req.Summary, at: now,
		}); err != nil {
			return err
		}

		res = pipeline.Result{Status: domain.SaveStatusSaved, RevisionID: revID, PageID: page.ID}
		done = append(done, domain.Completion{
			RevisionID: revID,
			PageID:     page.ID,
			Target:     req.Target,
			AuthorName: req.Author.Name,
			Kind:       domain.KindEdit,
		})
		return nil
	})
	if err != nil {
		return pipeline.Result{}, err
	}

	p.notify(ctx, done)
	return res, nil
}

// Move renames req.From to req.To, adding a null revision and a move log
// entry, and optionally leaves a redirect behind.
func (p *Pipeline) Move(ctx context.Context, req pipeline.MoveRequest) (pipeline.Result, error) {
	var (
		res  pipeline.Result
		done []domain.Completion
	)

	err := p.inTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, p.db)

		page, found, err := lockPage(ctx, q, req.From)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("move %s: %w", req.From, domain.ErrNotFound)
		}
		if _, exists, err := lockPage(ctx, q, req.To); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("move %s: destination %s already exists", req.From, req.To)
		}

		update, args, err := postgres.Builder().Update("pages").
			Set("namespace", req.To.Namespace).
			Set("title", req.To.Title).
			Where(sq.Eq{"id": page.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build move: %w", err)
		}
		if _, err := q.Exec(ctx, update, args...); err != nil {
			return postgres.MapError(err, "page", page.ID)
		}

		body, err := revisionBody(ctx, q, page.LatestRev)
		if err != nil {
			return err
		}

		now := p.now().UTC()
		nullRev, err := insertRevision(ctx, q, page.ID, page.LatestRev, req.Author, req.Reason, body, true, now)
		if err != nil {
			return err
		}
		logID, err := insertLogEntry(ctx, q, "move", "move", req.Author, req.From, page.ID, req.Reason, now, map[string]any{
			"target":   req.To.String(),
			"redirect": req.LeaveRedirect,
		})
		if err != nil {
			return err
		}
		if err := p.recordChange(ctx, q, changeRow{
			logID: logID, pageID: page.ID, target: req.From, author: req.Author, comment: req.Reason, at: now,
		}); err != nil {
			return err
		}

		res = pipeline.Result{Status: domain.SaveStatusSaved, RevisionID: nullRev, PageID: page.ID}
		done = append(done, domain.Completion{
			RevisionID: nullRev,
			LogID:      logID,
			PageID:     page.ID,
			Target:     req.From,
			AuthorName: req.Author.Name,
			Kind:       domain.KindMove,
		})

		if !req.LeaveRedirect {
			return nil
		}

		redirectPage, err := createPage(ctx, q, req.From, true)
		if err != nil {
			return err
		}
		redirectRev, err := insertRevision(ctx, q, redirectPage, 0, req.Author, req.Reason,
			"#REDIRECT [["+req.To.Title+"]]", false, now)
		if err != nil {
			return err
		}
		done = append(done, domain.Completion{
			RevisionID: redirectRev,
			PageID:     redirectPage,
			Target:     req.From,
			AuthorName: req.Author.Name,
			Kind:       domain.KindMove,
		})
		return nil
	})
	if err != nil {
		return pipeline.Result{}, err
	}

	p.notify(ctx, done)
	return res, nil
}

// Upload publishes a stashed file under req.Target.
func (p *Pipeline) Upload(ctx context.Context, req pipeline.UploadRequest) (pipeline.Result, error) {
	if req.StashKey == "" {
		return pipeline.Result{}, errors.New("upload: stash key is required")
	}

	var (
		res  pipeline.Result
		done []domain.Completion
	)

	err := p.inTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, p.db)

		page, found, err := lockPage(ctx, q, req.Target)
		if err != nil {
			return err
		}

		action, body := "upload", req.PageText
		if found {
			action = "overwrite"
			if body, err = revisionBody(ctx, q, page.LatestRev); err != nil {
				return err
			}
		} else if page.ID, err = createPage(ctx, q, req.Target, false); err != nil {
			return err
		}

		now := p.now().UTC()
		revID, err := insertRevision(ctx, q, page.ID, page.LatestRev, req.Author, req.Comment, body, false, now)
		if err != nil {
			return err
		}

		insert, args, err := postgres.Builder().Insert("files").
			Columns("page_id", "stash_key", "user_text", "created_at").
			Values(page.ID, req.StashKey, req.Author.Name, now).
			ToSql()
		if err != nil {
			return fmt.Errorf("build file insert: %w", err)
		}
		if _, err := q.Exec(ctx, insert, args...); err != nil {
			return postgres.MapError(err, "file", req.StashKey)
		}

		logID, err := insertLogEntry(ctx, q, "upload", action, req.Author, req.Target, page.ID, req.Comment, now, map[string]any{
			"stash_key": req.StashKey,
		})
		if err != nil {
			return err
		}
		if err := p.recordChange(ctx, q, changeRow{
			logID: logID, pageID: page.ID, target: req.Target, author: req.Author, comment: req.Comment, at: now,
		}); err != nil {
			return err
		}

		res = pipeline.Result{Status: domain.SaveStatusSaved, RevisionID: revID, PageID: page.ID}
		done = append(done, domain.Completion{
			RevisionID: revID,
			LogID:      logID,
			PageID:     page.ID,
			Target:     req.Target,
			AuthorName: req.Author.Name,
			Kind:       domain.KindUpload,
		})
		return nil
	})
	if err != nil {
		return pipeline.Result{}, err
	}

	p.notify(ctx, done)
	return res, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (p *Pipeline) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if postgres.InTx(ctx) || p.tx == nil {
		return fn(ctx)
	}
	return p.tx.RunInTx(ctx, fn)
}

func (p *Pipeline) notify(ctx context.Context, done []domain.Completion) {
	for _, c := range done {
		if p.opts.DeferCompletions {
			p.hub.NotifyDeferred(ctx, c)
		} else {
			p.hub.Notify(ctx, c)
		}
	}
}

type changeRow struct {
	revID   int64
	logID   int64
	pageID  int64
	target  domain.Target
	author  domain.Author
	comment string
	at      time.Time
}

// recordChange writes the change-feed entry and its secondary audit record
// with the network identity of the current request.
func (p *Pipeline) recordChange(ctx context.Context, q postgres.Querier, c changeRow) error {
	client, _ := ctxutil.ClientFromCtx(ctx)

	insert, args, err := postgres.Builder().Insert("recent_changes").
		Columns("rev_id", "log_id", "page_id", "namespace", "title", "user_id", "user_text", "ip", "comment", "created_at").
		Values(nullID(c.revID), nullID(c.logID), c.pageID, c.target.Namespace, c.target.Title,
			c.author.ID, c.author.Name, client.IP, c.comment, c.at).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build recent change: %w", err)
	}

	var rcID int64
	if err := q.QueryRow(ctx, insert, args...).Scan(&rcID); err != nil {
		return postgres.MapError(err, "recent_change", c.revID)
	}

	insert, args, err = postgres.Builder().Insert("cu_changes").
		Columns("rc_id", "ip", "xff", "agent", "created_at").
		Values(rcID, client.IP, client.XFF, client.UserAgent, c.at).
		ToSql()
	if err != nil {
		return fmt.Errorf("build check user: %w", err)
	}
	if _, err := q.Exec(ctx, insert, args...); err != nil {
		return postgres.MapError(err, "cu_change", rcID)
	}
	return nil
}

func lockPage(ctx context.Context, q postgres.Querier, target domain.Target) (pageRow, bool, error) {
	query, args, err := postgres.Builder().
		Select("id", "latest_rev").
		From("pages").
		Where(sq.Eq{"namespace": target.Namespace, "title": target.Title}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return pageRow{}, false, fmt.Errorf("build page lookup: %w", err)
	}

	var row pageRow
	if err := pgxscan.Get(ctx, q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return pageRow{}, false, nil
		}
		return pageRow{}, false, postgres.MapError(err, "page", target)
	}
	return row, true, nil
}

func createPage(ctx context.Context, q postgres.Querier, target domain.Target, redirect bool) (int64, error) {
	insert, args, err := postgres.Builder().Insert("pages").
		Columns("namespace", "title", "is_redirect").
		Values(target.Namespace, target.Title, redirect).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build page insert: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, insert, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "page", target)
	}
	return id, nil
}

func insertRevision(ctx context.Context, q postgres.Querier, pageID, parent int64, author domain.Author,
	comment, body string, minor bool, at time.Time,
) (int64, error) {
	insert, args, err := postgres.Builder().Insert("revisions").
		Columns("page_id", "parent_id", "user_id", "user_text", "comment", "body", "minor", "created_at").
		Values(pageID, parent, author.ID, author.Name, comment, body, minor, at).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build revision insert: %w", err)
	}

	var revID int64
	if err := q.QueryRow(ctx, insert, args...).Scan(&revID); err != nil {
		return 0, postgres.MapError(err, "revision", pageID)
	}

	update, args, err := postgres.Builder().Update("pages").
		Set("latest_rev", revID).
		Where(sq.Eq{"id": pageID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build latest update: %w", err)
	}
	if _, err := q.Exec(ctx, update, args...); err != nil {
		return 0, postgres.MapError(err, "page", pageID)
	}
	return revID, nil
}

func insertLogEntry(ctx context.Context, q postgres.Querier, logType, action string, author domain.Author,
	target domain.Target, pageID int64, comment string, at time.Time, params map[string]any,
) (int64, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("log entry marshal params: %w", err)
	}

	insert, args, err := postgres.Builder().Insert("log_entries").
		Columns("log_type", "action", "user_id", "user_text", "namespace", "title", "page_id", "params", "comment", "created_at").
		Values(logType, action, author.ID, author.Name, target.Namespace, target.Title, pageID, raw, comment, at).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build log entry insert: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, insert, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "log_entry", target)
	}
	return id, nil
}

func revisionBody(ctx context.Context, q postgres.Querier, revID int64) (string, error) {
	var body string
	if err := q.QueryRow(ctx, `SELECT body FROM revisions WHERE id = $1`, revID).Scan(&body); err != nil {
		return "", postgres.MapError(err, "revision", revID)
	}
	return body, nil
}

// nullID maps 0 to SQL NULL.
func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
