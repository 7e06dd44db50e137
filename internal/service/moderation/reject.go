package moderation

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/modqueue-backend/internal/consequence"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// Reject rejects one pending row and returns the number of rows affected.
// Rejecting a row that is already rejected is a no-op and returns 0.
func (s *Service) Reject(ctx context.Context, rowID int64, moderator domain.Author) (int64, error) {
	if err := s.auth.Authorize(ctx, moderator); err != nil {
		return 0, err
	}

	row, err := s.load(ctx, rowID)
	if err != nil {
		return 0, err
	}
	if row.IsMerged() {
		return 0, errAlreadyMerged(row.ID)
	}

	var n int64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		n, err = consequence.AddAs[int64](ctx, s.mgr, consequence.RejectOne{ID: row.ID, Moderator: moderator, At: s.now()})
		if err != nil || n == 0 {
			return err
		}
		_, err = s.addLog(ctx, domain.LogReject, moderator, row.Target, baseParams(row))
		return err
	})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.invalidatePendingTime(ctx); err != nil {
		return n, err
	}

	s.log.InfoContext(ctx, "change rejected",
		slog.Int64("row_id", row.ID),
		slog.String("moderator", moderator.Name),
	)
	return n, nil
}

// RejectAll rejects every pending row of the author with preloadID and
// returns how many rows were rejected.
func (s *Service) RejectAll(ctx context.Context, preloadID string, moderator domain.Author) (int64, error) {
	if err := s.auth.Authorize(ctx, moderator); err != nil {
		return 0, err
	}

	rows, err := s.changes.ListPendingByPreloadID(ctx, preloadID, 1)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, domain.NewModerationError(domain.ErrNotFound, domain.MsgNotFound, preloadID)
	}
	authorName := rows[0].Author.Name

	var n int64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		n, err = consequence.AddAs[int64](ctx, s.mgr, consequence.RejectBatch{PreloadID: preloadID, Moderator: moderator, At: s.now()})
		if err != nil || n == 0 {
			return err
		}
		params := map[string]any{"count": n, "user": authorName}
		_, err = s.addLog(ctx, domain.LogRejectAll, moderator, authorPage(authorName), params)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.invalidatePendingTime(ctx); err != nil {
		return n, err
	}

	s.log.InfoContext(ctx, "changes rejected",
		slog.String("preload_id", preloadID),
		slog.Int64("count", n),
		slog.String("moderator", moderator.Name),
	)
	return n, nil
}
