package moderation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heartmarshall/modqueue-backend/internal/consequence"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/fixup"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
)

// ApproveStatus is the outcome of approving one row.
type ApproveStatus string

const (
	// StatusApproved means the change was published and the row deleted.
	StatusApproved ApproveStatus = "approved"
	// StatusRejectedNoChange means the change equals the current content
	// and the row was rejected instead.
	StatusRejectedNoChange ApproveStatus = "rejected-nochange"
	// StatusNoOp means another moderator decided the row concurrently.
	StatusNoOp ApproveStatus = "noop"
)

// ApproveResult describes one approved row.
type ApproveResult struct {
	RowID      int64
	Status     ApproveStatus
	RevisionID int64
	// Merged is set when the edit was rebased onto a newer revision.
	Merged bool
}

// BatchResult describes an ApproveAll call.
type BatchResult struct {
	// Approved counts the rows actually published.
	Approved int
	// Errors maps row ids to the error that stopped their approval.
	Errors map[int64]error
}

// Approve publishes one queue row through the content pipeline on behalf of
// its author and corrects the attribution of the created records.
func (s *Service) Approve(ctx context.Context, rowID int64, moderator domain.Author) (ApproveResult, error) {
	if err := s.auth.Authorize(ctx, moderator); err != nil {
		return ApproveResult{}, err
	}

	row, err := s.load(ctx, rowID)
	if err != nil {
		return ApproveResult{}, err
	}

	ctx, sess := s.beginSession(ctx)
	defer sess.close()

	res, err := s.approveRow(ctx, sess, row, moderator, false)
	if err != nil {
		s.log.WarnContext(ctx, "approve failed",
			slog.Int64("row_id", rowID),
			slog.String("moderator", moderator.Name),
			slog.String("error", err.Error()),
		)
		return ApproveResult{}, err
	}

	if err := s.finishSession(ctx, sess); err != nil {
		return res, err
	}
	if res.Status != StatusNoOp {
		if err := s.invalidatePendingTime(ctx); err != nil {
			return res, err
		}
	}

	s.log.InfoContext(ctx, "change approved",
		slog.Int64("row_id", rowID),
		slog.String("status", string(res.Status)),
		slog.Int64("revision_id", res.RevisionID),
		slog.String("moderator", moderator.Name),
	)
	return res, nil
}

// ApproveAll approves every pending row of the author with preloadID. One
// failing row does not stop the others; its error is returned in
// BatchResult.Errors.
func (s *Service) ApproveAll(ctx context.Context, preloadID string, moderator domain.Author) (BatchResult, error) {
	if err := s.auth.Authorize(ctx, moderator); err != nil {
		return BatchResult{}, err
	}

	rows, err := s.changes.ListPendingByPreloadID(ctx, preloadID, s.opts.ApproveAllLimit)
	if err != nil {
		return BatchResult{}, err
	}
	if len(rows) == 0 {
		return BatchResult{}, domain.NewModerationError(domain.ErrNotFound, domain.MsgNotFound, preloadID)
	}

	ctx, sess := s.beginSession(ctx)
	defer sess.close()

	result := BatchResult{Errors: make(map[int64]error)}
	for _, row := range rows {
		res, err := s.approveRow(ctx, sess, row, moderator, true)
		if err != nil {
			result.Errors[row.ID] = err
			s.log.WarnContext(ctx, "approve in batch failed",
				slog.Int64("row_id", row.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if res.Status == StatusApproved {
			result.Approved++
		}
	}

	flushErr := s.finishSession(ctx, sess)

	if result.Approved > 0 {
		params := map[string]any{"count": result.Approved, "user": rows[0].Author.Name}
		if _, err := s.addLog(ctx, domain.LogApproveAll, moderator, authorPage(rows[0].Author.Name), params); err != nil {
			return result, err
		}
		if err := s.invalidatePendingTime(ctx); err != nil {
			return result, err
		}
	}

	s.log.InfoContext(ctx, "batch approved",
		slog.String("preload_id", preloadID),
		slog.Int("approved", result.Approved),
		slog.Int("failed", len(result.Errors)),
		slog.String("moderator", moderator.Name),
	)
	return result, flushErr
}

// errDecided rolls back an approval whose row another request approved,
// merged or deleted first.
var errDecided = errors.New("row decided concurrently")

// approveRow runs the single-row approval in its own transaction. The row is
// locked before anything is published, so of two moderators approving the
// same row the second one finds it gone and gets StatusNoOp without side
// effects. A conflict commits the conflict mark and is returned as a
// *domain.ConflictError.
func (s *Service) approveRow(ctx context.Context, sess *session, row domain.PendingChange, moderator domain.Author, batch bool) (ApproveResult, error) {
	if err := s.checkApprovable(row); err != nil {
		return ApproveResult{}, err
	}
	appr, err := approverFor(row.Kind)
	if err != nil {
		return ApproveResult{}, err
	}

	var (
		res      ApproveResult
		conflict *domain.ConflictError
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.mgr.Add(ctx, consequence.LockRow{ID: row.ID}); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errDecided
			}
			return err
		}

		var err error
		res, err = s.publishRow(ctx, sess, row, moderator, appr, batch)
		if errors.As(err, &conflict) {
			return nil
		}
		return err
	})

	switch {
	case conflict != nil:
		sess.hook.Remove(row.RecordKey())
		return ApproveResult{}, conflict
	case errors.Is(err, errDecided):
		sess.hook.Remove(row.RecordKey())
		s.log.InfoContext(ctx, "row decided concurrently", slog.Int64("row_id", row.ID))
		return ApproveResult{RowID: row.ID, Status: StatusNoOp}, nil
	case err != nil:
		sess.hook.Remove(row.RecordKey())
		return ApproveResult{}, err
	}
	return res, nil
}

// publishRow resolves, publishes, logs and deletes a locked row. In a batch,
// per-row log entries are written only for kinds that ask for it.
func (s *Service) publishRow(ctx context.Context, sess *session, row domain.PendingChange, moderator domain.Author, appr approver, batch bool) (ApproveResult, error) {
	var merged bool
	if row.Kind == domain.KindEdit {
		resolved, err := s.resolver.Resolve(ctx, row)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return ApproveResult{}, s.markConflict(ctx, row, err)
			}
			return ApproveResult{}, err
		}
		row.Text, row.BaseRevID, merged = resolved.Text, resolved.BaseRevID, resolved.Merged
	}

	key := row.RecordKey()
	sess.hook.AddTask(fixup.NewTask(row, s.opts.DefaultTags...))

	saved, err := consequence.AddAs[pipeline.Result](ctx, s.mgr, appr.consequence(row))
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return ApproveResult{}, s.markConflict(ctx, row, err)
		}
		return ApproveResult{}, err
	}

	if saved.Status == domain.SaveStatusNoChange {
		sess.hook.Remove(key)
		return s.rejectNoChange(ctx, row, moderator)
	}

	if !batch || appr.logInBatch() {
		logID, err := s.addLog(ctx, appr.logSubtype(), moderator, row.Target, appr.logParams(row))
		if err != nil {
			return ApproveResult{}, err
		}
		sess.hook.AttachLogEntry(key, logID)
	}

	deleted, err := consequence.AddAs[int64](ctx, s.mgr, consequence.DeleteRows{IDs: []int64{row.ID}})
	if err != nil {
		return ApproveResult{}, err
	}
	if deleted == 0 {
		return ApproveResult{}, errDecided
	}

	return ApproveResult{
		RowID:      row.ID,
		Status:     StatusApproved,
		RevisionID: saved.RevisionID,
		Merged:     merged,
	}, nil
}

// checkApprovable rejects merged rows and rejected rows past the grace period.
func (s *Service) checkApprovable(row domain.PendingChange) error {
	if row.IsMerged() {
		return errAlreadyMerged(row.ID)
	}
	if row.Rejected && s.now().Sub(row.Timestamp) > s.opts.ApproveRejectedGrace {
		return errAlreadyRejected(row.ID)
	}
	return nil
}

// markConflict leaves the row for a manual merge and returns a
// *domain.ConflictError for it.
func (s *Service) markConflict(ctx context.Context, row domain.PendingChange, cause error) error {
	if _, err := s.mgr.Add(ctx, consequence.MarkAsConflict{ID: row.ID}); err != nil {
		return err
	}

	var ce *domain.ConflictError
	if errors.As(cause, &ce) {
		ce.RowID = row.ID
		return ce
	}
	return &domain.ConflictError{RowID: row.ID, BaseRevID: row.BaseRevID}
}

// rejectNoChange turns the approval of a change that would not modify
// anything into a rejection.
func (s *Service) rejectNoChange(ctx context.Context, row domain.PendingChange, moderator domain.Author) (ApproveResult, error) {
	n, err := consequence.AddAs[int64](ctx, s.mgr, consequence.RejectOne{ID: row.ID, Moderator: moderator, At: s.now()})
	if err != nil {
		return ApproveResult{}, err
	}
	if n == 0 {
		return ApproveResult{RowID: row.ID, Status: StatusNoOp}, nil
	}

	params := baseParams(row)
	params["nochange"] = true
	if _, err := s.addLog(ctx, domain.LogReject, moderator, row.Target, params); err != nil {
		return ApproveResult{}, err
	}
	return ApproveResult{RowID: row.ID, Status: StatusRejectedNoChange}, nil
}
