package moderation

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/modqueue-backend/internal/consequence"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// Merge records that a moderator resolved a conflicted row by hand and
// saved the result as revID.
func (s *Service) Merge(ctx context.Context, rowID, revID int64, moderator domain.Author) error {
	if err := s.auth.Authorize(ctx, moderator); err != nil {
		return err
	}
	if revID <= 0 {
		return domain.NewValidationError("rev_id", "required")
	}

	row, err := s.load(ctx, rowID)
	if err != nil {
		return err
	}
	if row.IsMerged() {
		return errAlreadyMerged(row.ID)
	}
	if !row.Conflict {
		return domain.NewModerationError(domain.ErrValidation, domain.MsgNotConflicted, row.ID)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := consequence.AddAs[int64](ctx, s.mgr, consequence.MarkAsMerged{ID: row.ID, RevID: revID})
		if err != nil {
			return err
		}
		if n == 0 {
			return errAlreadyMerged(row.ID)
		}

		_, err = consequence.AddAs[int64](ctx, s.mgr, consequence.AddLogEntry{Entry: domain.LogEntry{
			Subtype:   domain.LogMerge,
			Moderator: moderator,
			Target:    row.Target,
			Params:    baseParams(row),
			RevID:     &revID,
			CreatedAt: s.now(),
		}})
		return err
	})
	if err != nil {
		return err
	}
	if err := s.invalidatePendingTime(ctx); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "change merged",
		slog.Int64("row_id", row.ID),
		slog.Int64("rev_id", revID),
		slog.String("moderator", moderator.Name),
	)
	return nil
}

// EditChange lets a moderator replace the text and comment of a pending row
// before deciding on it.
func (s *Service) EditChange(ctx context.Context, input EditChangeInput, moderator domain.Author) error {
	if !s.opts.EnableEditChange {
		return domain.NewModerationError(domain.ErrForbidden, domain.MsgForbidden)
	}
	if err := s.auth.Authorize(ctx, moderator); err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return err
	}

	row, err := s.load(ctx, input.RowID)
	if err != nil {
		return err
	}
	if row.IsMerged() {
		return errAlreadyMerged(row.ID)
	}
	if row.Rejected {
		return errAlreadyRejected(row.ID)
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.mgr.Add(ctx, consequence.ModifyPendingChange{
			ID:      row.ID,
			Text:    input.Text,
			Comment: input.Comment,
			NewLen:  len(input.Text),
		})
		if err != nil {
			return err
		}

		params := baseParams(row)
		params["oldlen"] = row.NewLen
		params["newlen"] = len(input.Text)
		_, err = s.addLog(ctx, domain.LogEditChange, moderator, row.Target, params)
		return err
	})
}
