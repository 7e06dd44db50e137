package moderation

import (
	"context"
	"time"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// List returns queue rows of one folder, newest first.
func (s *Service) List(ctx context.Context, moderator domain.Author, input ListInput) ([]domain.PendingChange, error) {
	if err := s.auth.Authorize(ctx, moderator); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	return s.changes.List(ctx, input.Folder, limit, input.Offset)
}

// Preload returns the author's own pending edit of target so the author can
// keep editing it. Returns domain.ErrNotFound when there is none.
func (s *Service) Preload(ctx context.Context, author domain.Author, target domain.Target) (domain.PendingChange, error) {
	if author.IsAnonymous() && author.AnonToken == "" {
		return domain.PendingChange{}, domain.ErrNotFound
	}
	return s.changes.Preload(ctx, author.PreloadID(), target)
}

// NewestPendingTime returns the submission time of the newest pending
// change. ok is false when the queue is empty.
func (s *Service) NewestPendingTime(ctx context.Context) (t time.Time, ok bool, err error) {
	return s.pending.Get(ctx)
}
