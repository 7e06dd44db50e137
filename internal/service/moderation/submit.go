package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/modqueue-backend/internal/consequence"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/pkg/ctxutil"
)

// Submit stores a change for moderation and returns its row id. A repeat
// submission by the same author for the same target updates the existing
// row. Changes from blocked authors are stored as spam without telling the
// caller.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (int64, error) {
	if err := input.Validate(); err != nil {
		return 0, err
	}

	client, _ := ctxutil.ClientFromCtx(ctx)

	blocked, err := s.isBlocked(ctx, input.Author, client.IP)
	if err != nil {
		return 0, err
	}

	b := domain.NewChange(input.Kind, input.Target, input.Author).
		WithText(input.Text).
		WithComment(input.Comment).
		WithFlags(input.Minor, input.Bot).
		WithBase(input.BaseRevID, input.OldLen).
		WithNetwork(domain.NetworkInfo{IP: client.IP, XFF: client.XFF, UserAgent: client.UserAgent}).
		WithTags(input.Tags...).
		WithTimestamp(s.now())
	if input.Kind == domain.KindMove {
		b = b.WithNewTarget(input.NewTarget)
	}
	if input.StashKey != "" {
		b = b.WithStashKey(input.StashKey)
	}
	if blocked {
		b = b.AutoRejected()
	}

	change, err := b.Build()
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		id, err = consequence.AddAs[int64](ctx, s.mgr, consequence.InsertRow{Change: change})
		if err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
		if !blocked {
			return s.invalidatePendingTime(ctx)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.InfoContext(ctx, "change submitted",
		slog.Int64("row_id", id),
		slog.String("kind", change.Kind.String()),
		slog.String("target", change.Target.String()),
		slog.Bool("spam", blocked),
	)
	return id, nil
}

// ClaimAnonChanges moves the pending changes made under an anonymous token
// to the account its owner just registered.
func (s *Service) ClaimAnonChanges(ctx context.Context, token string, registered domain.Author) (int64, error) {
	if token == "" {
		return 0, domain.NewValidationError("token", "required")
	}
	if registered.IsAnonymous() {
		return 0, domain.NewValidationError("author", "must be registered")
	}

	n, err := consequence.AddAs[int64](ctx, s.mgr, consequence.ReassignAnonChanges{
		FromPreloadID: domain.AnonPreloadID(token),
		To:            registered,
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if err := s.invalidatePendingTime(ctx); err != nil {
			return n, err
		}
		s.log.InfoContext(ctx, "anonymous changes claimed",
			slog.String("user", registered.Name),
			slog.Int64("count", n),
		)
	}
	return n, nil
}

// isBlocked checks the author's name and the submitting address.
func (s *Service) isBlocked(ctx context.Context, author domain.Author, ip string) (bool, error) {
	blocked, err := s.blocks.IsBlocked(ctx, author.Name)
	if err != nil || blocked {
		return blocked, err
	}
	if ip == "" || ip == author.Name {
		return false, nil
	}
	return s.blocks.IsBlocked(ctx, ip)
}
