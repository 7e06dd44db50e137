package moderation

import (
	"context"
	"strings"

	"github.com/heartmarshall/modqueue-backend/internal/consequence"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// Block puts address (a user name or an IP) on the spam list. Later
// submissions from it are stored as auto-rejected. Returns false when the
// address was already blocked.
func (s *Service) Block(ctx context.Context, address string, moderator domain.Author) (bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return false, domain.NewValidationError("address", "required")
	}
	if err := s.auth.Authorize(ctx, moderator); err != nil {
		return false, err
	}

	var added bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		added, err = consequence.AddAs[bool](ctx, s.mgr, consequence.BlockUser{Block: domain.Block{
			Address:     address,
			BlockerID:   moderator.ID,
			BlockerName: moderator.Name,
			CreatedAt:   s.now(),
		}})
		if err != nil || !added {
			return err
		}
		_, err = s.addLog(ctx, domain.LogBlock, moderator, authorPage(address), nil)
		return err
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// Unblock removes address from the spam list. Returns false when it was not
// blocked.
func (s *Service) Unblock(ctx context.Context, address string, moderator domain.Author) (bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return false, domain.NewValidationError("address", "required")
	}
	if err := s.auth.Authorize(ctx, moderator); err != nil {
		return false, err
	}

	var removed bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		removed, err = consequence.AddAs[bool](ctx, s.mgr, consequence.UnblockUser{Address: address})
		if err != nil || !removed {
			return err
		}
		_, err = s.addLog(ctx, domain.LogUnblock, moderator, authorPage(address), nil)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
