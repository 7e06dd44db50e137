package moderation

import (
	"context"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// Authorizer decides whether a moderator may act on the queue. It is a pure
// precondition: it runs before any consequence is created.
type Authorizer interface {
	Authorize(ctx context.Context, moderator domain.Author) error
}

// StaticAuthorizer allows registered users listed by name. An empty list
// allows every registered user.
type StaticAuthorizer struct {
	moderators map[string]struct{}
}

// NewStaticAuthorizer creates a StaticAuthorizer for names.
func NewStaticAuthorizer(names []string) *StaticAuthorizer {
	a := &StaticAuthorizer{moderators: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n != "" {
			a.moderators[domain.NormalizeTitle(n)] = struct{}{}
		}
	}
	return a
}

func (a *StaticAuthorizer) Authorize(_ context.Context, moderator domain.Author) error {
	if moderator.IsAnonymous() {
		return domain.NewModerationError(domain.ErrForbidden, domain.MsgForbidden)
	}
	if len(a.moderators) == 0 {
		return nil
	}
	if _, ok := a.moderators[domain.NormalizeTitle(moderator.Name)]; !ok {
		return domain.NewModerationError(domain.ErrForbidden, domain.MsgForbidden, moderator.Name)
	}
	return nil
}
