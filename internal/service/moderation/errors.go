package moderation

import (
	"errors"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func errAlreadyMerged(id int64) error {
	return domain.NewModerationError(domain.ErrAlreadyMerged, domain.MsgAlreadyMerged, id)
}

func errAlreadyRejected(id int64) error {
	return domain.NewModerationError(domain.ErrAlreadyRejected, domain.MsgAlreadyReject, id)
}
