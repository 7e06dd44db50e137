package merge

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
)

// Resolution is the text and base revision an edit should be saved with.
type Resolution struct {
	Text      string
	BaseRevID int64
	// Merged is set when the edit was rebased onto a newer revision.
	Merged bool
}

// Resolver rebases pending edits whose base revision went stale.
type Resolver struct {
	reader pipeline.Reader
}

// NewResolver creates a Resolver reading texts through reader.
func NewResolver(reader pipeline.Reader) *Resolver {
	return &Resolver{reader: reader}
}

// Resolve returns the text to save for change. When the base revision is
// still current (or the page does not exist yet) the pending text is used
// unchanged. A failed merge returns *domain.ConflictError with RowID set.
func (r *Resolver) Resolve(ctx context.Context, change domain.PendingChange) (Resolution, error) {
	current, err := r.reader.CurrentRevision(ctx, change.Target)
	if errors.Is(err, domain.ErrNotFound) {
		return Resolution{Text: change.Text, BaseRevID: change.BaseRevID}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("current revision of %s: %w", change.Target, err)
	}

	if change.BaseRevID == 0 || change.BaseRevID == current.ID {
		return Resolution{Text: change.Text, BaseRevID: change.BaseRevID}, nil
	}

	base, err := r.reader.RevisionText(ctx, change.BaseRevID)
	if err != nil {
		return Resolution{}, fmt.Errorf("base revision %d: %w", change.BaseRevID, err)
	}

	res, err := Resolve(base, change.Text, current.Text)
	if err != nil {
		var ce *domain.ConflictError
		if errors.As(err, &ce) {
			ce.RowID = change.ID
			ce.BaseRevID = change.BaseRevID
			ce.CurrentRev = current.ID
		}
		return Resolution{}, err
	}

	return Resolution{Text: res.Text, BaseRevID: current.ID, Merged: true}, nil
}
