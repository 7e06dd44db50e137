// Package pipeline describes the content-save pipeline this system consumes
// and the completion notifications it emits.
package pipeline

import (
	"context"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// SaveRequest is a content save as performed by the moderator on behalf of
// the original author.
type SaveRequest struct {
	Target    domain.Target
	Author    domain.Author
	Text      string
	Summary   string
	BaseRevID int64
	Minor     bool
	Bot       bool
}

// MoveRequest renames From to To. A redirect is left at From when
// LeaveRedirect is set.
type MoveRequest struct {
	From          domain.Target
	To            domain.Target
	Author        domain.Author
	Reason        string
	LeaveRedirect bool
}

// UploadRequest publishes a stashed file under Target.
type UploadRequest struct {
	Target   domain.Target
	Author   domain.Author
	StashKey string
	Comment  string
	PageText string
}

// Result is the outcome of a pipeline call that did not fail.
type Result struct {
	Status     domain.SaveStatus
	RevisionID int64
	PageID     int64
}

// Pipeline is the external content-save subsystem. Implementations must
// return domain.ErrConflict (wrapped) when BaseRevID is no longer current,
// and report completions through a Hub for every record they create.
type Pipeline interface {
	Save(ctx context.Context, req SaveRequest) (Result, error)
	Move(ctx context.Context, req MoveRequest) (Result, error)
	Upload(ctx context.Context, req UploadRequest) (Result, error)
}

// Revision is a read-only view of a history record.
type Revision struct {
	ID     int64
	PageID int64
	Text   string
}

// Reader reads content needed for conflict resolution.
type Reader interface {
	// RevisionText returns domain.ErrNotFound for unknown revisions.
	RevisionText(ctx context.Context, revID int64) (string, error)
	// CurrentRevision returns domain.ErrNotFound when the page does not exist.
	CurrentRevision(ctx context.Context, target domain.Target) (Revision, error)
}
