package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")

	// ErrAlreadyRejected is returned when a rejected change is approved after
	// the re-approval grace period, or rejected twice where that matters.
	ErrAlreadyRejected = errors.New("already rejected")
	// ErrAlreadyMerged is returned for any decision on a merged change.
	ErrAlreadyMerged = errors.New("already merged")
	// ErrNoChange is returned by the pipeline when the saved content equals
	// the current revision.
	ErrNoChange = errors.New("no change")
	// ErrPipeline marks failures of the content pipeline unrelated to moderation.
	ErrPipeline = errors.New("pipeline failure")
	// ErrBlocked marks submissions from authors on the block list.
	ErrBlocked = errors.New("author blocked")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// ConflictHunk is one region of the base text that both sides changed differently.
type ConflictHunk struct {
	BaseStart int
	BaseEnd   int
	Base      []string
	Local     []string
	Remote    []string
}

// ConflictError is returned when a pending edit cannot be merged onto the
// current revision. The row is left marked as conflicted for a manual merge.
type ConflictError struct {
	RowID      int64
	BaseRevID  int64
	CurrentRev int64
	Hunks      []ConflictHunk
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("change %d: edit conflict against revision %d (%d hunks)", e.RowID, e.CurrentRev, len(e.Hunks))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// PipelineError carries a failure reported by the content pipeline verbatim.
type PipelineError struct {
	Op  string
	Err error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the pipeline marker and the original cause.
func (e *PipelineError) Unwrap() []error { return []error{ErrPipeline, e.Err} }

// ModerationError attaches a message key and parameters to a sentinel so the
// moderator-facing layer can render it without inspecting the error string.
type ModerationError struct {
	Key    string
	Params []any
	Err    error
}

func (e *ModerationError) Error() string {
	if len(e.Params) == 0 {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("%s %v: %v", e.Key, e.Params, e.Err)
}

func (e *ModerationError) Unwrap() error { return e.Err }

// NewModerationError wraps err with a message key and parameters.
func NewModerationError(err error, key string, params ...any) *ModerationError {
	return &ModerationError{Key: key, Params: params, Err: err}
}

// Message keys of the error taxonomy.
const (
	MsgNotFound      = "moderation-edit-not-found"
	MsgAlreadyReject = "moderation-already-rejected"
	MsgAlreadyMerged = "moderation-already-merged"
	MsgEditConflict  = "moderation-edit-conflict"
	MsgNoChange      = "moderation-edit-no-change"
	MsgForbidden     = "moderation-permission-denied"
	MsgPipeline      = "moderation-pipeline-error"
	MsgValidation    = "moderation-invalid-input"
	MsgNotConflicted = "moderation-merge-not-needed"
	MsgInternal      = "moderation-unknown-error"
)

// MessageOf maps any error of the taxonomy to a message key and parameters.
func MessageOf(err error) (string, []any) {
	var me *ModerationError
	if errors.As(err, &me) {
		return me.Key, me.Params
	}

	var ce *ConflictError
	if errors.As(err, &ce) {
		return MsgEditConflict, []any{ce.RowID, len(ce.Hunks)}
	}

	var pe *PipelineError
	if errors.As(err, &pe) {
		return MsgPipeline, []any{pe.Op, pe.Err.Error()}
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return MsgNotFound, nil
	case errors.Is(err, ErrAlreadyRejected):
		return MsgAlreadyReject, nil
	case errors.Is(err, ErrAlreadyMerged):
		return MsgAlreadyMerged, nil
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		return MsgForbidden, nil
	case errors.Is(err, ErrValidation):
		return MsgValidation, nil
	case errors.Is(err, ErrNoChange):
		return MsgNoChange, nil
	}
	return MsgInternal, nil
}
