package moderation

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

const (
	maxCommentLength = 500
	maxTextBytes     = 2 << 20
	maxTags          = 20
)

// SubmitInput holds the parameters of a change submitted for moderation.
type SubmitInput struct {
	Kind      domain.Kind
	Target    domain.Target
	NewTarget domain.Target
	Author    domain.Author
	Text      string
	Comment   string
	Minor     bool
	Bot       bool
	BaseRevID int64
	OldLen    int
	StashKey  string
	Tags      []string
}

// Validate checks the fields the change builder does not.
func (i SubmitInput) Validate() error {
	var errs []domain.FieldError

	if utf8.RuneCountInString(strings.TrimSpace(i.Comment)) > maxCommentLength {
		errs = append(errs, domain.FieldError{Field: "comment", Message: "max 500 characters"})
	}
	if len(i.Text) > maxTextBytes {
		errs = append(errs, domain.FieldError{Field: "text", Message: "max 2 MiB"})
	}
	if i.BaseRevID < 0 {
		errs = append(errs, domain.FieldError{Field: "base_rev_id", Message: "must be non-negative"})
	}
	if len(i.Tags) > maxTags {
		errs = append(errs, domain.FieldError{Field: "tags", Message: "max 20"})
	}
	if i.Kind == domain.KindMove && i.NewTarget == i.Target {
		errs = append(errs, domain.FieldError{Field: "new_target", Message: "must differ from target"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds the parameters for listing queue rows.
type ListInput struct {
	Folder domain.Folder
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError
	if !i.Folder.IsValid() {
		errs = append(errs, domain.FieldError{Field: "folder", Message: "invalid"})
	}
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Limit > MaxListLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "max 500"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// EditChangeInput holds a moderator's replacement text for a pending row.
type EditChangeInput struct {
	RowID   int64
	Text    string
	Comment string
}

// Validate checks all fields and collects all errors.
func (i EditChangeInput) Validate() error {
	var errs []domain.FieldError
	if i.RowID <= 0 {
		errs = append(errs, domain.FieldError{Field: "row_id", Message: "required"})
	}
	if len(i.Text) > maxTextBytes {
		errs = append(errs, domain.FieldError{Field: "text", Message: "max 2 MiB"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(i.Comment)) > maxCommentLength {
		errs = append(errs, domain.FieldError{Field: "comment", Message: "max 500 characters"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
