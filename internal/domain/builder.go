package domain

import (
	"slices"
	"strings"
	"time"
)

// ChangeBuilder assembles a PendingChange. Every setter returns a new
// builder, so a partially built change is never shared between code paths.
type ChangeBuilder struct {
	c PendingChange
}

// NewChange starts a builder for a change of the given kind.
func NewChange(kind Kind, target Target, author Author) ChangeBuilder {
	return ChangeBuilder{c: PendingChange{
		Kind:      kind,
		Target:    target,
		Author:    author,
		PreloadID: author.PreloadID(),
	}}
}

func (b ChangeBuilder) WithText(text string) ChangeBuilder {
	b.c.Text = text
	b.c.NewLen = len(text)
	return b
}

func (b ChangeBuilder) WithComment(comment string) ChangeBuilder {
	b.c.Comment = strings.TrimSpace(comment)
	return b
}

func (b ChangeBuilder) WithFlags(minor, bot bool) ChangeBuilder {
	b.c.Minor = minor
	b.c.Bot = bot
	return b
}

// WithBase records the revision the author started editing from and its length.
// A zero revision marks the change as a page creation.
func (b ChangeBuilder) WithBase(revID int64, oldLen int) ChangeBuilder {
	b.c.BaseRevID = revID
	b.c.OldLen = oldLen
	b.c.New = revID == 0
	return b
}

func (b ChangeBuilder) WithNewTarget(t Target) ChangeBuilder {
	b.c.NewTarget = t
	return b
}

func (b ChangeBuilder) WithNetwork(n NetworkInfo) ChangeBuilder {
	b.c.Network = n
	return b
}

func (b ChangeBuilder) WithTags(tags ...string) ChangeBuilder {
	b.c.Tags = slices.Clone(tags)
	return b
}

func (b ChangeBuilder) WithStashKey(key string) ChangeBuilder {
	b.c.StashKey = key
	return b
}

func (b ChangeBuilder) WithTimestamp(ts time.Time) ChangeBuilder {
	b.c.Timestamp = ts.UTC()
	return b
}

// AutoRejected marks the change as spam from a blocked author.
func (b ChangeBuilder) AutoRejected() ChangeBuilder {
	b.c.Rejected = true
	b.c.RejectedAuto = true
	return b
}

// Build validates the assembled change and returns an independent copy.
func (b ChangeBuilder) Build() (PendingChange, error) {
	var errs []FieldError

	if !b.c.Kind.IsValid() {
		errs = append(errs, FieldError{Field: "kind", Message: "invalid"})
	}
	if b.c.Target.IsZero() {
		errs = append(errs, FieldError{Field: "target", Message: "required"})
	}
	if b.c.Author.Name == "" {
		errs = append(errs, FieldError{Field: "author", Message: "required"})
	}
	if b.c.Author.IsAnonymous() && b.c.Author.AnonToken == "" {
		errs = append(errs, FieldError{Field: "author", Message: "anonymous token required"})
	}
	if b.c.Kind == KindMove && b.c.NewTarget.IsZero() {
		errs = append(errs, FieldError{Field: "new_target", Message: "required for move"})
	}
	if b.c.Kind == KindUpload && b.c.StashKey == "" {
		errs = append(errs, FieldError{Field: "stash_key", Message: "required for upload"})
	}
	if b.c.Timestamp.IsZero() {
		errs = append(errs, FieldError{Field: "timestamp", Message: "required"})
	}
	if len(errs) > 0 {
		return PendingChange{}, NewValidationErrors(errs)
	}

	out := b.c
	out.Tags = slices.Clone(b.c.Tags)
	return out, nil
}
