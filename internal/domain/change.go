package domain

import (
	"fmt"
	"time"
)

// Target is a stable page locator.
type Target struct {
	Namespace int
	Title     string
}

// NewTarget returns a Target with a normalized title.
func NewTarget(namespace int, title string) Target {
	return Target{Namespace: namespace, Title: NormalizeTitle(title)}
}

func (t Target) IsZero() bool { return t.Title == "" }

func (t Target) String() string {
	return fmt.Sprintf("%d:%s", t.Namespace, t.Title)
}

// Author identifies who submitted a change or who acts as a moderator.
// Anonymous authors have ID 0, their IP address as Name and a random
// AnonToken that keeps their submissions together until they register.
type Author struct {
	ID        int64
	Name      string
	AnonToken string
}

func (a Author) IsAnonymous() bool { return a.ID == 0 }

// PreloadID returns the key used to reunite an author's pending changes.
func (a Author) PreloadID() string {
	if a.IsAnonymous() {
		return "]" + a.AnonToken
	}
	return "[" + a.Name
}

// AnonPreloadID returns the preload identity of an anonymous token.
func AnonPreloadID(token string) string { return "]" + token }

// NetworkInfo is the network metadata captured at submission time.
type NetworkInfo struct {
	IP        string
	XFF       string
	UserAgent string
}

// PendingChange is a queue row: one change awaiting a moderator decision.
type PendingChange struct {
	ID        int64
	Timestamp time.Time
	Kind      Kind
	Target    Target
	// NewTarget is the destination of a move; zero for other kinds.
	NewTarget Target
	Author    Author
	PreloadID string

	Comment   string
	Text      string
	Minor     bool
	Bot       bool
	New       bool
	BaseRevID int64
	OldLen    int
	NewLen    int
	StashKey  string
	Tags      []string
	Network   NetworkInfo

	Rejected      bool
	RejectedAuto  bool
	RejectedBatch bool
	RejectedBy    Author
	RejectedAt    *time.Time
	MergedRevID   int64
	Conflict      bool
}

// IsMerged reports whether a moderator already merged the change manually.
func (c PendingChange) IsMerged() bool { return c.MergedRevID != 0 }

// IsPending reports whether the change still awaits a decision.
func (c PendingChange) IsPending() bool { return !c.Rejected && !c.IsMerged() }

// RecordKey returns the key that completion records of this change carry.
func (c PendingChange) RecordKey() RecordKey {
	return RecordKey{Target: c.Target, AuthorName: c.Author.Name, Kind: c.Kind}
}

// RecordKey identifies the records an approval produces:
// (target, author, operation kind).
type RecordKey struct {
	Target     Target
	AuthorName string
	Kind       Kind
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Kind, k.Target, k.AuthorName)
}

// Block marks an author whose future submissions are auto-rejected.
type Block struct {
	Address     string
	BlockerID   int64
	BlockerName string
	CreatedAt   time.Time
}
