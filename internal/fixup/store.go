package fixup

import (
	"context"
	"time"
)

// ChangeFeedRef locates a change-feed entry by the revision or log entry it
// describes.
type ChangeFeedRef struct {
	ID    int64
	RevID int64
	LogID int64
}

// ChangeFeedUpdate is the corrected state of one change-feed entry.
// A zero Timestamp leaves the stored timestamp unchanged.
type ChangeFeedUpdate struct {
	ID        int64
	IP        string
	Timestamp time.Time
}

// CheckUserUpdate is the corrected network metadata of the secondary audit
// record belonging to a change-feed entry.
type CheckUserUpdate struct {
	ChangeFeedID int64
	IP           string
	XFF          string
	UserAgent    string
}

// TagAssoc attaches Tag to a revision, its change-feed entry and its log
// entry. Zero ids are stored as NULL.
type TagAssoc struct {
	Tag   string
	RevID int64
	RCID  int64
	LogID int64
}

// Store reads and writes the content store tables. Every Update/Insert method
// must issue at most one statement regardless of input size and must be a
// no-op for empty input.
type Store interface {
	// PriorTimestamps returns, for each revision, the newest timestamp among
	// revisions of the same page with a lower id that are not in revIDs.
	// Revisions without such predecessors are absent from the result.
	PriorTimestamps(ctx context.Context, revIDs []int64) (map[int64]time.Time, error)
	ChangeFeedIDs(ctx context.Context, revIDs, logIDs []int64) ([]ChangeFeedRef, error)
	// TaggedRecords returns the change-feed ids that already carry a tag.
	TaggedRecords(ctx context.Context, rcIDs []int64) (map[int64]bool, error)

	UpdateRevisionTimestamps(ctx context.Context, ts map[int64]time.Time) error
	UpdateChangeFeed(ctx context.Context, updates []ChangeFeedUpdate) error
	UpdateCheckUser(ctx context.Context, updates []CheckUserUpdate) error
	UpdateLogEntries(ctx context.Context, ts map[int64]time.Time) error
	InsertTags(ctx context.Context, tags []TagAssoc) error
	// FillAuditRevIDs sets rev_id on moderation log entries that have none.
	FillAuditRevIDs(ctx context.Context, revByLog map[int64]int64) error
}
