package domain

import "time"

// Completion is the content pipeline's notification that a record was
// durably written. Every save in the system produces one, moderated or not.
type Completion struct {
	// RevisionID is the history record the save created.
	RevisionID int64
	// LogID is the pipeline's own audit-log entry (moves, uploads); 0 if none.
	LogID  int64
	PageID int64
	Target Target
	// AuthorName is the identity the pipeline attributed the record to.
	AuthorName string
	Kind       Kind
	// Seq is a monotonically increasing sequence number.
	Seq int64
}

// Key returns the (target, author, kind) triple used to find a fixup task.
func (c Completion) Key() RecordKey {
	return RecordKey{Target: c.Target, AuthorName: c.AuthorName, Kind: c.Kind}
}

// LogEntry is one row of the moderation log.
type LogEntry struct {
	ID        int64
	Subtype   LogSubtype
	Moderator Author
	Target    Target
	Params    map[string]any
	// RevID cross-references the approved revision. It is nil when the
	// revision did not exist yet at construction time; the fixup queue
	// fills it in.
	RevID     *int64
	CreatedAt time.Time
}
