// Package fixup rewrites the records the content pipeline creates during an
// approval so they carry the original author's timestamp, network metadata
// and tags instead of the moderator's.
//
// A Hook lives for one request. Orchestration adds a Task before invoking
// the pipeline; the Hook, subscribed to completions, matches records by
// (target, author, kind) and Flush applies every correction in one batched
// statement per table.
package fixup

import (
	"slices"
	"time"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// State is the lifecycle state of a task.
type State int

const (
	StatePending State = iota
	StateMatched
	StateApplied
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateMatched:
		return "matched"
	case StateApplied:
		return "applied"
	case StateDiscarded:
		return "discarded"
	}
	return "unknown"
}

// Task describes the metadata the records of one approval should carry.
type Task struct {
	Key       domain.RecordKey
	RowID     int64
	IP        string
	XFF       string
	UserAgent string
	Tags      []string
	Timestamp time.Time
}

// NewTask builds the task for approving change. extraTags are appended to
// the change's own tags without duplicates.
func NewTask(change domain.PendingChange, extraTags ...string) Task {
	tags := slices.Clone(change.Tags)
	for _, tag := range extraTags {
		if tag != "" && !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	return Task{
		Key:       change.RecordKey(),
		RowID:     change.ID,
		IP:        change.Network.IP,
		XFF:       change.Network.XFF,
		UserAgent: change.Network.UserAgent,
		Tags:      tags,
		Timestamp: change.Timestamp,
	}
}

// entry is a task with the records matched to it so far.
type entry struct {
	task    Task
	state   State
	records []domain.Completion
	// auditIDs are moderation log entries waiting for the approved revision id.
	auditIDs []int64
}

func (e *entry) firstSeq() int64 {
	if len(e.records) == 0 {
		return 0
	}
	return e.records[0].Seq
}

// firstRevision returns the id of the first matched record that is a
// revision, or 0.
func (e *entry) firstRevision() int64 {
	for _, r := range e.records {
		if r.RevisionID != 0 {
			return r.RevisionID
		}
	}
	return 0
}
