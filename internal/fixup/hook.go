package fixup

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// Options configure a Hook.
type Options struct {
	// DisableIPStorage leaves the change-feed IP blank.
	DisableIPStorage bool
}

// Report summarizes one Flush.
type Report struct {
	// Tasks is the number of tasks whose corrections were written.
	Tasks int
	// Records is the number of pipeline records corrected.
	Records int
	// IgnoredTimestamps lists revisions that kept their timestamp.
	IgnoredTimestamps []int64
}

// Hook is the request-scoped fixup task queue. It is safe for concurrent use.
type Hook struct {
	store Store
	opts  Options
	log   *slog.Logger

	mu     sync.Mutex
	tasks  map[domain.RecordKey]*entry
	closed bool
}

// NewHook creates an empty Hook.
func NewHook(store Store, opts Options, logger *slog.Logger) *Hook {
	return &Hook{
		store: store,
		opts:  opts,
		log:   logger.With("component", "fixup"),
		tasks: make(map[domain.RecordKey]*entry),
	}
}

// AddTask registers t. A pending task with the same key is replaced; a task
// that already matched records is kept.
func (h *Hook) AddTask(t Task) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	if e, ok := h.tasks[t.Key]; ok && e.state != StatePending {
		h.log.Warn("task already matched", slog.String("key", t.Key.String()))
		return
	}
	h.tasks[t.Key] = &entry{task: t, state: StatePending}
}

// AttachLogEntry links a moderation log entry to the task under key so Flush
// can fill in the revision it approved.
func (h *Hook) AttachLogEntry(key domain.RecordKey, logID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.tasks[key]; ok {
		e.auditIDs = append(e.auditIDs, logID)
	}
}

// OnCompletion matches c against the registered tasks. Records without a
// task are not ours and are ignored. It has the pipeline.Listener signature.
func (h *Hook) OnCompletion(_ context.Context, c domain.Completion) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.tasks[c.Key()]
	if !ok {
		return
	}
	if e.state != StatePending && e.state != StateMatched {
		return
	}
	e.state = StateMatched
	e.records = append(e.records, c)
}

// State returns the state of the task under key.
func (h *Hook) State(key domain.RecordKey) (State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.tasks[key]
	if !ok {
		return 0, false
	}
	return e.state, true
}

// Remove drops the task under key unless its corrections were written.
// Used when an approval is abandoned; records it matched were rolled back
// with the approval and are not corrected.
func (h *Hook) Remove(key domain.RecordKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.tasks[key]; ok && e.state != StateApplied {
		e.state = StateDiscarded
		delete(h.tasks, key)
	}
}

// Flush writes the corrections for every matched task, one statement per
// table, and forgets those tasks. Pending tasks stay registered.
func (h *Hook) Flush(ctx context.Context) (Report, error) {
	h.mu.Lock()
	var matched []*entry
	for _, e := range h.tasks {
		if e.state == StateMatched {
			matched = append(matched, e)
		}
	}
	h.mu.Unlock()

	if len(matched) == 0 {
		return Report{}, nil
	}
	slices.SortFunc(matched, func(a, b *entry) int { return cmp.Compare(a.firstSeq(), b.firstSeq()) })

	var revIDs, logIDs []int64
	records := 0
	for _, e := range matched {
		for _, r := range e.records {
			records++
			if r.RevisionID != 0 {
				revIDs = append(revIDs, r.RevisionID)
			}
			if r.LogID != 0 {
				logIDs = append(logIDs, r.LogID)
			}
		}
	}

	prior, err := h.store.PriorTimestamps(ctx, revIDs)
	if err != nil {
		return Report{}, fmt.Errorf("fixup: prior timestamps: %w", err)
	}
	refs, err := h.store.ChangeFeedIDs(ctx, revIDs, logIDs)
	if err != nil {
		return Report{}, fmt.Errorf("fixup: change feed ids: %w", err)
	}
	rcIDs := make([]int64, 0, len(refs))
	for _, ref := range refs {
		rcIDs = append(rcIDs, ref.ID)
	}
	var tagged map[int64]bool
	if len(rcIDs) > 0 {
		if tagged, err = h.store.TaggedRecords(ctx, rcIDs); err != nil {
			return Report{}, fmt.Errorf("fixup: tagged records: %w", err)
		}
	}

	p := buildPlan(planInput{
		entries:   matched,
		prior:     prior,
		refs:      refs,
		tagged:    tagged,
		disableIP: h.opts.DisableIPStorage,
	})

	if err := h.write(ctx, p); err != nil {
		return Report{}, err
	}

	h.mu.Lock()
	for _, e := range matched {
		e.state = StateApplied
		if cur, ok := h.tasks[e.task.Key]; ok && cur == e {
			delete(h.tasks, e.task.Key)
		}
	}
	h.mu.Unlock()

	report := Report{Tasks: len(matched), Records: records, IgnoredTimestamps: p.ignored}
	h.log.InfoContext(ctx, "fixup applied",
		slog.Int("tasks", report.Tasks),
		slog.Int("records", report.Records),
		slog.Int("ignored_timestamps", len(report.IgnoredTimestamps)),
	)
	return report, nil
}

func (h *Hook) write(ctx context.Context, p plan) error {
	if len(p.revTimestamps) > 0 {
		if err := h.store.UpdateRevisionTimestamps(ctx, p.revTimestamps); err != nil {
			return fmt.Errorf("fixup: revisions: %w", err)
		}
	}
	if len(p.changeFeed) > 0 {
		if err := h.store.UpdateChangeFeed(ctx, p.changeFeed); err != nil {
			return fmt.Errorf("fixup: change feed: %w", err)
		}
	}
	if len(p.checkUser) > 0 {
		if err := h.store.UpdateCheckUser(ctx, p.checkUser); err != nil {
			return fmt.Errorf("fixup: check user: %w", err)
		}
	}
	if len(p.logTimestamps) > 0 {
		if err := h.store.UpdateLogEntries(ctx, p.logTimestamps); err != nil {
			return fmt.Errorf("fixup: log entries: %w", err)
		}
	}
	if len(p.tags) > 0 {
		if err := h.store.InsertTags(ctx, p.tags); err != nil {
			return fmt.Errorf("fixup: tags: %w", err)
		}
	}
	if len(p.auditRevIDs) > 0 {
		if err := h.store.FillAuditRevIDs(ctx, p.auditRevIDs); err != nil {
			return fmt.Errorf("fixup: audit rev ids: %w", err)
		}
	}
	return nil
}

// Close discards every task still registered and stops accepting new ones.
// It returns the number of discarded tasks. Unmatched tasks are normal: the
// approval failed before the pipeline wrote anything.
func (h *Hook) Close() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	discarded := len(h.tasks)
	for key, e := range h.tasks {
		e.state = StateDiscarded
		delete(h.tasks, key)
	}
	h.closed = true

	if discarded > 0 {
		h.log.Debug("discarded fixup tasks", slog.Int("count", discarded))
	}
	return discarded
}
