package fixup

import (
	"cmp"
	"maps"
	"slices"
	"time"
)

// plan holds every correction of one flush, grouped by table.
type plan struct {
	revTimestamps map[int64]time.Time
	logTimestamps map[int64]time.Time
	changeFeed    []ChangeFeedUpdate
	checkUser     []CheckUserUpdate
	tags          []TagAssoc
	auditRevIDs   map[int64]int64
	// ignored lists revisions whose timestamp was left unchanged.
	ignored []int64
}

type planInput struct {
	entries   []*entry
	prior     map[int64]time.Time
	refs      []ChangeFeedRef
	tagged    map[int64]bool
	disableIP bool
}

type batchRev struct {
	revID   int64
	pageID  int64
	desired time.Time
}

// applicableTimestamps decides which revisions get their desired timestamp.
// A revision keeps its timestamp when an earlier revision of the same page
// is strictly later than the desired value. Earlier revisions of the same
// batch count with their corrected timestamp. A revision that kept its
// timestamp still carries the time it was saved, which is later than any
// desired value, so every later revision of that page keeps its own too.
func applicableTimestamps(entries []*entry, prior map[int64]time.Time) (map[int64]bool, []int64) {
	var revs []batchRev
	for _, e := range entries {
		if e.task.Timestamp.IsZero() {
			continue
		}
		for _, r := range e.records {
			if r.RevisionID != 0 {
				revs = append(revs, batchRev{revID: r.RevisionID, pageID: r.PageID, desired: e.task.Timestamp})
			}
		}
	}
	slices.SortFunc(revs, func(a, b batchRev) int {
		if c := cmp.Compare(a.pageID, b.pageID); c != 0 {
			return c
		}
		return cmp.Compare(a.revID, b.revID)
	})

	apply := make(map[int64]bool, len(revs))
	var ignored []int64

	var (
		page      int64 = -1
		corrected time.Time
		kept      bool
	)
	for _, r := range revs {
		if r.pageID != page {
			page = r.pageID
			corrected = time.Time{}
			kept = false
		}
		threshold := prior[r.revID]
		if corrected.After(threshold) {
			threshold = corrected
		}
		if kept || threshold.After(r.desired) {
			ignored = append(ignored, r.revID)
			kept = true
			continue
		}
		apply[r.revID] = true
		if r.desired.After(corrected) {
			corrected = r.desired
		}
	}
	slices.Sort(ignored)
	return apply, ignored
}

func buildPlan(in planInput) plan {
	p := plan{
		revTimestamps: make(map[int64]time.Time),
		logTimestamps: make(map[int64]time.Time),
		auditRevIDs:   make(map[int64]int64),
	}

	byRev := make(map[int64]int64, len(in.refs))
	byLog := make(map[int64]int64, len(in.refs))
	for _, ref := range in.refs {
		if ref.RevID != 0 {
			byRev[ref.RevID] = ref.ID
		}
		if ref.LogID != 0 {
			byLog[ref.LogID] = ref.ID
		}
	}

	applyTS, ignored := applicableTimestamps(in.entries, in.prior)
	p.ignored = ignored

	seenRC := make(map[int64]bool)
	tagged := make(map[int64]bool, len(in.tagged))
	maps.Copy(tagged, in.tagged)

	for _, e := range in.entries {
		t := e.task
		for _, r := range e.records {
			var ts time.Time
			if r.RevisionID != 0 && applyTS[r.RevisionID] {
				ts = t.Timestamp
				p.revTimestamps[r.RevisionID] = ts
			}
			// A log-only record follows the timestamp decision of its task's
			// first revision.
			if r.LogID != 0 {
				if r.RevisionID == 0 {
					if first := e.firstRevision(); first == 0 || applyTS[first] {
						ts = t.Timestamp
					}
				}
				if !ts.IsZero() {
					p.logTimestamps[r.LogID] = ts
				}
			}

			rcID := byRev[r.RevisionID]
			if rcID == 0 && r.LogID != 0 {
				rcID = byLog[r.LogID]
			}

			if rcID != 0 && !seenRC[rcID] {
				seenRC[rcID] = true
				ip := t.IP
				if in.disableIP {
					ip = ""
				}
				p.changeFeed = append(p.changeFeed, ChangeFeedUpdate{ID: rcID, IP: ip, Timestamp: ts})
				p.checkUser = append(p.checkUser, CheckUserUpdate{
					ChangeFeedID: rcID,
					IP:           t.IP,
					XFF:          t.XFF,
					UserAgent:    t.UserAgent,
				})
			}

			if len(t.Tags) > 0 && !tagged[rcID] {
				for _, tag := range t.Tags {
					p.tags = append(p.tags, TagAssoc{Tag: tag, RevID: r.RevisionID, RCID: rcID, LogID: r.LogID})
				}
				if rcID != 0 {
					tagged[rcID] = true
				}
			}
		}

		if rev := e.firstRevision(); rev != 0 {
			for _, logID := range e.auditIDs {
				p.auditRevIDs[logID] = rev
			}
		}
	}

	return p
}
