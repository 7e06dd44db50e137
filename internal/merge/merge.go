// Package merge resolves pending edits whose base revision is no longer the
// page's current revision.
package merge

import (
	"slices"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// Result is a clean three-way merge.
type Result struct {
	Text string
	// Hunks is the number of change regions applied from either side.
	Hunks int
}

type side int

const (
	sideLocal side = iota
	sideRemote
)

// change replaces base[start:end) with lines.
type change struct {
	start, end int
	lines      []string
	side       side
}

// Resolve applies the base->local diff on top of remote. Changes touching
// disjoint line ranges of base merge cleanly; overlapping changes merge only
// when both sides produced identical text. Otherwise it returns a
// *domain.ConflictError listing every conflicting hunk. The function is pure.
func Resolve(base, local, remote string) (Result, error) {
	switch {
	case local == remote, remote == base:
		return Result{Text: local}, nil
	case local == base:
		return Result{Text: remote}, nil
	}

	b, l, r := splitLines(base), splitLines(local), splitLines(remote)

	changes := append(diff(b, l, sideLocal), diff(b, r, sideRemote)...)
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].start != changes[j].start {
			return changes[i].start < changes[j].start
		}
		if changes[i].end != changes[j].end {
			return changes[i].end < changes[j].end
		}
		return changes[i].side < changes[j].side
	})

	var (
		out       []string
		conflicts []domain.ConflictHunk
		pos       int
		groups    int
	)
	for i := 0; i < len(changes); {
		gs, ge := changes[i].start, changes[i].end
		j := i + 1
		for j < len(changes) && overlaps(changes[j], gs, ge) {
			ge = max(ge, changes[j].end)
			j++
		}
		group := changes[i:j]
		i = j
		groups++

		out = append(out, b[pos:gs]...)
		pos = ge

		localText, localTouched := applyGroup(b, gs, ge, group, sideLocal)
		remoteText, remoteTouched := applyGroup(b, gs, ge, group, sideRemote)

		switch {
		case !remoteTouched:
			out = append(out, localText...)
		case !localTouched:
			out = append(out, remoteText...)
		case slices.Equal(localText, remoteText):
			out = append(out, localText...)
		default:
			conflicts = append(conflicts, domain.ConflictHunk{
				BaseStart: gs,
				BaseEnd:   ge,
				Base:      slices.Clone(b[gs:ge]),
				Local:     localText,
				Remote:    remoteText,
			})
		}
	}
	out = append(out, b[pos:]...)

	if len(conflicts) > 0 {
		return Result{}, &domain.ConflictError{Hunks: conflicts}
	}
	return Result{Text: strings.Join(out, "\n"), Hunks: groups}, nil
}

// overlaps reports whether c must be resolved together with the group
// covering base[gs:ge). Two insertions at the same point overlap, and so does
// an insertion at the start of a replaced range.
func overlaps(c change, gs, ge int) bool {
	if c.start == gs {
		return true
	}
	return c.start < ge && gs < c.end
}

// applyGroup returns base[gs:ge) with the changes of one side applied.
func applyGroup(base []string, gs, ge int, group []change, s side) ([]string, bool) {
	var (
		out     []string
		pos     = gs
		touched bool
	)
	for _, c := range group {
		if c.side != s {
			continue
		}
		touched = true
		out = append(out, base[pos:c.start]...)
		out = append(out, c.lines...)
		pos = c.end
	}
	out = append(out, base[pos:ge]...)
	return out, touched
}

func diff(a, b []string, s side) []change {
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var out []change
	for _, op := range m.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		out = append(out, change{
			start: op.I1,
			end:   op.I2,
			lines: slices.Clone(b[op.J1:op.J2]),
			side:  s,
		})
	}
	return out
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}
