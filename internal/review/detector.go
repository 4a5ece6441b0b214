// Package review flags legal processes that have gone too long without a
// review by the responsible lawyer.
package review

import (
	"sort"

	"lexledger/internal/core"
)

// Threshold is the number of whole days after which a process is stale.
const Threshold = 30

// Reference returns the date staleness is measured from: the last review
// date, falling back to the creation date. ok is false when neither is set.
func Reference(p core.Process) (ref core.Date, ok bool) {
	if !p.LastReviewDate.IsZero() {
		return p.LastReviewDate, true
	}
	if !p.CreatedDate.IsZero() {
		return p.CreatedDate, true
	}
	return core.Date{}, false
}

// DaysSinceReview returns the whole calendar days between the reference date
// and now, and false when the process has no reference date.
func DaysSinceReview(p core.Process, now core.Date) (int, bool) {
	ref, ok := Reference(p)
	if !ok {
		return 0, false
	}
	return ref.DaysUntil(now), true
}

// IsStale reports whether p must be flagged at now. Archived processes are
// never stale.
func IsStale(p core.Process, now core.Date) bool {
	if p.Status == core.ProcessArchived {
		return false
	}
	days, ok := DaysSinceReview(p, now)
	return ok && days >= Threshold
}

// FlagForReview returns the stale processes, oldest reference date first.
// The input slice is not reordered.
func FlagForReview(processes []core.Process, now core.Date) []core.Process {
	var out []core.Process
	for _, p := range processes {
		if IsStale(p, now) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, _ := Reference(out[i])
		rj, _ := Reference(out[j])
		return ri.Before(rj)
	})
	return out
}

// MarkReviewed returns p with its last review date set to now.
func MarkReviewed(p core.Process, now core.Date) core.Process {
	p.LastReviewDate = now
	return p
}
