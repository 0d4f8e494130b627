// Package edit turns timeline edits (trimming to a window, cutting ranges out)
// into the removed ranges that drive caption reconciliation and the keep
// segments that drive video cutting.
package edit

import (
	"errors"
	"fmt"
	"time"

	"github.com/mgpai22/recut/internal/caption"
)

var (
	ErrInvalidRange = errors.New("invalid range")
	ErrEmptyKeep    = errors.New("edit removes the whole timeline")
)

// set of ranges to remove from a media timeline of known length
type Plan struct {
	Total   time.Duration
	Removed []caption.TimeRange
}

// NewTrimPlan keeps [start, end) of a timeline of length total and removes
// everything around it.
func NewTrimPlan(start, end, total time.Duration) Plan {
	return Plan{Total: total, Removed: TrimRanges(start, end, total)}
}

// NewCutPlan removes the given ranges from a timeline of length total.
func NewCutPlan(cuts []caption.TimeRange, total time.Duration) Plan {
	removed := make([]caption.TimeRange, len(cuts))
	copy(removed, cuts)
	return Plan{Total: total, Removed: removed}
}

// TrimRanges returns the ranges removed by keeping only [start, end) of a
// timeline of length total. Empty leading or trailing ranges are omitted.
func TrimRanges(start, end, total time.Duration) []caption.TimeRange {
	var removed []caption.TimeRange
	if start > 0 {
		removed = append(removed, caption.TimeRange{Start: 0, End: start})
	}
	if end < total {
		removed = append(removed, caption.TimeRange{Start: end, End: total})
	}
	return removed
}

// Validate rejects negative or inverted ranges, ranges starting past the end
// of the timeline and plans that would leave nothing.
func (p Plan) Validate() error {
	if p.Total <= 0 {
		return fmt.Errorf("%w: timeline length must be positive, got %s", ErrInvalidRange, p.Total)
	}
	for _, r := range p.Removed {
		if !r.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidRange, r)
		}
		if r.Start >= p.Total {
			return fmt.Errorf("%w: %s starts after the end of the timeline (%s)", ErrInvalidRange, r, p.Total)
		}
	}
	if len(p.Keep()) == 0 {
		return ErrEmptyKeep
	}
	return nil
}

// Canonical returns the combined removed ranges clamped to the timeline.
func (p Plan) Canonical() []caption.TimeRange {
	combined := caption.CombineRanges(p.Removed)
	out := make([]caption.TimeRange, 0, len(combined))
	for _, r := range combined {
		r.Start = max(r.Start, 0)
		r.End = min(r.End, p.Total)
		if r.Start < r.End {
			out = append(out, r)
		}
	}
	return out
}

// Keep returns the non-empty segments left once the removed ranges are cut
// out, in timeline order.
func (p Plan) Keep() []caption.TimeRange {
	var keep []caption.TimeRange
	cursor := time.Duration(0)
	for _, r := range p.Canonical() {
		if r.Start > cursor {
			keep = append(keep, caption.TimeRange{Start: cursor, End: r.Start})
		}
		cursor = r.End
	}
	if cursor < p.Total {
		keep = append(keep, caption.TimeRange{Start: cursor, End: p.Total})
	}
	return keep
}

// RemovedDuration is the total length cut from the timeline.
func (p Plan) RemovedDuration() time.Duration {
	var d time.Duration
	for _, r := range p.Canonical() {
		d += r.Duration()
	}
	return d
}

// ResultDuration is the length of the edited timeline.
func (p Plan) ResultDuration() time.Duration {
	return p.Total - p.RemovedDuration()
}

// Apply re-times captions for the edited timeline.
func (p Plan) Apply(captions []caption.Caption) []caption.Caption {
	return caption.Reconcile(captions, p.Canonical())
}
