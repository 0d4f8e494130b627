package caption

import "time"

// Reconcile re-times captions for a timeline from which removed has been cut.
// Captions overlapping a removed range are dropped; every other caption is
// pulled earlier by the total length of the removed ranges that end at or
// before its start. Order and text are preserved.
func Reconcile(captions []Caption, removed []TimeRange) []Caption {
	canonical := CombineRanges(removed)

	out := make([]Caption, 0, len(captions))
	for _, c := range captions {
		if overlapsAny(c, canonical) {
			continue
		}
		out = append(out, c.Shift(shiftBefore(c.Start, canonical)))
	}
	return out
}

func overlapsAny(c Caption, ranges []TimeRange) bool {
	for _, r := range ranges {
		if c.Overlaps(r) {
			return true
		}
	}
	return false
}

// shiftBefore sums the ranges lying entirely at or before t.
func shiftBefore(t time.Duration, ranges []TimeRange) time.Duration {
	var shift time.Duration
	for _, r := range ranges {
		if t >= r.End {
			shift += r.Duration()
		}
	}
	return shift
}
