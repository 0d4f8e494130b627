package caption

import "sort"

// CombineRanges reduces ranges to a canonical set: sorted by start, with every
// overlapping or touching pair merged, so that for consecutive results
// a.End < b.Start. The input may be in any order and is left untouched.
// Combining an already canonical set returns an equal set.
func CombineRanges(ranges []TimeRange) []TimeRange {
	sorted := make([]TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	combined := make([]TimeRange, 0, len(sorted))
	for _, r := range sorted {
		last := len(combined) - 1
		if last >= 0 && combined[last].End >= r.Start {
			combined[last].End = max(combined[last].End, r.End)
			continue
		}
		combined = append(combined, r)
	}
	return combined
}
