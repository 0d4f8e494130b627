package caption

import (
	"math/rand"
	"slices"
	"testing"
	"time"
)

func rng(start, end int) TimeRange {
	return TimeRange{Start: time.Duration(start) * time.Second, End: time.Duration(end) * time.Second}
}

func TestCombineRanges(t *testing.T) {
	tests := []struct {
		name  string
		input []TimeRange
		want  []TimeRange
	}{
		{
			name:  "empty",
			input: nil,
			want:  []TimeRange{},
		},
		{
			name:  "unsorted with overlap",
			input: []TimeRange{rng(5, 10), rng(0, 3), rng(8, 12)},
			want:  []TimeRange{rng(0, 3), rng(5, 12)},
		},
		{
			name:  "touching ranges merge",
			input: []TimeRange{rng(0, 3), rng(3, 6)},
			want:  []TimeRange{rng(0, 6)},
		},
		{
			name:  "contained range",
			input: []TimeRange{rng(0, 10), rng(2, 4)},
			want:  []TimeRange{rng(0, 10)},
		},
		{
			name:  "duplicates",
			input: []TimeRange{rng(1, 2), rng(1, 2), rng(1, 2)},
			want:  []TimeRange{rng(1, 2)},
		},
		{
			name:  "disjoint",
			input: []TimeRange{rng(7, 8), rng(1, 2), rng(4, 5)},
			want:  []TimeRange{rng(1, 2), rng(4, 5), rng(7, 8)},
		},
		{
			name: "fractional",
			input: []TimeRange{
				RangeFromSeconds(1.25, 2.5),
				RangeFromSeconds(2.5, 2.75),
				RangeFromSeconds(2.76, 3),
			},
			want: []TimeRange{
				RangeFromSeconds(1.25, 2.75),
				RangeFromSeconds(2.76, 3),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CombineRanges(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("CombineRanges(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCombineRangesDoesNotModifyInput(t *testing.T) {
	input := []TimeRange{rng(5, 10), rng(0, 3), rng(8, 12)}
	before := slices.Clone(input)

	CombineRanges(input)

	if !slices.Equal(input, before) {
		t.Errorf("input modified: got %v, want %v", input, before)
	}
}

func randomRanges(r *rand.Rand, n int) []TimeRange {
	out := make([]TimeRange, n)
	for i := range out {
		start := r.Intn(200)
		out[i] = rng(start, start+r.Intn(15))
	}
	return out
}

func TestCombineRangesProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		input := randomRanges(r, r.Intn(12))
		once := CombineRanges(input)

		if twice := CombineRanges(once); !slices.Equal(once, twice) {
			t.Fatalf("not idempotent for %v: %v then %v", input, once, twice)
		}

		for j := 1; j < len(once); j++ {
			if !(once[j-1].End < once[j].Start) {
				t.Fatalf("ranges %v and %v overlap or touch (input %v)", once[j-1], once[j], input)
			}
		}

		// every input point stays covered
		for _, in := range input {
			covered := false
			for _, c := range once {
				if c.Start <= in.Start && in.End <= c.End {
					covered = true
					break
				}
			}
			if !covered {
				t.Fatalf("range %v not covered by %v", in, once)
			}
		}
	}
}
