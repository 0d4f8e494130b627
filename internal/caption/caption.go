// Package caption parses SubRip caption documents and keeps caption timing in
// sync with a video timeline after time ranges have been cut out of it.
//
// Every function in this package is a pure transformation: inputs are never
// modified and results are freshly allocated, so callers may share values
// across goroutines without locking.
package caption

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MergeWindow is the span, measured from the start of the previous caption,
// inside which a following block is folded into that caption.
const MergeWindow = 10 * time.Second

// represents one on-screen subtitle interval
type Caption struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Overlaps reports whether the caption intersects r. Touching endpoints do
// not count.
func (c Caption) Overlaps(r TimeRange) bool {
	return c.Start < r.End && c.End > r.Start
}

// Shift moves the caption earlier by d.
func (c Caption) Shift(d time.Duration) Caption {
	return Caption{Start: c.Start - d, End: c.End - d, Text: c.Text}
}

func (c Caption) String() string {
	return fmt.Sprintf("[%s-%s] %s", c.Start, c.End, c.Text)
}

// interval on the timeline, either a cut or a canonical range
type TimeRange struct {
	Start time.Duration
	End   time.Duration
}

// RangeFromSeconds builds a range from real-valued seconds.
func RangeFromSeconds(start, end float64) TimeRange {
	return TimeRange{Start: Seconds(start), End: Seconds(end)}
}

// Duration is the length of the range.
func (r TimeRange) Duration() time.Duration {
	return r.End - r.Start
}

// Valid reports whether the range is non-negative and not inverted.
func (r TimeRange) Valid() bool {
	return r.Start >= 0 && r.Start <= r.End
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Seconds converts real-valued seconds to a Duration, rounded to the nearest
// nanosecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// MaxSeconds is the largest magnitude, in seconds, that fits in a Duration.
const MaxSeconds = float64(math.MaxInt64 / int64(time.Second))

// ErrTimeOutOfRange reports a seconds value that does not fit in a Duration.
var ErrTimeOutOfRange = errors.New("time out of range")

// SecondsChecked is Seconds for untrusted input: values that are not finite
// or exceed MaxSeconds in magnitude are rejected instead of wrapping.
func SecondsChecked(s float64) (time.Duration, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) || math.Abs(s) > MaxSeconds {
		return 0, fmt.Errorf("%w: %g", ErrTimeOutOfRange, s)
	}
	return Seconds(s), nil
}

// diagnostic for a block that was skipped during extraction
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}
