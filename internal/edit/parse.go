package edit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/recut/internal/caption"
)

// ParseTime reads a timeline position given either as plain seconds ("4.5")
// or as a timecode ("00:00:04,500" or "00:00:04.500").
func ParseTime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time value")
	}
	var seconds float64
	if strings.Contains(s, ":") {
		seconds = caption.ParseTimecode(s)
	} else {
		var err error
		seconds, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
		if seconds < 0 {
			return 0, fmt.Errorf("invalid time %q: must not be negative", s)
		}
	}
	d, err := caption.SecondsChecked(seconds)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return d, nil
}

// ParseRange reads a "start-end" range, each side accepted by ParseTime.
func ParseRange(s string) (caption.TimeRange, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return caption.TimeRange{}, fmt.Errorf("invalid range %q: expected start-end", s)
	}
	start, err := ParseTime(startStr)
	if err != nil {
		return caption.TimeRange{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	end, err := ParseTime(endStr)
	if err != nil {
		return caption.TimeRange{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	r := caption.TimeRange{Start: start, End: end}
	if !r.Valid() {
		return caption.TimeRange{}, fmt.Errorf("%w: %q ends before it starts", ErrInvalidRange, s)
	}
	return r, nil
}

// ParseRanges parses every value with ParseRange.
func ParseRanges(values []string) ([]caption.TimeRange, error) {
	ranges := make([]caption.TimeRange, 0, len(values))
	for _, v := range values {
		r, err := ParseRange(v)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}
