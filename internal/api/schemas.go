package api

import (
	"fmt"
	"time"

	"github.com/mgpai22/recut/internal/caption"
)

// Times on the wire are real-valued seconds.

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type CaptionJSON struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type RangeJSON struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type WarningJSON struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ExtractResponse struct {
	Captions []CaptionJSON `json:"captions"`
	Warnings []WarningJSON `json:"warnings"`
}

type CombineRequest struct {
	Ranges []RangeJSON `json:"ranges"`
}

type CombineResponse struct {
	Ranges []RangeJSON `json:"ranges"`
}

type ReconcileRequest struct {
	Captions []CaptionJSON `json:"captions"`
	Removed  []RangeJSON   `json:"removed"`
}

type ReconcileResponse struct {
	Captions []CaptionJSON `json:"captions"`
}

type ExportRequest struct {
	Captions []CaptionJSON `json:"captions"`
}

func CaptionsToJSON(captions []caption.Caption) []CaptionJSON {
	out := make([]CaptionJSON, len(captions))
	for i, c := range captions {
		out[i] = CaptionJSON{
			Start: c.Start.Seconds(),
			End:   c.End.Seconds(),
			Text:  c.Text,
		}
	}
	return out
}

// CaptionsFromJSON rejects times that do not fit in a Duration.
func CaptionsFromJSON(in []CaptionJSON) ([]caption.Caption, error) {
	out := make([]caption.Caption, len(in))
	for i, c := range in {
		start, end, err := durations(c.Start, c.End)
		if err != nil {
			return nil, fmt.Errorf("caption %d: %w", i, err)
		}
		out[i] = caption.Caption{Start: start, End: end, Text: c.Text}
	}
	return out, nil
}

func durations(start, end float64) (time.Duration, time.Duration, error) {
	s, err := caption.SecondsChecked(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := caption.SecondsChecked(end)
	if err != nil {
		return 0, 0, err
	}
	return s, e, nil
}

func RangesToJSON(ranges []caption.TimeRange) []RangeJSON {
	out := make([]RangeJSON, len(ranges))
	for i, r := range ranges {
		out[i] = RangeJSON{Start: r.Start.Seconds(), End: r.End.Seconds()}
	}
	return out
}

// RangesFromJSON rejects negative, inverted or out-of-range ranges.
func RangesFromJSON(in []RangeJSON) ([]caption.TimeRange, error) {
	out := make([]caption.TimeRange, len(in))
	for i, r := range in {
		start, end, err := durations(r.Start, r.End)
		if err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
		tr := caption.TimeRange{Start: start, End: end}
		if !tr.Valid() {
			return nil, fmt.Errorf("range %d: start must be >= 0 and <= end (got %g-%g)", i, r.Start, r.End)
		}
		out[i] = tr
	}
	return out, nil
}

func WarningsToJSON(warnings []caption.Warning) []WarningJSON {
	out := make([]WarningJSON, len(warnings))
	for i, w := range warnings {
		out[i] = WarningJSON{Line: w.Line, Message: w.Message}
	}
	return out
}
