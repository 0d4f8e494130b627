package subtitle

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mgpai22/recut/internal/caption"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents complete subtitle track
type Subtitle struct {
	Entries []Entry
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// interface for writing subtitles to files or streams
type Writer interface {
	Write(subtitle *Subtitle, path string) error
	Encode(w io.Writer, subtitle *Subtitle) error
}

// FromCaptions builds a track with 1-based entry indexes.
func FromCaptions(captions []caption.Caption) *Subtitle {
	entries := make([]Entry, 0, len(captions))
	for i, c := range captions {
		entries = append(entries, Entry{
			Index:     i + 1,
			StartTime: c.Start,
			EndTime:   c.End,
			Text:      c.Text,
		})
	}
	return &Subtitle{Entries: entries}
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	case "ass", "ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", name)
	}
}
