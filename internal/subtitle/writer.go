package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "recut",
			FontName: "Arial",
			FontSize: 20,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (w *SRTWriter) Write(sub *Subtitle, path string) error {
	return writeFile(path, func(out io.Writer) error { return w.Encode(out, sub) })
}

// Encode writes blocks of entry index, "00:00:00,000 --> 00:00:00,000" and text.
func (w *SRTWriter) Encode(out io.Writer, sub *Subtitle) error {
	bw := bufio.NewWriter(out)
	for _, entry := range sub.Entries {
		fmt.Fprintf(bw, "%d\n", entry.Index)
		fmt.Fprintf(bw, "%s --> %s\n",
			formatSRTTime(entry.StartTime),
			formatSRTTime(entry.EndTime))
		bw.WriteString(entry.Text)
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

func (w *VTTWriter) Write(sub *Subtitle, path string) error {
	return writeFile(path, func(out io.Writer) error { return w.Encode(out, sub) })
}

func (w *VTTWriter) Encode(out io.Writer, sub *Subtitle) error {
	bw := bufio.NewWriter(out)
	bw.WriteString("WEBVTT\n\n")
	for _, entry := range sub.Entries {
		// optional cue identifier
		fmt.Fprintf(bw, "%d\n", entry.Index)
		fmt.Fprintf(bw, "%s --> %s\n",
			formatVTTTime(entry.StartTime),
			formatVTTTime(entry.EndTime))
		bw.WriteString(entry.Text)
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

func (w *ASSWriter) Write(sub *Subtitle, path string) error {
	return writeFile(path, func(out io.Writer) error { return w.Encode(out, sub) })
}

func (w *ASSWriter) Encode(out io.Writer, sub *Subtitle) error {
	bw := bufio.NewWriter(out)

	bw.WriteString("[Script Info]\n")
	fmt.Fprintf(bw, "Title: %s\n", w.Title)
	bw.WriteString("ScriptType: v4.00+\n")
	bw.WriteString("Collisions: Normal\n")
	bw.WriteString("PlayDepth: 0\n\n")

	bw.WriteString("[V4+ Styles]\n")
	bw.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(bw, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize)

	bw.WriteString("[Events]\n")
	bw.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, entry := range sub.Entries {
		fmt.Fprintf(bw, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(entry.StartTime),
			formatASSTime(entry.EndTime),
			escapeASSText(entry.Text))
	}
	return bw.Flush()
}

func writeFile(path string, encode func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}
	if err := encode(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return file.Close()
}

type clock struct {
	hours, minutes, seconds, millis int
}

func split(d time.Duration) clock {
	if d < 0 {
		d = 0
	}
	ms := int(d.Milliseconds())
	return clock{
		hours:   ms / 3_600_000,
		minutes: ms / 60_000 % 60,
		seconds: ms / 1000 % 60,
		millis:  ms % 1000,
	}
}

func formatSRTTime(d time.Duration) string {
	c := split(d)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", c.hours, c.minutes, c.seconds, c.millis)
}

func formatVTTTime(d time.Duration) string {
	c := split(d)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", c.hours, c.minutes, c.seconds, c.millis)
}

func formatASSTime(d time.Duration) string {
	c := split(d)
	return fmt.Sprintf("%d:%02d:%02d.%02d", c.hours, c.minutes, c.seconds, c.millis/10)
}

func escapeASSText(text string) string {
	return strings.ReplaceAll(text, "\n", "\\N")
}

// subtitle format based on file extension, fallback when unknown
func FormatFromExtension(path string, fallback Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return fallback
	}
}

// file extension for a format
func ExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
