package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/mgpai22/recut/internal/api"
	"github.com/mgpai22/recut/internal/caption"
	"github.com/mgpai22/recut/internal/subtitle"
)

const maxCellText = 60

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// emitCaptions writes captions to outputPath when set, otherwise to out as
// JSON, a table on a terminal or subtitle text in the configured format.
func (c *commandContext) emitCaptions(out io.Writer, captions []caption.Caption, asJSON bool) error {
	defaultFormat, err := subtitle.ParseFormat(c.cfg.Output.Format)
	if err != nil {
		return err
	}

	if c.output != "" {
		format := subtitle.FormatFromExtension(c.output, defaultFormat)
		if err := writeSubtitleFile(c.output, format, captions); err != nil {
			return err
		}
		absOutput, _ := filepath.Abs(c.output)
		fmt.Fprintf(out, "Subtitles written: %s\n", absOutput)
		fmt.Fprintf(out, "  Entries: %d\n", len(captions))
		return nil
	}

	switch {
	case asJSON:
		return writeJSON(out, api.ReconcileResponse{Captions: api.CaptionsToJSON(captions)})
	case isTerminal(out):
		_, err := fmt.Fprintln(out, captionTable(captions))
		return err
	default:
		writer, err := subtitle.NewWriter(defaultFormat)
		if err != nil {
			return err
		}
		return writer.Encode(out, subtitle.FromCaptions(captions))
	}
}

func writeSubtitleFile(path string, format subtitle.Format, captions []caption.Caption) error {
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}
	if err := writer.Write(subtitle.FromCaptions(captions), path); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func captionTable(captions []caption.Caption) string {
	rows := make([]table.Row, 0, len(captions))
	for i, c := range captions {
		rows = append(rows, table.Row{
			i + 1,
			formatClock(c.Start),
			formatClock(c.End),
			formatSeconds(c.End - c.Start),
			truncateText(c.Text, maxCellText),
		})
	}
	columns := append(slices.Clone(timingColumns), column{"Text", text.AlignLeft})
	return renderTable(columns, rows)
}

func rangeTable(ranges []caption.TimeRange) string {
	rows := make([]table.Row, 0, len(ranges))
	for i, r := range ranges {
		rows = append(rows, table.Row{
			i + 1,
			formatClock(r.Start),
			formatClock(r.End),
			formatSeconds(r.Duration()),
		})
	}
	return renderTable(timingColumns, rows)
}

// HH:MM:SS.mmm
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d.%03d",
		ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000)
}

// seconds without trailing zeros, "4.5"
func trimSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func formatSeconds(d time.Duration) string {
	return trimSeconds(d) + "s"
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
