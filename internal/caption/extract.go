package caption

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	indexLine    = regexp.MustCompile(`^\d+$`)
	timecodeLine = regexp.MustCompile(
		`^(\d{2}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2},\d{3})$`,
	)
	markupTag = regexp.MustCompile(`<[^>]+>`)
)

type scanState int

const (
	expectIndex scanState = iota
	expectTimecode
	collectText
)

// raw SRT block before timing and text are converted
type block struct {
	start string
	end   string
	text  []string
}

// Extract turns a SubRip document into captions, folding rapidly successive
// blocks together. Malformed blocks are skipped; empty or unparseable input
// yields an empty slice.
func Extract(document string) []Caption {
	captions, _ := Scan(document)
	return captions
}

// Scan is Extract plus a diagnostic for every block or stray line it had to
// skip. The warnings never affect the returned captions.
func Scan(document string) ([]Caption, []Warning) {
	blocks, warnings := segment(document)

	acc := accumulator{}
	for _, b := range blocks {
		acc = acc.step(b.caption())
	}
	return acc.result(), warnings
}

// segment splits the document into blocks with a line-oriented state machine.
// A block is a digit-only index line, a timecode line and the text lines up to
// the next blank line or the end of input.
func segment(document string) ([]block, []Warning) {
	lines := splitLines(document)

	var (
		blocks   []block
		warnings []Warning
		current  block
		state    = expectIndex
		indexAt  int
		stray    bool
	)

	missingTimecode := func() {
		warnings = append(warnings, Warning{
			Line:    indexAt,
			Message: "caption index not followed by a valid timecode line",
		})
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		lineNum := i + 1

		switch state {
		case expectTimecode:
			if m := timecodeLine.FindStringSubmatch(trimmed); m != nil {
				current = block{start: m[1], end: m[2]}
				state = collectText
				continue
			}
			missingTimecode()
			if indexLine.MatchString(trimmed) {
				indexAt = lineNum
				continue
			}
			state = expectIndex
			stray = trimmed != ""
			continue

		case collectText:
			if trimmed == "" {
				blocks = append(blocks, current)
				state = expectIndex
				continue
			}
			// an index directly followed by a timecode starts a new block
			// even when the blank separator is missing
			if indexLine.MatchString(trimmed) && i+1 < len(lines) &&
				timecodeLine.MatchString(strings.TrimSpace(lines[i+1])) {
				blocks = append(blocks, current)
				indexAt = lineNum
				state = expectTimecode
				continue
			}
			current.text = append(current.text, line)
			continue
		}

		// expectIndex
		if trimmed == "" {
			stray = false
			continue
		}
		if indexLine.MatchString(trimmed) {
			indexAt = lineNum
			state = expectTimecode
			stray = false
			continue
		}
		if !stray {
			warnings = append(warnings, Warning{
				Line:    lineNum,
				Message: fmt.Sprintf("text outside a caption block: %q", truncate(trimmed, 40)),
			})
			stray = true
		}
	}

	switch state {
	case collectText:
		blocks = append(blocks, current)
	case expectTimecode:
		missingTimecode()
	}

	return blocks, warnings
}

// start rounds up and end rounds down so a caption never bleeds into the
// neighbouring shot
func (b block) caption() Caption {
	start := math.Ceil(ParseTimecode(b.start))
	end := math.Floor(ParseTimecode(b.end))
	return Caption{
		Start: Seconds(start),
		End:   Seconds(end),
		Text:  cleanText(b.text),
	}
}

// accumulator is the fold state of the merge pass: the finished captions and
// the caption still open for merging.
type accumulator struct {
	done    []Caption
	open    Caption
	hasOpen bool
}

func (a accumulator) step(next Caption) accumulator {
	if a.hasOpen && next.End-a.open.Start < MergeWindow {
		return accumulator{
			done: a.done,
			open: Caption{
				Start: a.open.Start,
				End:   next.End,
				Text:  joinText(a.open.Text, next.Text),
			},
			hasOpen: true,
		}
	}

	done := a.done
	if a.hasOpen {
		done = append(done, a.open)
	}
	return accumulator{done: done, open: next, hasOpen: true}
}

func (a accumulator) result() []Caption {
	out := make([]Caption, 0, len(a.done)+1)
	out = append(out, a.done...)
	if a.hasOpen {
		out = append(out, a.open)
	}
	return out
}

func cleanText(lines []string) string {
	text := markupTag.ReplaceAllString(strings.Join(lines, " "), "")
	return strings.Join(strings.Fields(text), " ")
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

func splitLines(document string) []string {
	document = strings.TrimPrefix(document, "\ufeff")
	document = strings.ReplaceAll(document, "\r\n", "\n")
	document = strings.ReplaceAll(document, "\r", "\n")
	if document == "" {
		return nil
	}
	return strings.Split(document, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
