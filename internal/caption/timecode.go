package caption

import (
	"strconv"
	"strings"
)

// ParseTimecode converts an HH:MM:SS.mmm timestamp to seconds. A comma is
// accepted as the decimal separator. Parsing is tolerant: components are
// read hours first, a missing component counts as zero and so does any
// component that is not a number.
func ParseTimecode(text string) float64 {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")

	parts := strings.Split(text, ":")
	hours := atoiOrZero(part(parts, 0))
	minutes := atoiOrZero(part(parts, 1))

	whole, millis, _ := strings.Cut(part(parts, 2), ".")
	seconds := atoiOrZero(whole)
	ms := atoiOrZero(millis)

	return float64(hours)*3600 +
		float64(minutes)*60 +
		float64(seconds) +
		float64(ms)/1000
}

func part(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
