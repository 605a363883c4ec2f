package extract

import (
	"regexp"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
	spacedLines = regexp.MustCompile(` ?\n ?`)
)

// normalizeText collapses whitespace runs to a single space, caps
// consecutive newlines at two, strips non-printable characters and trims.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = stripNonPrintable(text)
	text = spaceRuns.ReplaceAllString(text, " ")
	text = spacedLines.ReplaceAllString(text, "\n")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func stripNonPrintable(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mostlyPrintable reports whether at least 70% of the characters are
// printable ASCII or whitespace, the heuristic for "this is a text file".
func mostlyPrintable(text string) bool {
	if text == "" {
		return false
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if (r >= 32 && r <= 126) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	return float64(printable)/float64(total) >= 0.7
}
