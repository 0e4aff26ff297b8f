package chunker

import (
	"regexp"
	"strings"
)

var (
	// Legal heading forms: "Section 2-1", "Division 3", "Chapter 4", "Part 5".
	sectionHeadingRe = regexp.MustCompile(`(?i)^(Section\s+\d+[-\d]*|Division\s+\d+|Chapter\s+\d+|Part\s+\d+)\.?\s*(.{0,100})`)

	// Short numbered heading at the start of a line, e.g. "3.2 Eligibility".
	numberedHeadingRe = regexp.MustCompile(`(?m)^(\d+\.?\s*.{1,80})`)
)

// ExtractSectionTitle returns a best-effort heading found at the start of the
// given text, or "" when nothing heading-like is present.
func ExtractSectionTitle(text string) string {
	if m := sectionHeadingRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}

	if m := numberedHeadingRe.FindString(text); m != "" && len(m) < 100 {
		return strings.TrimSpace(m)
	}

	return ""
}
