// Package titles resolves stored document names to human-readable display
// titles. Known documents come from a curated mapping; anything else gets a
// deterministic formatting of the raw file name.
package titles

import (
	"strings"
	"unicode"
)

// Service is constructor injected wherever display titles are needed. The
// mapping is read-only after construction, so concurrent use is safe.
type Service struct {
	known map[string]string
}

func NewService() *Service {
	return &Service{
		known: map[string]string{
			"aged-care-act-1997":                      "Aged Care Act 1997",
			"aged-care-quality-and-safety-commission": "Aged Care Quality and Safety Commission Act 2018",
			"chsp-manual":                             "Commonwealth Home Support Programme Manual",
			"home-care-packages-program-manual":       "Home Care Packages Program Operational Manual",
			"retirement-villages-act-1999":            "Retirement Villages Act 1999",
			"schedule-of-fees-and-charges":            "Schedule of Fees and Charges for Residential and Home Care",
			"support-at-home-program-manual":          "Support at Home Program Manual",
		},
	}
}

// TitleFor returns the display title for a document name. Unknown names fall
// back to stripping the extension, replacing separators with spaces and
// title-casing the words.
func (s *Service) TitleFor(documentName string) string {
	key := strings.ToLower(strings.TrimSuffix(documentName, extension(documentName)))
	if title, ok := s.known[key]; ok {
		return title
	}
	return formatName(documentName)
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

func formatName(name string) string {
	name = strings.TrimSuffix(name, extension(name))
	name = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(name)

	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
