package extract

import (
	"strings"
	"unicode"

	"github.com/paperdex/paperdex/internal/section"
)

// Heading shape limits. Real section headings are short.
const (
	maxHeadingWords = 8
	maxHeadingChars = 80
)

// rawAliases are heading strings seen verbatim (up to case) in papers.
// A line matching one of these needs no shape evidence beyond alias
// membership.
var rawAliases = map[string]struct{}{
	"ABSTRACT":                  {},
	"INTRODUCTION":              {},
	"BACKGROUND":                {},
	"RELATED WORK":              {},
	"METHODS":                   {},
	"METHODOLOGY":               {},
	"MATERIALS AND METHODS":     {},
	"EXPERIMENTAL SETUP":        {},
	"RESULTS":                   {},
	"EXPERIMENTS":               {},
	"EVALUATION":                {},
	"DISCUSSION":                {},
	"DISCUSSION AND CONCLUSION": {},
	"LIMITATIONS":               {},
	"THREATS TO VALIDITY":       {},
	"CONCLUSION":                {},
	"CONCLUSIONS":               {},
	"FUTURE WORK":               {},
	"REFERENCES":                {},
	"BIBLIOGRAPHY":              {},
}

// DetectHeading reports whether a text line is a section heading, and if so
// which canonical section it opens. A heading must be short, must normalize
// to a known section alias, and must either match a raw alias string or look
// like a heading (ends with a colon, title case, mostly uppercase, or a
// numbering prefix).
func DetectHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	if len(trimmed) > maxHeadingChars || len(strings.Fields(trimmed)) > maxHeadingWords {
		return "", false
	}
	if !section.IsAlias(trimmed) {
		return "", false
	}
	if isRawAlias(trimmed) || hasHeadingShape(trimmed) {
		return section.Normalize(trimmed), true
	}
	return "", false
}

func isRawAlias(line string) bool {
	cleaned := strings.ToUpper(section.StripPrefix(line))
	cleaned = strings.TrimRight(cleaned, ":. ")
	_, ok := rawAliases[cleaned]
	return ok
}

func hasHeadingShape(line string) bool {
	return strings.HasSuffix(line, ":") ||
		isTitleCase(line) ||
		upperRatio(line) >= 0.6 ||
		section.HasNumberingPrefix(line)
}

// isTitleCase reports whether every word starts with an uppercase letter.
func isTitleCase(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// upperRatio returns the fraction of letters that are uppercase.
func upperRatio(line string) float64 {
	var letters, upper int
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}
