// Package section maps raw heading text from research papers onto a fixed
// set of canonical section names and coarse retrieval buckets.
package section

import (
	"regexp"
	"strings"
)

// Canonical section names. Everything a paper heading can normalize to.
const (
	Abstract     = "Abstract"
	Introduction = "Introduction"
	RelatedWork  = "Related Work"
	Methods      = "Methods"
	Results      = "Results"
	Limitations  = "Limitations"
	Conclusion   = "Conclusion"
	References   = "References"
	General      = "General"
)

// aliases maps sanitized lower-case heading text to its canonical section.
var aliases = map[string]string{
	"abstract":              Abstract,
	"introduction":          Introduction,
	"intro":                 Introduction,
	"background":            Introduction,
	"related work":          RelatedWork,
	"literature review":     RelatedWork,
	"methods":               Methods,
	"method":                Methods,
	"methodology":           Methods,
	"materials and methods": Methods,
	"approach":              Methods,
	"experimental setup":    Methods,
	"results":               Results,
	"result":                Results,
	"findings":              Results,
	"evaluation":            Results,
	"experiments":           Results,
	"discussion":            Results,
	"limitations":           Limitations,
	"limitation":            Limitations,
	"threats to validity":   Limitations,
	"caveats":               Limitations,
	"weaknesses":            Limitations,
	"conclusion":            Conclusion,
	"conclusions":           Conclusion,
	"future work":           Conclusion,
	"references":            References,
	"reference":             References,
	"bibliography":          References,
	"general":               General,
}

var (
	// prefixRe strips leading numbering like "1.", "2.3", "IV.", "A)".
	prefixRe = regexp.MustCompile(`(?i)^\s*(?:\d+(?:\.\d+)*|[IVXLCM]+|[A-Z])[)\].:\-\s]+`)
	spaceRe  = regexp.MustCompile(`\s+`)
	punctRe  = regexp.MustCompile(`[^\w\s]`)
)

// sanitize collapses separators and whitespace, strips a leading
// numbering/roman/letter prefix, and drops remaining punctuation.
func sanitize(value string) string {
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.ReplaceAll(value, "-", " ")
	value = strings.TrimSpace(spaceRe.ReplaceAllString(value, " "))
	value = strings.TrimSpace(prefixRe.ReplaceAllString(value, ""))
	value = strings.TrimSpace(punctRe.ReplaceAllString(value, ""))
	return value
}

// Normalize maps raw heading text to a canonical section name. Unmapped but
// clean strings are title-cased as-is; empty or unparseable input yields
// General. Normalize is idempotent.
func Normalize(value string) string {
	if value == "" {
		return General
	}
	cleaned := strings.ToLower(sanitize(value))
	if cleaned == "" {
		return General
	}
	if canonical, ok := aliases[cleaned]; ok {
		return canonical
	}
	return titleCase(cleaned)
}

// Bucket groups a section name into a coarse retrieval bucket:
// problem, method, results, limitations or other.
func Bucket(value string) string {
	switch Normalize(value) {
	case Abstract, Introduction, RelatedWork:
		return "problem"
	case Methods:
		return "method"
	case Results:
		return "results"
	case Limitations, Conclusion:
		return "limitations"
	default:
		return "other"
	}
}

// IsAlias reports whether the sanitized form of value maps to a canonical
// section via the alias table, as opposed to being merely title-cased.
func IsAlias(value string) bool {
	_, ok := aliases[strings.ToLower(sanitize(value))]
	return ok
}

// StripPrefix removes a leading numbering/roman-numeral/letter prefix,
// e.g. "1. Introduction" -> "Introduction".
func StripPrefix(value string) string {
	return strings.TrimSpace(prefixRe.ReplaceAllString(value, ""))
}

// HasNumberingPrefix reports whether the text starts with a numbering,
// roman-numeral or letter prefix such as "3.", "II." or "B)".
func HasNumberingPrefix(value string) bool {
	return prefixRe.MatchString(value)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
