// Package claims extracts atomic typed research claims from chunk text via
// the LLM provider.
package claims

import (
	"context"
	"regexp"
	"strings"
)

// Claim is one atomic assertion extracted from a chunk.
type Claim struct {
	Text string
	Type string // method, result or assumption
}

const systemPrompt = "You are a research assistant. Extract atomic research claims from the " +
	"following text. Each claim must be a single, self-contained sentence tagged with its kind. " +
	"Return one claim per line in exactly this format:\n" +
	"- [METHOD] sentence\n" +
	"- [RESULT] sentence\n" +
	"- [ASSUMPTION] sentence\n" +
	"If no clear claims are found, return nothing."

// LLM is the single completion call the extractor needs.
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Extractor asks the LLM for typed claims and parses its reply.
type Extractor struct {
	llm LLM
}

func NewExtractor(llm LLM) *Extractor {
	return &Extractor{llm: llm}
}

// Extract returns the claims found in text. An empty or unparseable reply
// yields zero claims and no error; only a provider failure is an error.
func (e *Extractor) Extract(ctx context.Context, text string) ([]Claim, error) {
	response, err := e.llm.Complete(ctx, systemPrompt, text)
	if err != nil {
		return nil, err
	}
	return ParseClaims(response), nil
}

var typedClaimRe = regexp.MustCompile(`^[-*]\s*\[(METHOD|RESULT|ASSUMPTION)\]\s*(.+)$`)

// ParseClaims parses the LLM reply. Lines in the typed bullet format are
// trusted as-is; plain bullets are kept with a heuristically inferred type;
// everything else is ignored.
func ParseClaims(response string) []Claim {
	var claims []Claim
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := typedClaimRe.FindStringSubmatch(line); m != nil {
			text := strings.TrimSpace(m[2])
			if text != "" {
				claims = append(claims, Claim{Text: text, Type: strings.ToLower(m[1])})
			}
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			text := strings.TrimSpace(strings.TrimLeft(line, "-* "))
			if text != "" {
				claims = append(claims, Claim{Text: text, Type: InferClaimType(text)})
			}
		}
	}
	return claims
}

var (
	methodKeywords = []string{
		"we use", "we propose", "we introduce", "we apply", "we train",
		"method", "approach", "algorithm", "architecture", "implemented",
		"procedure", "pipeline",
	}
	assumptionKeywords = []string{
		"assume", "assuming", "assumption", "hypothes", "suppose",
		"we expect", "presuppose",
	}
	resultKeywords = []string{
		"achieve", "outperform", "improve", "accuracy", "result", "show",
		"demonstrate", "observe", "increase", "decrease", "%",
	}
)

// InferClaimType guesses a claim type for an untagged bullet. Method and
// assumption wording win over result wording; the default is result.
func InferClaimType(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range methodKeywords {
		if strings.Contains(lower, kw) {
			return "method"
		}
	}
	for _, kw := range assumptionKeywords {
		if strings.Contains(lower, kw) {
			return "assumption"
		}
	}
	for _, kw := range resultKeywords {
		if strings.Contains(lower, kw) {
			return "result"
		}
	}
	return "result"
}
