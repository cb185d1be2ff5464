// Package retrieval turns user questions into filtered vector searches and
// composes citation-grounded answers from the hits.
package retrieval

import (
	"strings"

	"github.com/paperdex/paperdex/internal/section"
	"github.com/paperdex/paperdex/internal/vectorstore"
)

// Filters are the user-facing retrieval filters, before normalization.
type Filters struct {
	DocID         string   `json:"doc_id,omitempty"`
	Section       string   `json:"section,omitempty"`
	Sections      []string `json:"sections,omitempty"`
	SectionBucket string   `json:"section_bucket,omitempty"`
	ClaimType     string   `json:"claim_type,omitempty"`
	TableVariant  string   `json:"table_variant,omitempty"`
	IsClaim       *bool    `json:"is_claim,omitempty"`
	IsTable       *bool    `json:"is_table,omitempty"`
}

// Normalize canonicalizes every filter value into the vocabulary the index
// stores, so the store can match by direct equality.
func (f Filters) Normalize() vectorstore.Filters {
	out := vectorstore.Filters{
		DocID:        strings.TrimSpace(f.DocID),
		ClaimType:    strings.ToLower(strings.TrimSpace(f.ClaimType)),
		TableVariant: strings.ToLower(strings.TrimSpace(f.TableVariant)),
		IsClaim:      f.IsClaim,
		IsTable:      f.IsTable,
	}

	if len(f.Sections) > 0 {
		combined := make([]string, 0, len(f.Sections)+1)
		combined = append(combined, f.Sections...)
		if strings.TrimSpace(f.Section) != "" {
			combined = append(combined, f.Section)
		}
		out.Sections = normalizeSectionList(combined)
	} else if strings.TrimSpace(f.Section) != "" {
		out.Section = section.Normalize(f.Section)
	}

	out.SectionBucket = NormalizeBucket(f.SectionBucket)
	return out
}

// normalizeSectionList canonicalizes each entry and deduplicates preserving
// first-seen order.
func normalizeSectionList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		canonical := section.Normalize(v)
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

// bucketAliases maps user-facing bucket spellings onto indexed values.
var bucketAliases = map[string]string{
	"key_results": "results",
}

// NormalizeBucket lower-cases a bucket filter, converts spaces to
// underscores and applies bucket aliases.
func NormalizeBucket(value string) string {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	if canonical, ok := bucketAliases[cleaned]; ok {
		return canonical
	}
	return cleaned
}
