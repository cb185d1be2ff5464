package retrieval

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/paperdex/paperdex/internal/llm"
	"github.com/paperdex/paperdex/internal/model"
)

// RefusalAnswer is returned verbatim when retrieval finds no evidence, and
// is the sentence the model is instructed to use when the evidence it has is
// insufficient.
const RefusalAnswer = "I cannot answer this question from the indexed documents."

const answerSystemPrompt = "You are a citation-aware research assistant. Answer questions using only " +
	"the provided document evidence. Include verbatim quotes where possible and cite every factual " +
	"statement inline as [Page X, Section Y]. If the evidence is insufficient, reply exactly: " +
	RefusalAnswer + " Do not use outside knowledge."

const repairSystemPrompt = "You are a citation-aware research assistant. Rewrite the given answer so " +
	"that every factual statement carries an inline [Page X, Section Y] citation drawn from the " +
	"evidence, adding verbatim quotes where possible. Do not change the substance of the answer."

// citationRe matches an inline citation like [Page 3, Section Methods].
var citationRe = regexp.MustCompile(`\[Page\s+\d+,\s*Section\s+[^\]]+\]`)

// Citation points a consumer back at one evidence chunk. Citations mirror
// the evidence list one to one, independent of which statements the model
// chose to cite inline.
type Citation struct {
	Ordinal      int    `json:"ordinal"`
	DocID        string `json:"doc_id"`
	Page         int    `json:"page"`
	EndPage      int    `json:"end_page"`
	Section      string `json:"section"`
	Filename     string `json:"filename"`
	IsTable      bool   `json:"is_table"`
	IsClaim      bool   `json:"is_claim"`
	ClaimType    string `json:"claim_type,omitempty"`
	TableVariant string `json:"table_variant,omitempty"`
	Snippet      string `json:"text_snippet"`
}

// LLM is the completion surface the composer needs.
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Composer assembles evidence blocks, queries the provider and enforces the
// citation format.
type Composer struct {
	llm LLM
}

func NewComposer(l LLM) *Composer {
	return &Composer{llm: l}
}

// Answer generates a cited answer from retrieved chunks. With no evidence it
// refuses without calling the provider. A provider failure degrades to a
// fixed apology. A reply missing citations triggers exactly one repair call.
func (c *Composer) Answer(ctx context.Context, query string, hits []model.Chunk) (string, []Citation) {
	if len(hits) == 0 {
		return RefusalAnswer, []Citation{}
	}

	evidence := BuildEvidenceBlock(hits)
	prompt := fmt.Sprintf("Evidence:\n%s\nQuestion: %s", evidence, query)

	answer, err := c.llm.Complete(ctx, answerSystemPrompt, prompt)
	if err != nil {
		log.Printf("answer generation failed: %v", err)
		return llm.Apology, Citations(hits)
	}

	if !HasCitation(answer) && strings.TrimSpace(answer) != RefusalAnswer {
		repairPrompt := fmt.Sprintf("Evidence:\n%s\nAnswer to rewrite:\n%s", evidence, answer)
		repaired, err := c.llm.Complete(ctx, repairSystemPrompt, repairPrompt)
		if err != nil {
			log.Printf("citation repair failed: %v", err)
		} else if strings.TrimSpace(repaired) != "" {
			answer = repaired
		}
	}

	return answer, Citations(hits)
}

// HasCitation reports whether text contains at least one inline citation of
// the form [Page <int>, Section <text>].
func HasCitation(text string) bool {
	return citationRe.MatchString(text)
}

// BuildEvidenceBlock renders retrieved chunks as numbered evidence entries,
// preserving retrieval order.
func BuildEvidenceBlock(hits []model.Chunk) string {
	var b strings.Builder
	for i, chunk := range hits {
		b.WriteString(fmt.Sprintf("EVIDENCE %d %s\n%s\n---\n", i+1, evidenceLabel(chunk), chunk.Text))
	}
	return b.String()
}

func evidenceLabel(chunk model.Chunk) string {
	label := fmt.Sprintf("[Page %d, Section %s]", chunk.Page, chunk.Section)
	if chunk.IsTable {
		if chunk.TableVariant != "" {
			label += fmt.Sprintf(" [Table:%s]", chunk.TableVariant)
		} else {
			label += " [Table]"
		}
	}
	if chunk.IsClaim {
		label += " [Atomic Claim]"
		if chunk.ClaimType != "" {
			label += fmt.Sprintf(" [ClaimType:%s]", chunk.ClaimType)
		}
	}
	return label
}

// Citations maps every evidence chunk to a citation, 1-based ordinals in
// retrieval order.
func Citations(hits []model.Chunk) []Citation {
	citations := make([]Citation, len(hits))
	for i, chunk := range hits {
		citations[i] = Citation{
			Ordinal:      i + 1,
			DocID:        chunk.DocID,
			Page:         chunk.Page,
			EndPage:      chunk.EndPage,
			Section:      chunk.Section,
			Filename:     chunk.Filename,
			IsTable:      chunk.IsTable,
			IsClaim:      chunk.IsClaim,
			ClaimType:    chunk.ClaimType,
			TableVariant: chunk.TableVariant,
			Snippet:      snippet(chunk.Text, 200),
		}
	}
	return citations
}

// snippet truncates on a rune boundary so multibyte text stays valid UTF-8.
func snippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

const summarySystemPrompt = "You are a research assistant. Provide a concise, structured overview of " +
	"the paper's problem, method, key results, and limitations based on the provided text. Use bullet " +
	"points for each category."

// Summarize produces the structured paper overview from already-gathered
// section text. Provider failures degrade to the fixed apology.
func (c *Composer) Summarize(ctx context.Context, contextText string) string {
	prompt := fmt.Sprintf("Text:\n%s\n\nPlease generate the structured summary.", contextText)
	summary, err := c.llm.Complete(ctx, summarySystemPrompt, prompt)
	if err != nil {
		log.Printf("summary generation failed: %v", err)
		return llm.Apology
	}
	return summary
}
