package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/paperdex/paperdex/internal/model"
	"github.com/paperdex/paperdex/internal/retrieval"
	"github.com/paperdex/paperdex/internal/section"
	"github.com/paperdex/paperdex/internal/vectorstore"
)

var ErrNoIndexedContent = errors.New("no indexed content for document")

// Sections sampled for summarization, in presentation order.
var summarySections = []string{section.Abstract, section.Introduction, section.Conclusion}

// SummaryService builds a structured summary from a document's key sections.
type SummaryService struct {
	store       *vectorstore.Store
	composer    *retrieval.Composer
	perSection  int
	fallbackTop int
}

func NewSummaryService(store *vectorstore.Store, composer *retrieval.Composer, perSection, fallbackTop int) *SummaryService {
	return &SummaryService{store: store, composer: composer, perSection: perSection, fallbackTop: fallbackTop}
}

// Summarize gathers Abstract, Introduction and Conclusion chunks for the
// document, falling back to the oldest indexed chunks when none of those
// sections were detected. ErrNoIndexedContent means the document has no
// chunks at all.
func (s *SummaryService) Summarize(ctx context.Context, docID string) (string, error) {
	var chunks []model.Chunk
	for _, sec := range summarySections {
		secChunks, err := s.store.Scroll(ctx, vectorstore.Filters{DocID: docID, Section: sec}, s.perSection)
		if err != nil {
			return "", fmt.Errorf("load %s chunks: %w", strings.ToLower(sec), err)
		}
		chunks = append(chunks, secChunks...)
	}

	if len(chunks) == 0 {
		fallback, err := s.store.Scroll(ctx, vectorstore.Filters{DocID: docID}, s.fallbackTop)
		if err != nil {
			return "", fmt.Errorf("load fallback chunks: %w", err)
		}
		chunks = fallback
	}
	if len(chunks) == 0 {
		return "", ErrNoIndexedContent
	}

	var b strings.Builder
	for _, chunk := range chunks {
		b.WriteString(chunk.Text)
		b.WriteString("\n\n")
	}
	return s.composer.Summarize(ctx, b.String()), nil
}
