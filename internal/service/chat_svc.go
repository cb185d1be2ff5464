package service

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/paperdex/paperdex/internal/model"
	"github.com/paperdex/paperdex/internal/retrieval"
	"github.com/paperdex/paperdex/internal/vectorstore"
)

// Embedder turns a query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
}

// ChatResponse carries the composed answer and its aligned citations.
type ChatResponse struct {
	Answer    string               `json:"answer"`
	Citations []retrieval.Citation `json:"citations"`
}

// ChatService answers questions over the indexed chunks.
type ChatService struct {
	embedder Embedder
	store    *vectorstore.Store
	composer *retrieval.Composer
	topK     int
}

func NewChatService(embedder Embedder, store *vectorstore.Store, composer *retrieval.Composer, topK int) *ChatService {
	return &ChatService{embedder: embedder, store: store, composer: composer, topK: topK}
}

// Ask normalizes filters, retrieves the top matches and composes a cited
// answer. topK <= 0 falls back to the configured default.
func (s *ChatService) Ask(ctx context.Context, question string, filters retrieval.Filters, topK int) (*ChatResponse, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if topK <= 0 {
		topK = s.topK
	}
	hits, err := s.store.Search(ctx, vector, filters.Normalize(), topK)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	chunks := make([]model.Chunk, len(hits))
	for i, hit := range hits {
		chunks[i] = hit.Chunk
	}

	answer, citations := s.composer.Answer(ctx, question, chunks)
	return &ChatResponse{Answer: answer, Citations: citations}, nil
}
