// Package pipeline sequences one document's ingestion: strategy selection,
// extraction, chunking, embedding, claim extraction and index upsert.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"unicode/utf8"

	"github.com/pgvector/pgvector-go"

	"github.com/paperdex/paperdex/internal/chunker"
	"github.com/paperdex/paperdex/internal/claims"
	"github.com/paperdex/paperdex/internal/extract"
	"github.com/paperdex/paperdex/internal/model"
	"github.com/paperdex/paperdex/internal/ocr"
	"github.com/paperdex/paperdex/internal/pdfio"
)

// Pipeline steps, reported in order before each stage's work begins.
const (
	StepOCR             = "OCR"
	StepChunking        = "CHUNKING"
	StepEmbedding       = "EMBEDDING"
	StepClaimExtraction = "CLAIM_EXTRACTION"
	StepUpserting       = "UPSERTING"
)

// StatusCompleted / StatusFailed are the terminal result states. A failed
// result is a normal return, not an error: empty documents must not retry.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const originalTextLimit = 200

// Reporter receives state transitions for status polling.
type Reporter func(step string, meta map[string]interface{})

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

// Index stores chunk vectors.
type Index interface {
	Replace(ctx context.Context, docID string, chunks []model.Chunk) error
}

// ClaimSource extracts typed claims from chunk text.
type ClaimSource interface {
	Extract(ctx context.Context, text string) ([]claims.Claim, error)
}

// Registry records ingestion outcomes on the document row.
type Registry interface {
	MarkCompleted(ctx context.Context, docID string, pageCount, chunkCount, claimCount int, decision extract.Decision) error
	MarkFailed(ctx context.Context, docID, reason string) error
}

// Result is the terminal outcome of one ingestion run.
type Result struct {
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	DocID       string `json:"doc_id"`
	ChunksCount int    `json:"chunks_count"`
	ClaimsCount int    `json:"claims_count"`

	OCRModeRequested string `json:"ocr_mode_requested"`
	OCRUsed          bool   `json:"ocr_used"`
	OCRSkipped       bool   `json:"ocr_skipped"`
	OCRSkipReason    string `json:"ocr_skip_reason,omitempty"`
	IngestionMode    string `json:"ingestion_mode"`
	PDFType          string `json:"pdf_type"`
}

// Map renders the result as a status payload.
func (r *Result) Map() map[string]interface{} {
	m := map[string]interface{}{
		"status":             r.Status,
		"doc_id":             r.DocID,
		"chunks_count":       r.ChunksCount,
		"claims_count":       r.ClaimsCount,
		"ocr_mode_requested": r.OCRModeRequested,
		"ocr_used":           r.OCRUsed,
		"ocr_skipped":        r.OCRSkipped,
		"ingestion_mode":     r.IngestionMode,
		"pdf_type":           r.PDFType,
	}
	if r.Reason != "" {
		m["reason"] = r.Reason
	}
	if r.OCRSkipReason != "" {
		m["ocr_skip_reason"] = r.OCRSkipReason
	}
	return m
}

// Config carries the chunking geometry.
type Config struct {
	ChunkSize int
	Overlap   int
}

// Pipeline runs document ingestion end to end. All collaborators are
// injected once at worker startup; the pipeline holds no hidden state.
type Pipeline struct {
	open     pdfio.Opener
	ocr      ocr.Client
	embedder Embedder
	index    Index
	claims   ClaimSource
	registry Registry
	cfg      Config
}

func New(open pdfio.Opener, ocrClient ocr.Client, embedder Embedder, index Index, claimSource ClaimSource, registry Registry, cfg Config) *Pipeline {
	return &Pipeline{
		open:     open,
		ocr:      ocrClient,
		embedder: embedder,
		index:    index,
		claims:   claimSource,
		registry: registry,
		cfg:      cfg,
	}
}

// Run ingests one document. Stages run strictly sequentially; each state is
// reported before its work begins. Empty extraction terminates with a failed
// result and nil error so the job is not retried.
func (p *Pipeline) Run(ctx context.Context, docID, path string, mode extract.OCRMode, report Reporter) (*Result, error) {
	if report == nil {
		report = func(string, map[string]interface{}) {}
	}
	filename := filepath.Base(path)

	meta := map[string]interface{}{"doc_id": docID, "ocr_mode": string(mode)}
	report(StepOCR, meta)

	doc, err := p.open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	wordCounts, err := doc.WordCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count embedded words: %w", err)
	}
	decision := extract.Select(mode, wordCounts)
	result := &Result{
		DocID:            docID,
		OCRModeRequested: string(decision.ModeRequested),
		OCRUsed:          decision.UseOCR,
		OCRSkipped:       decision.Skipped,
		OCRSkipReason:    decision.SkipReason,
		IngestionMode:    decision.IngestionMode,
		PDFType:          decision.PDFType,
	}
	for k, v := range decisionMeta(decision) {
		meta[k] = v
	}

	strategy := extract.NewStrategy(decision, doc, p.ocr)
	log.Printf("doc %s: extracting %d pages via %s strategy", docID, doc.PageCount(), strategy.Name())

	pages, err := extract.ExtractPages(ctx, doc, strategy)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}

	if !anyContent(pages) {
		log.Printf("doc %s: no text extracted", docID)
		result.Status = StatusFailed
		result.Reason = "No text extracted"
		p.recordFailed(ctx, docID, result.Reason)
		return result, nil
	}

	report(StepChunking, meta)
	docChunks := chunker.Chunk(pages, docID, filename, chunker.Config{
		ChunkSize: p.cfg.ChunkSize,
		Overlap:   p.cfg.Overlap,
	})

	report(StepEmbedding, meta)
	if err := p.embedChunks(ctx, docChunks); err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	report(StepClaimExtraction, meta)
	claimChunks := p.extractClaims(ctx, docChunks)
	if err := p.embedChunks(ctx, claimChunks); err != nil {
		return nil, fmt.Errorf("embed claim chunks: %w", err)
	}

	report(StepUpserting, meta)
	all := append(docChunks, claimChunks...)
	if err := p.index.Replace(ctx, docID, all); err != nil {
		return nil, fmt.Errorf("upsert chunks: %w", err)
	}

	result.Status = StatusCompleted
	result.ChunksCount = len(docChunks)
	result.ClaimsCount = len(claimChunks)
	if p.registry != nil {
		if err := p.registry.MarkCompleted(ctx, docID, len(pages), len(docChunks), len(claimChunks), decision); err != nil {
			log.Printf("doc %s: failed to record completion: %v", docID, err)
		}
	}
	log.Printf("doc %s: completed with %d chunks and %d claims", docID, len(docChunks), len(claimChunks))
	return result, nil
}

func (p *Pipeline) recordFailed(ctx context.Context, docID, reason string) {
	if p.registry == nil {
		return
	}
	if err := p.registry.MarkFailed(ctx, docID, reason); err != nil {
		log.Printf("doc %s: failed to record failure: %v", docID, err)
	}
}

// embedChunks fills in embeddings for chunks in a single batch call.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	return nil
}

// extractClaims derives claim chunks from every non-table chunk. One chunk's
// extraction failure is logged and skipped; it never aborts the run.
func (p *Pipeline) extractClaims(ctx context.Context, docChunks []model.Chunk) []model.Chunk {
	var claimChunks []model.Chunk
	for i := range docChunks {
		src := &docChunks[i]
		if src.IsTable {
			continue
		}
		extracted, err := p.claims.Extract(ctx, src.Text)
		if err != nil {
			log.Printf("doc %s: claim extraction failed for chunk on page %d: %v", src.DocID, src.Page, err)
			continue
		}
		for _, claim := range extracted {
			if claim.Text == "" {
				continue
			}
			c := model.Chunk{
				DocID:         src.DocID,
				Text:          claim.Text,
				Page:          src.Page,
				EndPage:       src.EndPage,
				Section:       src.Section,
				SectionBucket: src.SectionBucket,
				Filename:      src.Filename,
				ContentType:   model.ContentTypeClaim,
				IsClaim:       true,
				ClaimType:     claim.Type,
				OriginalText:  truncate(src.Text, originalTextLimit),
			}
			claimChunks = append(claimChunks, c)
		}
	}
	return claimChunks
}

func anyContent(pages []extract.PageContent) bool {
	for _, page := range pages {
		if page.HasContent() {
			return true
		}
	}
	return false
}

func decisionMeta(d extract.Decision) map[string]interface{} {
	return map[string]interface{}{
		"ocr_mode":        string(d.ModeRequested),
		"ocr_used":        d.UseOCR,
		"ocr_skipped":     d.Skipped,
		"ocr_skip_reason": d.SkipReason,
		"ingestion_mode":  d.IngestionMode,
		"pdf_type":        d.PDFType,
	}
}

// truncate cuts on a rune boundary so the stored prefix stays valid UTF-8.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
