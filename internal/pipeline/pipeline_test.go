package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdex/paperdex/internal/claims"
	"github.com/paperdex/paperdex/internal/extract"
	"github.com/paperdex/paperdex/internal/model"
	"github.com/paperdex/paperdex/internal/pdfio"
)

type fakeDoc struct {
	texts  []string
	tables map[int][]pdfio.RawTable
	closed bool
}

func (d *fakeDoc) PageCount() int { return len(d.texts) }

func (d *fakeDoc) PageText(_ context.Context, page int) (string, error) {
	return d.texts[page-1], nil
}

func (d *fakeDoc) PageTextLines(_ context.Context, page int) ([]string, error) {
	var lines []string
	for _, line := range strings.Split(d.texts[page-1], "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines, nil
}

func (d *fakeDoc) WordCounts(_ context.Context) ([]int, error) {
	counts := make([]int, len(d.texts))
	for i, text := range d.texts {
		counts[i] = len(strings.Fields(text))
	}
	return counts, nil
}

func (d *fakeDoc) RenderPage(_ context.Context, _ int) ([]byte, error) {
	return []byte{0x1}, nil
}

func (d *fakeDoc) PageTables(_ context.Context, page int) ([]pdfio.RawTable, error) {
	return d.tables[page], nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func openerFor(doc *fakeDoc) pdfio.Opener {
	return func(string) (pdfio.Document, error) { return doc, nil }
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([]pgvector.Vector, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([]pgvector.Vector, len(texts))
	for i := range texts {
		vectors[i] = pgvector.NewVector([]float32{float32(i)})
	}
	return vectors, nil
}

type fakeIndex struct {
	docID  string
	chunks []model.Chunk
	calls  int
}

func (f *fakeIndex) Replace(_ context.Context, docID string, chunks []model.Chunk) error {
	f.calls++
	f.docID = docID
	f.chunks = chunks
	return nil
}

type fakeClaims struct {
	perChunk []claims.Claim
	err      error
	texts    []string
}

func (f *fakeClaims) Extract(_ context.Context, text string) ([]claims.Claim, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.perChunk, nil
}

type fakeRegistry struct {
	completedDocID string
	chunkCount     int
	claimCount     int
	failedReason   string
}

func (f *fakeRegistry) MarkCompleted(_ context.Context, docID string, _, chunkCount, claimCount int, _ extract.Decision) error {
	f.completedDocID = docID
	f.chunkCount = chunkCount
	f.claimCount = claimCount
	return nil
}

func (f *fakeRegistry) MarkFailed(_ context.Context, _ string, reason string) error {
	f.failedReason = reason
	return nil
}

func stepRecorder(steps *[]string) Reporter {
	return func(step string, _ map[string]interface{}) {
		*steps = append(*steps, step)
	}
}

// Long enough that word counting classifies the document as digital.
func digitalPageText(sentences int) string {
	var b strings.Builder
	b.WriteString("Introduction\n")
	for i := 0; i < sentences; i++ {
		b.WriteString("We evaluate the retrieval model on three public benchmarks and report gains.\n")
	}
	return b.String()
}

func newTestPipeline(doc *fakeDoc, emb *fakeEmbedder, idx *fakeIndex, cl *fakeClaims, reg *fakeRegistry) *Pipeline {
	return New(openerFor(doc), nil, emb, idx, cl, reg, Config{ChunkSize: 40, Overlap: 5})
}

func TestRunCompletesAndReportsStepsInOrder(t *testing.T) {
	doc := &fakeDoc{texts: []string{digitalPageText(10), digitalPageText(10)}}
	emb := &fakeEmbedder{}
	idx := &fakeIndex{}
	cl := &fakeClaims{perChunk: []claims.Claim{{Text: "we train a dual encoder", Type: "method"}}}
	reg := &fakeRegistry{}
	p := newTestPipeline(doc, emb, idx, cl, reg)

	var steps []string
	result, err := p.Run(context.Background(), "doc1", "/tmp/doc1.pdf", extract.OCRModeAuto, stepRecorder(&steps))
	require.NoError(t, err)

	assert.Equal(t, []string{StepOCR, StepChunking, StepEmbedding, StepClaimExtraction, StepUpserting}, steps)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, "doc1", result.DocID)
	assert.False(t, result.OCRUsed)
	assert.Equal(t, "digital", result.PDFType)
	assert.Greater(t, result.ChunksCount, 0)
	assert.Equal(t, result.ChunksCount, len(cl.texts), "every non-table chunk goes through claim extraction")
	assert.Equal(t, result.ClaimsCount, result.ChunksCount, "one claim per chunk in this fixture")

	assert.Equal(t, "doc1", idx.docID)
	assert.Len(t, idx.chunks, result.ChunksCount+result.ClaimsCount)
	for _, c := range idx.chunks {
		assert.NotEmpty(t, c.Embedding.Slice(), "all chunks are embedded before upsert")
	}
	assert.Equal(t, 1, idx.calls)

	assert.Equal(t, "doc1", reg.completedDocID)
	assert.Equal(t, result.ChunksCount, reg.chunkCount)
	assert.Equal(t, result.ClaimsCount, reg.claimCount)
	assert.True(t, doc.closed)
}

func TestRunClaimChunksCarrySourceMetadata(t *testing.T) {
	doc := &fakeDoc{texts: []string{digitalPageText(10)}}
	cl := &fakeClaims{perChunk: []claims.Claim{{Text: "accuracy improves by 4 points", Type: "result"}}}
	idx := &fakeIndex{}
	p := newTestPipeline(doc, &fakeEmbedder{}, idx, cl, &fakeRegistry{})

	result, err := p.Run(context.Background(), "doc1", "/tmp/doc1.pdf", extract.OCRModeAuto, nil)
	require.NoError(t, err)
	require.Greater(t, result.ClaimsCount, 0)

	var claim *model.Chunk
	for i := range idx.chunks {
		if idx.chunks[i].IsClaim {
			claim = &idx.chunks[i]
			break
		}
	}
	require.NotNil(t, claim)
	assert.Equal(t, "accuracy improves by 4 points", claim.Text)
	assert.Equal(t, model.ContentTypeClaim, claim.ContentType)
	assert.Equal(t, "result", claim.ClaimType)
	assert.Equal(t, "Introduction", claim.Section)
	assert.NotEmpty(t, claim.OriginalText)
	assert.LessOrEqual(t, len(claim.OriginalText), originalTextLimit)
	assert.Equal(t, "doc1.pdf", claim.Filename)
}

func TestRunEmptyDocumentFailsWithoutError(t *testing.T) {
	doc := &fakeDoc{texts: []string{"", "  ", ""}}
	emb := &fakeEmbedder{}
	idx := &fakeIndex{}
	reg := &fakeRegistry{}
	p := newTestPipeline(doc, emb, idx, &fakeClaims{}, reg)

	var steps []string
	result, err := p.Run(context.Background(), "doc2", "/tmp/doc2.pdf", extract.OCRModeNever, stepRecorder(&steps))
	require.NoError(t, err, "empty extraction is a terminal result, not a retryable error")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "No text extracted", result.Reason)
	assert.Equal(t, []string{StepOCR}, steps, "no stage past extraction runs")
	assert.Zero(t, emb.calls)
	assert.Zero(t, idx.calls)
	assert.Equal(t, "No text extracted", reg.failedReason)
	assert.True(t, doc.closed)
}

func TestRunClaimExtractionFailureIsSkipped(t *testing.T) {
	doc := &fakeDoc{texts: []string{digitalPageText(10)}}
	cl := &fakeClaims{err: errors.New("llm unavailable")}
	idx := &fakeIndex{}
	p := newTestPipeline(doc, &fakeEmbedder{}, idx, cl, &fakeRegistry{})

	result, err := p.Run(context.Background(), "doc3", "/tmp/doc3.pdf", extract.OCRModeAuto, nil)
	require.NoError(t, err, "per-chunk claim failures never abort the run")

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Zero(t, result.ClaimsCount)
	assert.Greater(t, result.ChunksCount, 0)
	assert.Equal(t, 1, idx.calls)
}

func TestRunSkipsTablesForClaimExtraction(t *testing.T) {
	doc := &fakeDoc{
		texts: []string{digitalPageText(10)},
		tables: map[int][]pdfio.RawTable{
			1: {{Headers: []string{"model", "accuracy"}, Rows: [][]string{{"ours", "91.2"}}}},
		},
	}
	cl := &fakeClaims{}
	idx := &fakeIndex{}
	p := newTestPipeline(doc, &fakeEmbedder{}, idx, cl, &fakeRegistry{})

	result, err := p.Run(context.Background(), "doc4", "/tmp/doc4.pdf", extract.OCRModeAuto, nil)
	require.NoError(t, err)

	tableChunks := 0
	for _, c := range idx.chunks {
		if c.IsTable {
			tableChunks++
		}
	}
	require.Greater(t, tableChunks, 0)
	assert.Equal(t, result.ChunksCount-tableChunks, len(cl.texts), "table chunks bypass claim extraction")
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	text := strings.Repeat("x", originalTextLimit-1) + strings.Repeat("表の数値が改善した", 40)
	got := truncate(text, originalTextLimit)

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), originalTextLimit)

	short := "fits entirely"
	assert.Equal(t, short, truncate(short, originalTextLimit))
}

func TestRunEmbeddingFailurePropagates(t *testing.T) {
	doc := &fakeDoc{texts: []string{digitalPageText(10)}}
	emb := &fakeEmbedder{err: errors.New("embedding service down")}
	p := newTestPipeline(doc, emb, &fakeIndex{}, &fakeClaims{}, &fakeRegistry{})

	_, err := p.Run(context.Background(), "doc5", "/tmp/doc5.pdf", extract.OCRModeAuto, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed chunks")
}
