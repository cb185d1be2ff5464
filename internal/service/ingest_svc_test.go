package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdex/paperdex/internal/extract"
	"github.com/paperdex/paperdex/internal/model"
	"github.com/paperdex/paperdex/internal/queue"
)

type fakeRegistry struct {
	docs map[string]*model.Document
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{docs: make(map[string]*model.Document)}
}

func (f *fakeRegistry) Upsert(_ context.Context, doc *model.Document) error {
	f.docs[doc.DocID] = doc
	return nil
}

func (f *fakeRegistry) Exists(_ context.Context, docID string) (bool, error) {
	_, ok := f.docs[docID]
	return ok, nil
}

func (f *fakeRegistry) FindByID(_ context.Context, docID string) (*model.Document, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return doc, nil
}

func (f *fakeRegistry) List(_ context.Context, _, _ int) ([]model.Document, int64, error) {
	return nil, 0, nil
}

type fakeJobQueue struct {
	enqueued []string
}

func (f *fakeJobQueue) Enqueue(_ context.Context, name string, args ...string) (string, error) {
	f.enqueued = append(f.enqueued, name)
	return fmt.Sprintf("job-%d", len(f.enqueued)), nil
}

func (f *fakeJobQueue) Status(_ context.Context, _ string) (*queue.JobStatus, error) {
	return &queue.JobStatus{Status: queue.StatusPending}, nil
}

func TestUploadIdenticalBytesDeduplicates(t *testing.T) {
	reg := newFakeRegistry()
	q := &fakeJobQueue{}
	svc := NewIngestService(reg, q, t.TempDir(), 1<<20)
	content := []byte("%PDF-1.4 same bytes every time")

	first, err := svc.Upload(context.Background(), "paper.pdf", bytes.NewReader(content), extract.OCRModeAuto, false)
	require.NoError(t, err)
	assert.Equal(t, UploadStatusQueued, first.Status)
	assert.NotEmpty(t, first.JobID)
	require.Len(t, q.enqueued, 1)

	second, err := svc.Upload(context.Background(), "renamed.pdf", bytes.NewReader(content), extract.OCRModeAuto, false)
	require.NoError(t, err)
	assert.Equal(t, UploadStatusExisting, second.Status)
	assert.Equal(t, first.DocID, second.DocID, "identical bytes hash to the same document")
	assert.Empty(t, second.JobID)
	assert.Len(t, q.enqueued, 1, "a duplicate upload must not enqueue a second job")
}

func TestUploadForceReingestsExistingDocument(t *testing.T) {
	reg := newFakeRegistry()
	q := &fakeJobQueue{}
	svc := NewIngestService(reg, q, t.TempDir(), 1<<20)
	content := []byte("%PDF-1.4 same bytes every time")

	_, err := svc.Upload(context.Background(), "paper.pdf", bytes.NewReader(content), extract.OCRModeAuto, false)
	require.NoError(t, err)

	forced, err := svc.Upload(context.Background(), "paper.pdf", bytes.NewReader(content), extract.OCRModeAuto, true)
	require.NoError(t, err)
	assert.Equal(t, UploadStatusQueued, forced.Status)
	assert.NotEmpty(t, forced.JobID)
	assert.Len(t, q.enqueued, 2)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := NewIngestService(newFakeRegistry(), &fakeJobQueue{}, t.TempDir(), 16)

	_, err := svc.Upload(context.Background(), "big.pdf", bytes.NewReader(make([]byte, 17)), extract.OCRModeAuto, false)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
