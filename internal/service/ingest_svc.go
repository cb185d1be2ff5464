package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/paperdex/paperdex/internal/extract"
	"github.com/paperdex/paperdex/internal/model"
	"github.com/paperdex/paperdex/internal/queue"
	"github.com/paperdex/paperdex/internal/repository"
)

// JobProcessPDF is the queue task name for document ingestion.
const JobProcessPDF = "pipeline:process_pdf"

const (
	UploadStatusQueued   = "queued"
	UploadStatusExisting = "existing"
)

var ErrFileTooLarge = errors.New("file exceeds upload size limit")

// UploadResult is returned to the uploader. JobID is empty when the document
// was already indexed and no job was enqueued.
type UploadResult struct {
	DocID    string `json:"doc_id"`
	JobID    string `json:"job_id,omitempty"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// DocumentRegistry is the registry surface the ingest flow needs.
type DocumentRegistry interface {
	Upsert(ctx context.Context, doc *model.Document) error
	Exists(ctx context.Context, docID string) (bool, error)
	FindByID(ctx context.Context, docID string) (*model.Document, error)
	List(ctx context.Context, limit, offset int) ([]model.Document, int64, error)
}

// JobQueue enqueues ingestion jobs and reports their status.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, args ...string) (string, error)
	Status(ctx context.Context, id string) (*queue.JobStatus, error)
}

// IngestService stores uploads content-addressed and enqueues indexing jobs.
type IngestService struct {
	docRepo  DocumentRegistry
	queue    JobQueue
	dir      string
	maxBytes int64
}

func NewIngestService(docRepo DocumentRegistry, q JobQueue, uploadDir string, maxBytes int64) *IngestService {
	return &IngestService{docRepo: docRepo, queue: q, dir: uploadDir, maxBytes: maxBytes}
}

// Upload persists the PDF under its content hash and enqueues ingestion.
// Re-uploading identical bytes without force resolves to the existing
// document and enqueues nothing.
func (s *IngestService) Upload(ctx context.Context, filename string, reader io.Reader, mode extract.OCRMode, force bool) (*UploadResult, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	// Hash while writing so the content is read exactly once.
	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), io.LimitReader(reader, s.maxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if written > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	docID := hex.EncodeToString(hasher.Sum(nil))

	exists, err := s.docRepo.Exists(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("check existing document: %w", err)
	}
	if exists && !force {
		return &UploadResult{DocID: docID, Filename: filename, Status: UploadStatusExisting}, nil
	}

	storagePath := filepath.Join(s.dir, docID+".pdf")
	if err := os.Rename(tmp.Name(), storagePath); err != nil {
		return nil, fmt.Errorf("move upload into place: %w", err)
	}

	doc := &model.Document{
		DocID:       docID,
		Filename:    filename,
		StoragePath: storagePath,
		Status:      repository.DocumentStatusPending,
	}
	if err := s.docRepo.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}

	jobID, err := s.queue.Enqueue(ctx, JobProcessPDF, docID, storagePath, string(mode))
	if err != nil {
		return nil, fmt.Errorf("enqueue ingestion job: %w", err)
	}

	return &UploadResult{DocID: docID, JobID: jobID, Filename: filename, Status: UploadStatusQueued}, nil
}

func (s *IngestService) List(ctx context.Context, limit, offset int) ([]model.Document, int64, error) {
	return s.docRepo.List(ctx, limit, offset)
}

func (s *IngestService) GetByID(ctx context.Context, docID string) (*model.Document, error) {
	return s.docRepo.FindByID(ctx, docID)
}

func (s *IngestService) JobStatus(ctx context.Context, jobID string) (*queue.JobStatus, error) {
	return s.queue.Status(ctx, jobID)
}
