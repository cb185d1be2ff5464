package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paperdex/paperdex/internal/extract"
	"github.com/paperdex/paperdex/internal/model"
)

// Document lifecycle states on the registry row. Pipeline progress itself is
// tracked in the job queue; this is the durable end state.
const (
	DocumentStatusPending   = "pending"
	DocumentStatusCompleted = "completed"
	DocumentStatusFailed    = "failed"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Upsert registers a document, or refreshes the filename and storage path if
// the same content hash was uploaded before.
func (r *DocumentRepository) Upsert(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"filename", "storage_path", "updated_at"}),
		}).
		Create(doc).Error
}

func (r *DocumentRepository) FindByID(ctx context.Context, docID string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).First(&doc, "doc_id = ?", docID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Exists reports whether a document with this content hash is already
// registered, regardless of its ingestion state.
func (r *DocumentRepository) Exists(ctx context.Context, docID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Document{}).
		Where("doc_id = ?", docID).
		Count(&count).Error
	return count > 0, err
}

func (r *DocumentRepository) List(ctx context.Context, limit, offset int) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Document{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&docs).Error
	return docs, total, err
}

// MarkCompleted records a successful ingestion outcome together with the
// extraction-strategy metadata the pipeline settled on.
func (r *DocumentRepository) MarkCompleted(ctx context.Context, docID string, pageCount, chunkCount, claimCount int, decision extract.Decision) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&model.Document{}).
		Where("doc_id = ?", docID).
		Updates(map[string]interface{}{
			"status":             DocumentStatusCompleted,
			"page_count":         pageCount,
			"chunk_count":        chunkCount,
			"claim_count":        claimCount,
			"ocr_mode_requested": string(decision.ModeRequested),
			"ocr_used":           decision.UseOCR,
			"ocr_skipped":        decision.Skipped,
			"ocr_skip_reason":    decision.SkipReason,
			"ingestion_mode":     decision.IngestionMode,
			"pdf_type":           decision.PDFType,
			"ingested_at":        &now,
		}).Error
}

func (r *DocumentRepository) MarkFailed(ctx context.Context, docID, reason string) error {
	return r.db.WithContext(ctx).Model(&model.Document{}).
		Where("doc_id = ?", docID).
		Updates(map[string]interface{}{
			"status":   DocumentStatusFailed,
			"metadata": model.JSONMap{"failure_reason": reason},
		}).Error
}

func (r *DocumentRepository) Delete(ctx context.Context, docID string) error {
	return r.db.WithContext(ctx).Where("doc_id = ?", docID).Delete(&model.Document{}).Error
}
