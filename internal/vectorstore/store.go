// Package vectorstore is the chunk index: pgvector-backed similarity search
// with exact-match metadata filters. Filters are AND conjunctions over
// direct string/boolean comparisons; callers normalize values first so this
// layer never matches fuzzily.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/paperdex/paperdex/internal/model"
)

// Filters restricts a search or scroll. Zero values mean "no constraint".
type Filters struct {
	DocID         string
	Section       string
	Sections      []string
	SectionBucket string
	ClaimType     string
	TableVariant  string
	IsClaim       *bool
	IsTable       *bool
}

// Hit is one retrieved chunk with its cosine distance.
type Hit struct {
	Chunk model.Chunk
	Score float64
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Upsert writes chunks as vector points in one batch.
func (s *Store) Upsert(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(chunks, 200).Error; err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}
	return nil
}

// Replace atomically swaps a document's chunks for a new set, used on forced
// re-ingestion so stale chunks never linger.
func (s *Store) Replace(ctx context.Context, docID string, chunks []model.Chunk) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doc_id = ?", docID).Delete(&model.Chunk{}).Error; err != nil {
			return fmt.Errorf("failed to delete existing chunks: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(chunks, 200).Error; err != nil {
			return fmt.Errorf("failed to insert chunks: %w", err)
		}
		return nil
	})
}

// Search returns the topK chunks nearest to vector under the filters,
// ordered by ascending cosine distance.
func (s *Store) Search(ctx context.Context, vector pgvector.Vector, f Filters, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 5
	}

	var rows []struct {
		model.Chunk
		Distance float64 `gorm:"column:distance"`
	}

	query := s.db.WithContext(ctx).
		Table("chunks").
		Select("*, embedding <=> ? as distance", vector).
		Order("distance ASC").
		Limit(topK)
	query = applyFilters(query, f)

	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	hits := make([]Hit, len(rows))
	for i, r := range rows {
		hits[i] = Hit{Chunk: r.Chunk, Score: r.Distance}
	}
	return hits, nil
}

// Scroll returns up to limit chunks matching the filters without a query
// vector, in insertion order. Used for section-targeted summary retrieval.
func (s *Store) Scroll(ctx context.Context, f Filters, limit int) ([]model.Chunk, error) {
	if limit <= 0 {
		limit = 10
	}
	var chunks []model.Chunk
	query := applyFilters(s.db.WithContext(ctx), f).
		Order("created_at ASC").
		Limit(limit)
	if err := query.Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("scroll query failed: %w", err)
	}
	return chunks, nil
}

// CountByDocID reports how many chunks a document has indexed.
func (s *Store) CountByDocID(ctx context.Context, docID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Chunk{}).
		Where("doc_id = ?", docID).Count(&count).Error
	return count, err
}

func applyFilters(query *gorm.DB, f Filters) *gorm.DB {
	if f.DocID != "" {
		query = query.Where("doc_id = ?", f.DocID)
	}
	if f.Section != "" {
		query = query.Where("section = ?", f.Section)
	}
	if len(f.Sections) > 0 {
		query = query.Where("section IN ?", f.Sections)
	}
	if f.SectionBucket != "" {
		query = query.Where("section_bucket = ?", f.SectionBucket)
	}
	if f.ClaimType != "" {
		query = query.Where("claim_type = ?", f.ClaimType)
	}
	if f.TableVariant != "" {
		query = query.Where("table_variant = ?", f.TableVariant)
	}
	if f.IsClaim != nil {
		query = query.Where("is_claim = ?", *f.IsClaim)
	}
	if f.IsTable != nil {
		query = query.Where("is_table = ?", *f.IsTable)
	}
	return query
}
