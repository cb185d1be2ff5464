package model

import "time"

// Document is the registry row for an ingested paper. Its primary key is the
// SHA-256 of the uploaded bytes, so re-uploading identical content resolves
// to the same document.
type Document struct {
	DocID       string `gorm:"primaryKey;size:64" json:"doc_id"`
	Filename    string `gorm:"size:500" json:"filename"`
	StoragePath string `gorm:"size:1000" json:"-"`
	PageCount   int    `gorm:"default:0" json:"page_count"`
	ChunkCount  int    `gorm:"default:0" json:"chunk_count"`
	ClaimCount  int    `gorm:"default:0" json:"claim_count"`
	Status      string `gorm:"size:50;default:'pending'" json:"status"`

	// Extraction-strategy metadata recorded by the pipeline.
	OCRModeRequested string `gorm:"size:20" json:"ocr_mode_requested"`
	OCRUsed          bool   `json:"ocr_used"`
	OCRSkipped       bool   `json:"ocr_skipped"`
	OCRSkipReason    string `gorm:"size:100" json:"ocr_skip_reason,omitempty"`
	IngestionMode    string `gorm:"size:20" json:"ingestion_mode"`
	PDFType          string `gorm:"size:20" json:"pdf_type"`

	Metadata   JSONMap    `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	IngestedAt *time.Time `json:"ingested_at,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}
