package model

import (
	"github.com/pgvector/pgvector-go"
)

// Chunk content types.
const (
	ContentTypeText        = "text"
	ContentTypeTable       = "table"
	ContentTypeTableRow    = "table_row"
	ContentTypeTableMetric = "table_metric"
	ContentTypeClaim       = "claim"
)

// Table chunk variants.
const (
	TableVariantMarkdown   = "raw_markdown"
	TableVariantNormalized = "normalized_row"
	TableVariantMetricFact = "metric_fact"
)

// Claim types.
const (
	ClaimTypeMethod     = "method"
	ClaimTypeResult     = "result"
	ClaimTypeAssumption = "assumption"
)

// Chunk is one indexed vector point: a windowed text span, a table view or an
// extracted claim, together with its citation metadata. Chunks are immutable
// once written; re-ingesting a document replaces its chunks wholesale.
type Chunk struct {
	BaseModel
	DocID         string          `gorm:"size:64;not null;index" json:"doc_id"`
	Text          string          `gorm:"type:text;not null" json:"text"`
	Page          int             `gorm:"not null" json:"page"`
	EndPage       int             `gorm:"not null" json:"end_page"`
	Section       string          `gorm:"size:100;not null;index" json:"section"`
	SectionBucket string          `gorm:"size:20;not null;index" json:"section_bucket"`
	Filename      string          `gorm:"size:500" json:"filename"`
	ContentType   string          `gorm:"size:20;not null;index" json:"content_type"`
	IsTable       bool            `gorm:"not null;index" json:"is_table"`
	IsClaim       bool            `gorm:"not null;index" json:"is_claim"`
	TableID       string          `gorm:"size:50" json:"table_id,omitempty"`
	TableShape    string          `gorm:"size:20" json:"table_shape,omitempty"`
	TableVariant  string          `gorm:"size:20;index" json:"table_variant,omitempty"`
	ClaimType     string          `gorm:"size:20;index" json:"claim_type,omitempty"`
	OriginalText  string          `gorm:"type:text" json:"original_text,omitempty"`
	Embedding     pgvector.Vector `gorm:"type:vector(384)" json:"-"`
}

func (Chunk) TableName() string {
	return "chunks"
}
