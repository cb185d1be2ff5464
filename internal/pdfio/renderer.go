// Package pdfio exposes the PDF capabilities the ingestion pipeline depends
// on: embedded text, page rasters and detected tables. Embedded text is read
// in-process; rasterization and table detection are delegated to a render
// service sidecar.
package pdfio

import "context"

// RawTable is a detected table before normalization: header cells plus data
// rows, exactly as the table detector reports them.
type RawTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Document is an open PDF.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int
	// PageText returns the embedded text of a page (1-based).
	PageText(ctx context.Context, page int) (string, error)
	// PageTextLines returns the embedded text of a page split into visual
	// rows. Plain-text extraction only breaks lines on BT/T* operators, so
	// row geometry is the reliable way to recover line structure.
	PageTextLines(ctx context.Context, page int) ([]string, error)
	// WordCounts returns the embedded word count per page, used for
	// digital-PDF detection.
	WordCounts(ctx context.Context) ([]int, error)
	// RenderPage rasterizes a page to a PNG image for OCR.
	RenderPage(ctx context.Context, page int) ([]byte, error)
	// PageTables returns the tables detected on a page.
	PageTables(ctx context.Context, page int) ([]RawTable, error)
	// Close releases the underlying file.
	Close() error
}

// Opener opens a PDF from a storage path.
type Opener func(path string) (Document, error)
