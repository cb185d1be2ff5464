package extract

import (
	"context"
	"fmt"
	"log"

	"github.com/paperdex/paperdex/internal/ocr"
	"github.com/paperdex/paperdex/internal/pdfio"
	"github.com/paperdex/paperdex/internal/section"
)

// Line is one extracted text line with its assigned section.
type Line struct {
	Text          string
	Section       string
	SectionBucket string
}

// PageContent is everything extracted from one page.
type PageContent struct {
	Page   int
	Lines  []Line
	Tables []Table
}

// HasContent reports whether the page carries any lines or tables.
func (p PageContent) HasContent() bool {
	return len(p.Lines) > 0 || len(p.Tables) > 0
}

// Strategy produces the ordered raw text lines of one page. The digital and
// OCR strategies share this contract so nothing downstream branches on how
// the text was obtained.
type Strategy interface {
	Name() string
	PageLines(ctx context.Context, page int) ([]string, error)
}

// digitalStrategy reads each page's embedded text as visual rows. Row
// geometry keeps headings on their own lines even when the page's plain
// text carries no newlines.
type digitalStrategy struct {
	doc pdfio.Document
}

func (s *digitalStrategy) Name() string { return "digital" }

func (s *digitalStrategy) PageLines(ctx context.Context, page int) ([]string, error) {
	return s.doc.PageTextLines(ctx, page)
}

// ocrStrategy renders each page and flattens the OCR engine's blocks into
// lines in reading order.
type ocrStrategy struct {
	doc pdfio.Document
	ocr ocr.Client
}

func (s *ocrStrategy) Name() string { return "ocr" }

func (s *ocrStrategy) PageLines(ctx context.Context, page int) ([]string, error) {
	image, err := s.doc.RenderPage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	result, err := s.ocr.Infer(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("ocr page %d: %w", page, err)
	}
	return result.FlattenLines(), nil
}

// NewStrategy picks the strategy for a decision made by Select.
func NewStrategy(decision Decision, doc pdfio.Document, ocrClient ocr.Client) Strategy {
	if decision.UseOCR {
		return &ocrStrategy{doc: doc, ocr: ocrClient}
	}
	return &digitalStrategy{doc: doc}
}

// AssignSections annotates raw lines with the running section, updating it
// whenever a line is detected as a heading. The section carried in is
// returned alongside the output so the caller can thread it across pages.
func AssignSections(rawLines []string, current string) ([]Line, string) {
	lines := make([]Line, 0, len(rawLines))
	for _, raw := range rawLines {
		if sec, ok := DetectHeading(raw); ok {
			current = sec
		}
		lines = append(lines, Line{
			Text:          raw,
			Section:       current,
			SectionBucket: section.Bucket(current),
		})
	}
	return lines, current
}

// ExtractPages runs the chosen strategy over every page, assigning sections
// with state carried across page boundaries. Tables are detected natively on
// every page regardless of strategy and tagged with the section current when
// the page begins.
func ExtractPages(ctx context.Context, doc pdfio.Document, strat Strategy) ([]PageContent, error) {
	pages := make([]PageContent, 0, doc.PageCount())
	current := section.General

	for pageNum := 1; pageNum <= doc.PageCount(); pageNum++ {
		rawTables, err := doc.PageTables(ctx, pageNum)
		if err != nil {
			// Table detection is best-effort; the page's text still counts.
			log.Printf("table extraction failed on page %d: %v", pageNum, err)
			rawTables = nil
		}
		tables := make([]Table, 0, len(rawTables))
		for i, raw := range rawTables {
			if len(raw.Headers) == 0 && len(raw.Rows) == 0 {
				continue
			}
			tables = append(tables, NormalizeTable(raw, pageNum, i+1, current))
		}

		rawLines, err := strat.PageLines(ctx, pageNum)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", pageNum, err)
		}

		var lines []Line
		lines, current = AssignSections(rawLines, current)

		pages = append(pages, PageContent{Page: pageNum, Lines: lines, Tables: tables})
	}
	return pages, nil
}
