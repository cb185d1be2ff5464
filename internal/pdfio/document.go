package pdfio

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// fileDocument reads embedded text with ledongthuc/pdf and delegates
// rasterization and table detection to the render service.
type fileDocument struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	render *RenderClient
}

// NewOpener returns an Opener bound to a render service client.
func NewOpener(render *RenderClient) Opener {
	return func(path string) (Document, error) {
		f, r, err := pdf.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
		}
		return &fileDocument{path: path, file: f, reader: r, render: render}, nil
	}
}

func (d *fileDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *fileDocument) PageText(ctx context.Context, page int) (string, error) {
	if page < 1 || page > d.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range", page)
	}
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		// Pages with unsupported encodings yield no embedded text rather
		// than failing the document.
		return "", nil
	}
	return text, nil
}

// PageTextLines reconstructs visual lines from row geometry. Research papers
// typeset with Td/TJ positioning carry no newlines in their plain text, so
// splitting GetPlainText output would merge whole pages into one line.
func (d *fileDocument) PageTextLines(ctx context.Context, page int) ([]string, error) {
	if page < 1 || page > d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		// Same tolerance as PageText: unsupported encodings yield no text.
		return nil, nil
	}
	var lines []string
	for _, row := range rows {
		var b strings.Builder
		for _, fragment := range row.Content {
			b.WriteString(fragment.S)
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (d *fileDocument) WordCounts(ctx context.Context) ([]int, error) {
	counts := make([]int, d.reader.NumPage())
	for i := 1; i <= d.reader.NumPage(); i++ {
		text, err := d.PageText(ctx, i)
		if err != nil {
			return nil, err
		}
		counts[i-1] = len(strings.Fields(text))
	}
	return counts, nil
}

func (d *fileDocument) RenderPage(ctx context.Context, page int) ([]byte, error) {
	return d.render.RenderPage(ctx, d.path, page)
}

func (d *fileDocument) PageTables(ctx context.Context, page int) ([]RawTable, error) {
	return d.render.PageTables(ctx, d.path, page)
}

func (d *fileDocument) Close() error {
	return d.file.Close()
}
