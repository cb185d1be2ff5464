// Package chunker turns extracted page content into indexable chunks: fixed
// size overlapping word windows that never cross a section boundary, plus
// one chunk per table view.
package chunker

import (
	"strings"

	"github.com/paperdex/paperdex/internal/extract"
	"github.com/paperdex/paperdex/internal/model"
	"github.com/paperdex/paperdex/internal/section"
)

// Default window configuration, in words.
const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// Config sets the word-window geometry.
type Config struct {
	ChunkSize int
	Overlap   int
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Overlap < 0 {
		c.Overlap = DefaultOverlap
	}
	return c
}

// Chunk windows the document's lines section by section and expands every
// table into its three indexed views. Word and page buffers accumulate for
// the current section and are flushed whenever a heading changes it, so no
// window ever spans two sections.
func Chunk(pages []extract.PageContent, docID, filename string, cfg Config) []model.Chunk {
	cfg = cfg.withDefaults()

	var chunks []model.Chunk
	current := section.General
	var words []string
	var wordPages []int

	flush := func() {
		chunks = append(chunks, windowWords(words, wordPages, current, docID, filename, cfg)...)
		words = words[:0]
		wordPages = wordPages[:0]
	}

	for _, page := range pages {
		for _, table := range page.Tables {
			chunks = append(chunks, tableChunks(table, page.Page, docID, filename)...)
		}

		for _, line := range page.Lines {
			if line.Section != current {
				flush()
				current = line.Section
			}
			for _, w := range strings.Fields(line.Text) {
				words = append(words, w)
				wordPages = append(wordPages, page.Page)
			}
		}
	}
	flush()

	return chunks
}

// windowWords slides a fixed-size window over one section's word buffer.
// The stride is size minus overlap; a non-positive stride degrades to a one
// word advance so the loop always terminates. The final partial window is
// kept.
func windowWords(words []string, pages []int, sec, docID, filename string, cfg Config) []model.Chunk {
	if len(words) == 0 {
		return nil
	}

	stride := cfg.ChunkSize - cfg.Overlap
	if stride <= 0 {
		stride = 1
	}

	var chunks []model.Chunk
	for start := 0; ; start += stride {
		end := start + cfg.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, model.Chunk{
			DocID:         docID,
			Text:          strings.Join(words[start:end], " "),
			Page:          pages[start],
			EndPage:       pages[end-1],
			Section:       sec,
			SectionBucket: section.Bucket(sec),
			Filename:      filename,
			ContentType:   model.ContentTypeText,
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}

// tableChunks expands one table into markdown, per-row and metric-fact
// chunks. Tables bypass word windowing entirely.
func tableChunks(table extract.Table, page int, docID, filename string) []model.Chunk {
	base := model.Chunk{
		DocID:         docID,
		Page:          page,
		EndPage:       page,
		Section:       table.Section,
		SectionBucket: table.SectionBucket,
		Filename:      filename,
		IsTable:       true,
		TableID:       table.ID,
		TableShape:    table.Shape(),
	}

	var chunks []model.Chunk
	if table.Markdown != "" {
		md := base
		md.Text = table.Markdown
		md.ContentType = model.ContentTypeTable
		md.TableVariant = model.TableVariantMarkdown
		chunks = append(chunks, md)
	}
	for _, row := range table.NormalizedRows {
		c := base
		c.Text = row
		c.ContentType = model.ContentTypeTableRow
		c.TableVariant = model.TableVariantNormalized
		chunks = append(chunks, c)
	}
	for _, fact := range table.MetricFacts {
		c := base
		c.Text = fact
		c.ContentType = model.ContentTypeTableMetric
		c.TableVariant = model.TableVariantMetricFact
		chunks = append(chunks, c)
	}
	return chunks
}
