package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paperdex/paperdex/internal/pdfio"
	"github.com/paperdex/paperdex/internal/section"
)

// Table is a normalized table ready for chunking: one markdown rendering,
// one textual summary per row, and deduplicated metric-fact sentences for
// numeric cells.
type Table struct {
	ID             string
	Section        string
	SectionBucket  string
	Rows           int
	Cols           int
	Markdown       string
	NormalizedRows []string
	MetricFacts    []string
}

// Shape renders the table shape as "rows x cols".
func (t Table) Shape() string {
	return fmt.Sprintf("%dx%d", t.Rows, t.Cols)
}

var (
	cellSpaceRe = regexp.MustCompile(`\s+`)
	digitRe     = regexp.MustCompile(`\d`)
)

// NormalizeTable turns a detected raw table into its indexed form. page and
// index are 1-based; sec is the section current when the table was found.
func NormalizeTable(raw pdfio.RawTable, page, index int, sec string) Table {
	cols := normalizeColumns(raw.Headers, raw.Rows)
	t := Table{
		ID:            fmt.Sprintf("page%d_table%d", page, index),
		Section:       sec,
		SectionBucket: section.Bucket(sec),
		Rows:          len(raw.Rows),
		Cols:          len(cols),
	}

	rows := make([][]string, len(raw.Rows))
	for i, rawRow := range raw.Rows {
		row := make([]string, len(cols))
		for j := range cols {
			if j < len(rawRow) {
				row[j] = collapseCell(rawRow[j])
			}
		}
		rows[i] = row
	}

	t.Markdown = renderMarkdown(cols, rows)

	seenFacts := make(map[string]struct{})
	for i, row := range rows {
		var pairs []string
		for j, val := range row {
			if val == "" {
				continue
			}
			pairs = append(pairs, fmt.Sprintf("%s=%s", cols[j], val))
			if digitRe.MatchString(val) {
				fact := fmt.Sprintf("Table %d, row %d: %s is %s", index, i+1, cols[j], val)
				if _, seen := seenFacts[fact]; !seen {
					seenFacts[fact] = struct{}{}
					t.MetricFacts = append(t.MetricFacts, fact)
				}
			}
		}
		if len(pairs) > 0 {
			t.NormalizedRows = append(t.NormalizedRows,
				fmt.Sprintf("Table %d, row %d: %s", index, i+1, strings.Join(pairs, "; ")))
		}
	}
	return t
}

// normalizeColumns de-duplicates column names and replaces blank or
// "unnamed" columns with positional col_N placeholders.
func normalizeColumns(headers []string, rows [][]string) []string {
	width := len(headers)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	cols := make([]string, width)
	seen := make(map[string]int)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(headers) {
			name = collapseCell(headers[i])
		}
		if name == "" || strings.HasPrefix(strings.ToLower(name), "unnamed") {
			name = fmt.Sprintf("col_%d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		cols[i] = name
	}
	return cols
}

func collapseCell(value string) string {
	return strings.TrimSpace(cellSpaceRe.ReplaceAllString(value, " "))
}

func renderMarkdown(cols []string, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(cols)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
