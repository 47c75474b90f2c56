// Package pipeline is the ingestion/normalization core: a lenient CSV
// tokenizer, a multi-format date resolver, a schema-sniffing extractor,
// time-window filters and a deduplicating merger. Every function is a total,
// pure transformation over in-memory text; none performs I/O or panics on
// malformed input, so callers may invoke them concurrently without
// coordination.
package pipeline

import (
	"strconv"
	"strings"

	"review_radar/internal/domain"
)

// CanonicalHeader is the at-rest header for merged datasets.
const CanonicalHeader = "author,date,content,rating,source"

// Tokenize splits raw CSV text into rows of cells, honoring double-quoted
// fields with doubled-quote escaping and CR/LF/CRLF line endings. It is the
// single source of truth for delimiter handling; no other code re-splits CSV
// text. A lone unmatched quote absorbs the rest of the input into the last
// cell rather than failing.
func Tokenize(text string) [][]string {
	var rows [][]string
	var row []string
	var cell strings.Builder
	inQuotes := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				// doubled quote inside a quoted cell -> literal "
				cell.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			row = append(row, cell.String())
			cell.Reset()
		case (ch == '\r' || ch == '\n') && !inQuotes:
			row = append(row, cell.String())
			cell.Reset()
			rows = append(rows, row)
			row = nil
			if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
		default:
			cell.WriteByte(ch)
		}
	}
	// flush a final row when the file has no trailing newline
	if cell.Len() > 0 || len(row) > 0 {
		row = append(row, cell.String())
		rows = append(rows, row)
	}
	return rows
}

// Serialize writes reviews as canonical CSV under CanonicalHeader, quoting
// cells only when necessary.
func Serialize(reviews []domain.Review) string {
	var b strings.Builder
	b.WriteString(CanonicalHeader)
	for _, r := range reviews {
		b.WriteByte('\n')
		b.WriteString(encodeRow([]string{r.Author, r.Date, r.Content, strconv.Itoa(r.Rating), r.Source}))
	}
	return b.String()
}

func encodeRow(cells []string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = encodeCell(c)
	}
	return strings.Join(out, ",")
}

// encodeCell quotes a cell iff it contains a comma, quote or line break.
func encodeCell(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
