package pipeline

import (
	"strconv"
	"strings"

	"review_radar/internal/domain"
)

// headerScanLimit bounds the search for a header row below leading metadata
// rows some scraping tools prepend.
const headerScanLimit = 10

// Columns holds resolved column indexes for one header row; -1 means the
// column was not found.
type Columns struct {
	Author  int
	Date    int
	Content int
	Rating  int
	Source  int
}

// Complete reports whether the required columns were all found. A file with
// no discoverable author, content or rating column is treated as unparseable
// rather than silently defaulted at the table level.
func (c Columns) Complete() bool {
	return c.Author >= 0 && c.Content >= 0 && c.Rating >= 0
}

// FindHeaderRow scans at most the first ten rows for one whose joined,
// lower-cased text mentions "reviewer" or "author"; row 0 otherwise.
func FindHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], " "))
		if strings.Contains(joined, "reviewer") || strings.Contains(joined, "author") {
			return i
		}
	}
	return 0
}

// ResolveColumns maps header labels to canonical column indexes. Each rule is
// applied independently so mixed header conventions still resolve. Date and
// content require exact label matches: a substring rule would misread
// "commented_at" as content, or "atmosphere" as a time column. Rating
// excludes "overall" so a per-file overall_rating summary is not mistaken for
// the per-review score. "souce" is a misspelling seen in real exports.
func ResolveColumns(header []string) Columns {
	c := Columns{Author: -1, Date: -1, Content: -1, Rating: -1, Source: -1}
	for i, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		if c.Author < 0 && (strings.Contains(h, "author") || strings.Contains(h, "reviewer")) {
			c.Author = i
		}
		if c.Date < 0 && (h == "commented_at" || h == "time" || h == "date") {
			c.Date = i
		}
		if c.Content < 0 && (h == "content" || h == "comment") {
			c.Content = i
		}
		if c.Rating < 0 && strings.Contains(h, "rating") && !strings.Contains(h, "overall") {
			c.Rating = i
		}
		if c.Source < 0 && (strings.Contains(h, "source") || strings.Contains(h, "souce")) {
			c.Source = i
		}
	}
	return c
}

// Extract parses csvText into canonical reviews. It returns nil when the text
// has fewer than two rows or the required columns cannot be resolved. Rows
// with one or zero cells (blank lines) are skipped; malformed fields default
// per cell instead of failing the file.
func Extract(csvText string) []domain.Review {
	rows := Tokenize(csvText)
	if len(rows) < 2 {
		return nil
	}
	h := FindHeaderRow(rows)
	cols := ResolveColumns(rows[h])
	if !cols.Complete() {
		return nil
	}

	var out []domain.Review
	for _, row := range rows[h+1:] {
		if len(row) <= 1 {
			continue
		}
		r := domain.Review{
			Author:  cellAt(row, cols.Author),
			Date:    cellAt(row, cols.Date),
			Content: cellAt(row, cols.Content),
			Rating:  firstInt(cellAt(row, cols.Rating)),
			Source:  cellAt(row, cols.Source),
		}
		if r.Author == "" {
			r.Author = domain.AnonymousAuthor
		}
		if r.Source == "" {
			r.Source = domain.DefaultSource
		}
		out = append(out, r)
	}
	return out
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// firstInt parses the first run of digits anywhere in s ("5 stars" -> 5);
// 0 when none is found.
func firstInt(s string) int {
	d := digitRunRe.FindString(s)
	if d == "" {
		return 0
	}
	n, err := strconv.Atoi(d)
	if err != nil {
		return 0
	}
	return n
}
