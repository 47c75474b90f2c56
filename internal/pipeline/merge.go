package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"review_radar/internal/domain"
)

var wsRunRe = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	return wsRunRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Fingerprint is the deduplication key: normalized author, normalized content
// and rating. Date is deliberately excluded — the same review re-scraped
// later carries a refreshed relative timestamp ("2 days ago" vs "3 days
// ago") and must collapse onto the stored record, not duplicate it.
func Fingerprint(r domain.Review) string {
	return normalize(r.Author) + "\x1f" + normalize(r.Content) + "\x1f" + strconv.Itoa(r.Rating)
}

// MergeOutcome reports what a merge did, for logging and import metrics.
type MergeOutcome struct {
	CSV     string
	RowsIn  int // reviews extracted from the incoming text
	Added   int // appended as new records
	Updated int // existing records whose date was refreshed
	Total   int // records in the merged result
}

// Merge combines a stored canonical CSV with a freshly imported one. It never
// deletes an existing review: duplicates (by Fingerprint) only refresh the
// stored record's date, and a stored text that tokenizes to data rows but
// extracts to zero reviews aborts the merge unchanged rather than risking a
// wipe on a parse regression.
func Merge(existingCSV, newCSV string) string {
	return MergeWithStats(existingCSV, newCSV).CSV
}

// MergeWithStats is Merge plus counts.
func MergeWithStats(existingCSV, newCSV string) MergeOutcome {
	if strings.TrimSpace(existingCSV) == "" {
		incoming := Extract(newCSV)
		return MergeOutcome{CSV: newCSV, RowsIn: len(incoming), Added: len(incoming), Total: len(incoming)}
	}
	if strings.TrimSpace(newCSV) == "" {
		return MergeOutcome{CSV: existingCSV, Total: len(Extract(existingCSV))}
	}

	existing := Extract(existingCSV)
	if len(existing) == 0 {
		if len(Tokenize(existingCSV)) >= 2 {
			// data rows present but unrecognized schema: preserve, don't wipe
			return MergeOutcome{CSV: existingCSV}
		}
		// stored text is header-only; replace it only with something readable
		incoming := Extract(newCSV)
		if len(incoming) == 0 {
			return MergeOutcome{CSV: existingCSV}
		}
		return MergeOutcome{CSV: newCSV, RowsIn: len(incoming), Added: len(incoming), Total: len(incoming)}
	}

	incoming := Extract(newCSV)
	if len(incoming) == 0 {
		return MergeOutcome{CSV: existingCSV, Total: len(existing)}
	}

	// first occurrence wins when stored data already carries incidental dupes
	index := make(map[string]int, len(existing))
	merged := make([]domain.Review, len(existing))
	copy(merged, existing)
	for i := range merged {
		fp := Fingerprint(merged[i])
		if _, ok := index[fp]; !ok {
			index[fp] = i
		}
	}

	out := MergeOutcome{RowsIn: len(incoming)}
	for _, r := range incoming {
		fp := Fingerprint(r)
		if i, ok := index[fp]; ok {
			if i < len(existing) {
				// same review, fresher scrape: trust only its date
				upd := merged[i]
				upd.Date = r.Date
				merged[i] = upd
				out.Updated++
			}
			continue
		}
		index[fp] = len(merged)
		merged = append(merged, r)
		out.Added++
	}
	out.CSV = Serialize(merged)
	out.Total = len(merged)
	return out
}
