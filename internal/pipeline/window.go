package pipeline

import (
	"strconv"
	"strings"
	"time"
)

// FilterTrailing re-serializes csvText restricted to data rows whose resolved
// date falls in [now - months*30d, now]. window is "all" or a decimal month
// count as received from the caller ("0.25" is last week); anything
// unparsable degrades to the identity. A missing date column is also the
// identity: "all time up to now" is still displayable without dates.
func FilterTrailing(csvText, window string, now time.Time) string {
	w := strings.TrimSpace(strings.ToLower(window))
	if w == "" || w == "all" {
		return csvText
	}
	months, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return csvText
	}

	rows := Tokenize(csvText)
	if len(rows) < 2 {
		return csvText
	}
	h := FindHeaderRow(rows)
	if ResolveColumns(rows[h]).Date < 0 {
		return csvText
	}
	cutoff := now.Add(-spanSeconds(months * monthSeconds))
	// to is exclusive in filterRows; nudge past now so rows dated exactly
	// "now" (including unresolvable dates) stay in the window.
	return filterRows(rows, h, cutoff, now.Add(time.Nanosecond), now)
}

// FilterMonthRange keeps rows resolved into [now - start*30d, now - end*30d).
// start must exceed end; an inverted range and a missing date column both
// yield the empty result, since a bounded comparison without dates is
// meaningless.
func FilterMonthRange(csvText string, startMonthsAgo, endMonthsAgo float64, now time.Time) string {
	if startMonthsAgo <= endMonthsAgo {
		return ""
	}
	return filterBounded(csvText,
		now.Add(-spanSeconds(startMonthsAgo*monthSeconds)),
		now.Add(-spanSeconds(endMonthsAgo*monthSeconds)),
		now)
}

// FilterDayRange is FilterMonthRange with exact day counts instead of the
// 30-day month approximation.
func FilterDayRange(csvText string, startDaysAgo, endDaysAgo float64, now time.Time) string {
	if startDaysAgo <= endDaysAgo {
		return ""
	}
	return filterBounded(csvText,
		now.Add(-spanSeconds(startDaysAgo*daySeconds)),
		now.Add(-spanSeconds(endDaysAgo*daySeconds)),
		now)
}

func filterBounded(csvText string, from, to, now time.Time) string {
	rows := Tokenize(csvText)
	if len(rows) < 2 {
		return ""
	}
	h := FindHeaderRow(rows)
	if ResolveColumns(rows[h]).Date < 0 {
		return ""
	}
	return filterRows(rows, h, from, to, now)
}

// filterRows emits the header row plus data rows whose date cell resolves
// into [from, to). Rows with a blank or missing date cell are dropped, not
// errored.
func filterRows(rows [][]string, header int, from, to, now time.Time) string {
	dateCol := ResolveColumns(rows[header]).Date
	out := []string{encodeRow(rows[header])}
	for _, row := range rows[header+1:] {
		if len(row) <= 1 {
			continue
		}
		raw := cellAt(row, dateCol)
		if raw == "" {
			continue
		}
		t := ResolveDate(raw, now)
		if !t.Before(from) && t.Before(to) {
			out = append(out, encodeRow(row))
		}
	}
	return strings.Join(out, "\n")
}

func spanSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
