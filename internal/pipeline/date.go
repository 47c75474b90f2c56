package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Fixed unit durations for relative phrases. Months and years are flat spans
// on purpose: "3 months ago" from a scraper is already imprecise, and flat
// spans keep window filtering deterministic.
const (
	hourSeconds  = 3600
	daySeconds   = 24 * hourSeconds
	weekSeconds  = 7 * daySeconds
	monthSeconds = 30 * daySeconds
	yearSeconds  = 365 * daySeconds
)

var (
	epochRe    = regexp.MustCompile(`^\d{10}$`)
	dmyRe      = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})(?:[\sT].*)?$`)
	digitRunRe = regexp.MustCompile(`\d+`)
)

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// relative units in match precedence order; "hour" must come before "day" so
// "an hour ago" is not read as a day via some other substring, and so on.
var relativeUnits = []struct {
	keyword string
	seconds int64
}{
	{"hour", hourSeconds},
	{"day", daySeconds},
	{"week", weekSeconds},
	{"month", monthSeconds},
	{"year", yearSeconds},
}

// ResolveDate turns a raw date cell into an absolute instant relative to ref.
// Rule order is fixed: 10-digit epoch seconds, numeric day/month/year,
// absolute ISO-like parse, relative phrase, and finally ref itself. It never
// fails: an unresolvable date is treated as "approximately now", which keeps
// the row visible in all-time views instead of silently dropping it.
func ResolveDate(raw string, ref time.Time) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ref
	}

	// 1) exact 10 ASCII digits -> Unix seconds
	if epochRe.MatchString(s) {
		secs, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return time.Unix(secs, 0).UTC()
		}
	}

	// 2) D/M/YYYY or D-M-YYYY, day first. Source exports use day-month order;
	// a locale-aware parse would swap day and month on values like 03/04/2025.
	if m := dmyRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		}
		// invalid combination falls through to the next rule
	}

	// 3) absolute calendar parse
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	// 4) relative phrase: first integer literal (default 1) + unit keyword
	low := strings.ToLower(s)
	count := 1
	if d := digitRunRe.FindString(low); d != "" {
		if n, err := strconv.Atoi(d); err == nil {
			count = n
		}
	}
	for _, u := range relativeUnits {
		if strings.Contains(low, u.keyword) {
			return ref.Add(-time.Duration(int64(count)*u.seconds) * time.Second)
		}
	}

	// 5) unknown date ~ now
	return ref
}
