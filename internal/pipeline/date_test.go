package pipeline_test

import (
	"testing"
	"time"

	"review_radar/internal/pipeline"
)

var ref = time.Date(2026, 1, 11, 12, 0, 0, 0, time.UTC)

func TestResolveDate_EpochSeconds(t *testing.T) {
	got := pipeline.ResolveDate("1736553600", ref)
	if want := time.Unix(1736553600, 0).UTC(); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveDate_DayMonthYear(t *testing.T) {
	// ambiguous value: must be read day-first, 3 April not 4 March
	got := pipeline.ResolveDate("03/04/2025", ref)
	if want := time.Date(2025, time.April, 3, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	got = pipeline.ResolveDate("7-12-2024", ref)
	if want := time.Date(2024, time.December, 7, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	// trailing time after whitespace is tolerated
	got = pipeline.ResolveDate("3/4/2025 18:30", ref)
	if want := time.Date(2025, time.April, 3, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveDate_InvalidDMYFallsThrough(t *testing.T) {
	// month 14 is invalid; nothing else matches, so ref comes back
	if got := pipeline.ResolveDate("05/14/2025", ref); !got.Equal(ref) {
		t.Fatalf("got %v, want ref", got)
	}
}

func TestResolveDate_ISO(t *testing.T) {
	got := pipeline.ResolveDate("2025-06-15", ref)
	if want := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	got = pipeline.ResolveDate("2025-06-15T08:30:00", ref)
	if got.Hour() != 8 || got.Minute() != 30 {
		t.Fatalf("got %v", got)
	}
}

func TestResolveDate_RelativePhrases(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"3 days ago", ref.Add(-3 * 24 * time.Hour)},
		{"an hour ago", ref.Add(-time.Hour)},
		{"2 weeks ago", ref.Add(-14 * 24 * time.Hour)},
		{"a month ago", ref.Add(-30 * 24 * time.Hour)},
		{"2 years ago", ref.Add(-2 * 365 * 24 * time.Hour)},
		{"Yesterday", ref.Add(-24 * time.Hour)}, // contains "day", no integer -> 1
	}
	for _, c := range cases {
		if got := pipeline.ResolveDate(c.in, ref); !got.Equal(c.want) {
			t.Fatalf("%q: got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestResolveDate_UnitPrecedence(t *testing.T) {
	// "hour" wins over "day" when both substrings appear
	got := pipeline.ResolveDate("1 hour ago today", ref)
	if want := ref.Add(-time.Hour); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveDate_FallbackIsRef(t *testing.T) {
	for _, in := range []string{"", "   ", "garbage", "N/A"} {
		if got := pipeline.ResolveDate(in, ref); !got.Equal(ref) {
			t.Fatalf("%q: got %v, want ref", in, got)
		}
	}
}
