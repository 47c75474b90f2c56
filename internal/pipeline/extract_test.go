package pipeline_test

import (
	"testing"

	"review_radar/internal/domain"
	"review_radar/internal/pipeline"
)

func TestResolveColumns_ExactAndSubstringRules(t *testing.T) {
	cols := pipeline.ResolveColumns([]string{"Reviewer", "Time", "Comment", "Rating", "Souce"})
	if cols.Author != 0 || cols.Date != 1 || cols.Content != 2 || cols.Rating != 3 || cols.Source != 4 {
		t.Fatalf("cols = %+v", cols)
	}

	// "atmosphere" must not match the date column; "overall_rating" must not
	// match the rating column; "commented_at" is a date, not content.
	cols = pipeline.ResolveColumns([]string{"author", "atmosphere", "overall_rating", "commented_at", "content", "rating"})
	if cols.Date != 3 {
		t.Fatalf("date col = %d, want 3", cols.Date)
	}
	if cols.Rating != 5 {
		t.Fatalf("rating col = %d, want 5", cols.Rating)
	}
	if cols.Content != 4 {
		t.Fatalf("content col = %d, want 4", cols.Content)
	}
}

func TestResolveColumns_MissingRequired(t *testing.T) {
	cols := pipeline.ResolveColumns([]string{"author", "date", "content"})
	if cols.Complete() {
		t.Fatalf("columns without rating must be incomplete: %+v", cols)
	}
}

func TestExtract_AlternateHeaderConvention(t *testing.T) {
	a := pipeline.Extract("Reviewer,Time,Comment,Rating\nJohn,3 days ago,Great food,5")
	b := pipeline.Extract("author,commented_at,content,rating\nJohn,3 days ago,Great food,5")
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("a=%v b=%v", a, b)
	}
	if a[0] != b[0] {
		t.Fatalf("conventions disagree: %+v vs %+v", a[0], b[0])
	}
}

func TestExtract_HeaderBelowMetadataRows(t *testing.T) {
	csv := "Exported by scrapetool v2,,,\nSite: example.com,,,\nauthor,date,content,rating\nAna,1/2/2023,Nice,4"
	got := pipeline.Extract(csv)
	if len(got) != 1 || got[0].Author != "Ana" || got[0].Rating != 4 {
		t.Fatalf("got %+v", got)
	}
}

func TestExtract_RatingDigitRun(t *testing.T) {
	csv := "author,date,content,rating\nA,,x,5 stars\nB,,y,N/A"
	got := pipeline.Extract(csv)
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got[0].Rating != 5 || got[1].Rating != 0 {
		t.Fatalf("ratings = %d, %d", got[0].Rating, got[1].Rating)
	}
}

func TestExtract_Defaults(t *testing.T) {
	csv := "author,date,content,rating\n,,empty content row,3"
	got := pipeline.Extract(csv)
	if len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	if got[0].Author != domain.AnonymousAuthor {
		t.Fatalf("author = %q", got[0].Author)
	}
	if got[0].Source != domain.DefaultSource {
		t.Fatalf("source = %q", got[0].Source)
	}
}

func TestExtract_SkipsBlankLines(t *testing.T) {
	csv := "author,date,content,rating\nA,1 day ago,ok,4\n\nB,2 days ago,fine,5\n"
	got := pipeline.Extract(csv)
	if len(got) != 2 {
		t.Fatalf("expected blank line skipped, got %v", got)
	}
}

func TestExtract_UnparseableSchema(t *testing.T) {
	if got := pipeline.Extract("name,when,text\nA,B,C"); got != nil {
		t.Fatalf("expected nil for unrecognized schema, got %v", got)
	}
	if got := pipeline.Extract(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := pipeline.Extract("author,date,content,rating"); got != nil {
		t.Fatalf("expected nil for header-only input, got %v", got)
	}
}
