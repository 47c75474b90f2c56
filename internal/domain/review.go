package domain

// Sentinel values filled in by the extractor when a source column is blank.
const (
	AnonymousAuthor = "Anonymous"
	DefaultSource   = "google"
)

// Review is the canonical unit produced by the pipeline. Date keeps the raw
// string as captured from the source; the absolute instant is only computed
// transiently for filtering and never persisted.
type Review struct {
	Author  string
	Date    string
	Content string
	Rating  int // 0..5; 0 means no rating parsed
	Source  string
}
