package domain

// RawDataset is one source's full export as stored. The CSV text is the
// source of truth; Review records are always derived from it, never persisted
// row-by-row.
type RawDataset struct {
	ID   string
	Name string
	CSV  string
}

// ImportStats summarizes one merge of an incoming export into a dataset.
type ImportStats struct {
	RowsIn  int `json:"rows_in"`
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// Sentiment is the breakdown returned by the analysis collaborator. It is
// treated as opaque beyond the top-level counts.
type Sentiment struct {
	Positive int            `json:"positive"`
	Negative int            `json:"negative"`
	Neutral  int            `json:"neutral"`
	Themes   map[string]any `json:"themes,omitempty"`
}

// PeriodStats holds period-over-period counts for a bounded month range and
// the adjacent range of equal width before it.
type PeriodStats struct {
	Current  int `json:"current"`
	Previous int `json:"previous"`
}
