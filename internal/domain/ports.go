package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("dataset not found")

type DatasetRepository interface {
	// Write paths
	UpsertDataset(ctx context.Context, d RawDataset) error
	// ReplaceCSV runs fn against the dataset's current CSV inside a row lock
	// and stores whatever fn returns. Serializes concurrent read-merge-write
	// sequences on the same dataset.
	ReplaceCSV(ctx context.Context, id string, fn func(current string) string) error
	LogImport(ctx context.Context, id string, st ImportStats) error

	// Read paths
	GetDataset(ctx context.Context, id string) (RawDataset, error)
	FindByName(ctx context.Context, name string) (RawDataset, error)
	ListDatasets(ctx context.Context) ([]RawDataset, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Analyzer is the hosted sentiment-analysis collaborator. It receives
// already-filtered canonical CSV, never raw exports. batch distinguishes a
// comparison batch from a single-item deep dive.
type Analyzer interface {
	Analyze(ctx context.Context, name, csvText string, batch bool) (Sentiment, error)
}
