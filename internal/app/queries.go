package app

import (
	"context"
	"fmt"
	"time"

	"review_radar/internal/domain"
	"review_radar/internal/pipeline"
)

// QueryService is the read path. Filtered views and analysis results are
// cached per (dataset, window); the reference "now" is always supplied by the
// caller so results stay reproducible in tests.
type QueryService struct {
	repo     domain.DatasetRepository
	cache    domain.Cache
	analyzer domain.Analyzer
	cacheTTL time.Duration
}

func NewQueryService(r domain.DatasetRepository, c domain.Cache, a domain.Analyzer, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, analyzer: a, cacheTTL: ttl}
}

// viewVersion is the dataset's cache generation. Imports bump it, which
// orphans every cached view of the prior generation whatever window string it
// was keyed under; orphans age out on their own TTL.
func viewVersion(ctx context.Context, c domain.Cache, id string) int {
	var v int
	_, _ = c.Get(ctx, "viewver:"+id, &v)
	return v
}

// DatasetSummary is the list view; raw CSV stays out of list responses.
type DatasetSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Reviews int    `json:"reviews"`
}

func (s *QueryService) Datasets(ctx context.Context) ([]DatasetSummary, error) {
	ds, err := s.repo.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DatasetSummary, 0, len(ds))
	for _, d := range ds {
		out = append(out, DatasetSummary{
			ID:      d.ID,
			Name:    d.Name,
			Reviews: len(pipeline.Extract(d.CSV)),
		})
	}
	return out, nil
}

// Reviews returns the dataset's canonical reviews restricted to a trailing
// window ("all" or a decimal month count).
func (s *QueryService) Reviews(ctx context.Context, id, window string, now time.Time) ([]domain.Review, error) {
	key := fmt.Sprintf("reviews:%s:v%d:%s", id, viewVersion(ctx, s.cache, id), window)
	var cached []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	d, err := s.repo.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	out := pipeline.Extract(pipeline.FilterTrailing(d.CSV, window, now))
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// Compare counts reviews in the bounded range [start, end) months ago against
// the adjacent range of equal width before it.
func (s *QueryService) Compare(ctx context.Context, id string, startMonthsAgo, endMonthsAgo float64, now time.Time) (domain.PeriodStats, error) {
	d, err := s.repo.GetDataset(ctx, id)
	if err != nil {
		return domain.PeriodStats{}, err
	}
	width := startMonthsAgo - endMonthsAgo
	return domain.PeriodStats{
		Current:  len(pipeline.Extract(pipeline.FilterMonthRange(d.CSV, startMonthsAgo, endMonthsAgo, now))),
		Previous: len(pipeline.Extract(pipeline.FilterMonthRange(d.CSV, startMonthsAgo+width, startMonthsAgo, now))),
	}, nil
}

// Analysis hands the window-filtered canonical CSV to the sentiment
// collaborator. batch marks the call as part of a comparison batch rather
// than a single-item deep dive.
func (s *QueryService) Analysis(ctx context.Context, id, window string, batch bool, now time.Time) (domain.Sentiment, error) {
	scope := "single"
	if batch {
		scope = "batch"
	}
	key := fmt.Sprintf("analysis:%s:v%d:%s:%s", id, viewVersion(ctx, s.cache, id), window, scope)
	var cached domain.Sentiment
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	d, err := s.repo.GetDataset(ctx, id)
	if err != nil {
		return domain.Sentiment{}, err
	}
	filtered := pipeline.FilterTrailing(d.CSV, window, now)
	out, err := s.analyzer.Analyze(ctx, d.Name, filtered, batch)
	if err != nil {
		return domain.Sentiment{}, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}
