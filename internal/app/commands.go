package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"review_radar/internal/adapters/observability"
	"review_radar/internal/domain"
	"review_radar/internal/pipeline"
)

// ImportService is the write path: it merges an incoming export into the
// dataset's stored canonical CSV. The merge itself is a pure function; the
// repository's ReplaceCSV serializes concurrent read-merge-write sequences on
// the same dataset.
type ImportService struct {
	repo  domain.DatasetRepository
	cache domain.Cache
}

func NewImportService(r domain.DatasetRepository, cache domain.Cache) *ImportService {
	return &ImportService{repo: r, cache: cache}
}

// ImportCSV merges csvText into dataset id, creating the dataset on first
// import. The stored data is never shrunk: duplicate reviews only refresh
// their date, and a stored text the extractor cannot read aborts the merge
// unchanged.
func (s *ImportService) ImportCSV(ctx context.Context, id, name, csvText string) (domain.ImportStats, error) {
	if _, err := s.repo.GetDataset(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.ImportStats{}, err
		}
		if err := s.repo.UpsertDataset(ctx, domain.RawDataset{ID: id, Name: name}); err != nil {
			return domain.ImportStats{}, fmt.Errorf("create dataset %s: %w", id, err)
		}
	}

	var st domain.ImportStats
	err := s.repo.ReplaceCSV(ctx, id, func(current string) string {
		out := pipeline.MergeWithStats(current, csvText)
		st = domain.ImportStats{RowsIn: out.RowsIn, Added: out.Added, Updated: out.Updated, Total: out.Total}
		return out.CSV
	})
	if err != nil {
		return domain.ImportStats{}, err
	}

	if err := s.repo.LogImport(ctx, id, st); err != nil {
		log.Warn().Err(err).Str("dataset", id).Msg("import log write failed")
	}
	observability.ObserveImport(st.Added, st.Updated)

	if s.cache != nil {
		s.bumpViewVersion(ctx, id)
	}

	log.Info().
		Str("dataset", id).
		Int("rows_in", st.RowsIn).
		Int("added", st.Added).
		Int("updated", st.Updated).
		Int("total", st.Total).
		Msg("import merged")
	return st, nil
}

// bumpViewVersion moves the dataset's cached views to a fresh generation so
// every window variant misses after an import.
func (s *ImportService) bumpViewVersion(ctx context.Context, id string) {
	v := viewVersion(ctx, s.cache, id)
	_ = s.cache.Set(ctx, "viewver:"+id, v+1, 0)
}
