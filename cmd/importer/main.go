package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_radar/internal/adapters/observability"
	redisad "review_radar/internal/adapters/redis"
	"review_radar/internal/app"
	"review_radar/internal/domain"
	"review_radar/internal/shared"
	mysqlrepo "review_radar/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("dir", cfg.ImportDir).
		Int("workers", cfg.Workers).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	imp := app.NewImportService(repo, cache)

	files, err := filepath.Glob(filepath.Join(cfg.ImportDir, "*.csv"))
	if err != nil {
		log.Fatal().Err(err).Msg("scanning import dir failed")
	}
	if len(files) == 0 {
		log.Warn().Str("dir", cfg.ImportDir).Msg("no export files found")
		return
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, path := range files {
		path := path

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)

			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			body, err := os.ReadFile(path)
			if err != nil {
				log.Warn().Str("file", path).Err(err).Msg("read failed")
				return
			}

			id, err := datasetID(ctx, repo, name)
			if err != nil {
				log.Warn().Str("file", path).Err(err).Msg("dataset lookup failed")
				return
			}

			st, err := imp.ImportCSV(ctx, id, name, string(body))
			if err != nil {
				log.Warn().Str("file", path).Err(err).Msg("import failed")
				return
			}
			log.Info().
				Str("file", path).
				Str("dataset", id).
				Int("added", st.Added).
				Int("updated", st.Updated).
				Msg("import ok")
		}(path)
	}

	wg.Wait()
	log.Info().Msg("import completed")
}

// datasetID reuses the dataset whose name matches the file, or mints a fresh
// UUID for a new one.
func datasetID(ctx context.Context, repo domain.DatasetRepository, name string) (string, error) {
	d, err := repo.FindByName(ctx, name)
	if err == nil {
		return d.ID, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return uuid.NewString(), nil
	}
	return "", err
}
