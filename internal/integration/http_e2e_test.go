//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "review_radar/internal/adapters/http_server"
	redisad "review_radar/internal/adapters/redis"
	"review_radar/internal/app"
	"review_radar/internal/domain"
	mysqlrepo "review_radar/internal/storage/mysql"
)

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// fakeAnalyzer stands in for the hosted sentiment service.
type fakeAnalyzer struct{ lastCSV string }

func (a *fakeAnalyzer) Analyze(ctx context.Context, name, csvText string, batch bool) (domain.Sentiment, error) {
	a.lastCSV = csvText
	return domain.Sentiment{Positive: 2, Negative: 1}, nil
}

func TestHTTP_EndToEnd_ImportThenQuery(t *testing.T) {
	// Isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviews",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/reviews?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC", hostPort)

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	// Real redis adapter over miniredis
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	repo := mysqlrepo.New(db)
	an := &fakeAnalyzer{}
	q := app.NewQueryService(repo, cache, an, 10*time.Minute)
	imp := app.NewImportService(repo, cache)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: q, Imp: imp})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// 1) import an export with an alternate header convention
	csv := "Reviewer,Time,Comment,Rating\n" +
		"John,2 days ago,Great coffee,5\n" +
		"Ana,2 years ago,\"Was ok, back then\",3"
	res, err := http.Post(ts.URL+"/v1/datasets/ds1/import?name=cafe", "text/csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("POST import: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("import status %d", res.StatusCode)
	}
	var st domain.ImportStats
	if err := json.NewDecoder(res.Body).Decode(&st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.Added != 2 || st.Total != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	// 2) trailing-window query keeps only the recent review
	res2, err := http.Get(ts.URL + "/v1/datasets/ds1/reviews?window=1")
	if err != nil {
		t.Fatalf("GET reviews: %v", err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusOK {
		t.Fatalf("reviews status %d", res2.StatusCode)
	}
	var reviews []struct {
		Author string `json:"author"`
		Rating int    `json:"rating"`
	}
	if err := json.NewDecoder(res2.Body).Decode(&reviews); err != nil {
		t.Fatalf("decode reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Author != "John" || reviews[0].Rating != 5 {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}

	// 3) analysis receives only the filtered window
	res3, err := http.Get(ts.URL + "/v1/datasets/ds1/analysis?window=1&scope=single")
	if err != nil {
		t.Fatalf("GET analysis: %v", err)
	}
	defer res3.Body.Close()
	if res3.StatusCode != http.StatusOK {
		t.Fatalf("analysis status %d", res3.StatusCode)
	}
	var sent domain.Sentiment
	if err := json.NewDecoder(res3.Body).Decode(&sent); err != nil {
		t.Fatalf("decode sentiment: %v", err)
	}
	if sent.Positive != 2 {
		t.Fatalf("unexpected sentiment: %+v", sent)
	}
	if strings.Contains(an.lastCSV, "back then") {
		t.Fatalf("analysis saw out-of-window rows: %s", an.lastCSV)
	}
}
