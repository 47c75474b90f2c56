package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_radar/internal/app"
)

// maxImportBody caps uploaded exports; files are processed whole in memory.
const maxImportBody = 32 << 20 // 32 MiB

type Handlers struct {
	Q   *app.QueryService
	Imp *app.ImportService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/datasets", h.listDatasets)
	s.mux.Post("/v1/datasets/{id}/import", h.importCSV)
	s.mux.Get("/v1/datasets/{id}/reviews", h.listReviews)
	s.mux.Get("/v1/datasets/{id}/compare", h.compare)
	s.mux.Get("/v1/datasets/{id}/analysis", h.analysis)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCachedJSON handles the ETag/If-None-Match dance shared by read
// endpoints.
func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) listDatasets(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Datasets(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal", "listing datasets failed")
		return
	}
	writeCachedJSON(w, r, out)
}

func (h *Handlers) importCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := r.URL.Query().Get("name")
	if name == "" {
		name = id
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "could not read request body")
		return
	}
	if len(body) == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "empty CSV upload")
		return
	}

	st, err := h.Imp.ImportCSV(r.Context(), id, name, string(body))
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Import failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(st); err != nil {
		log.Error().Err(err).Msg("failed to write import stats")
	}
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	window := r.URL.Query().Get("window")
	if window == "" {
		window = "all"
	}

	out, err := h.Q.Reviews(r.Context(), id, window, time.Now())
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "dataset not found")
		return
	}
	type reviewView struct {
		Author  string `json:"author"`
		Date    string `json:"date"`
		Content string `json:"content"`
		Rating  int    `json:"rating"`
		Source  string `json:"source"`
	}
	views := make([]reviewView, 0, len(out))
	for _, rv := range out {
		views = append(views, reviewView(rv))
	}
	writeCachedJSON(w, r, views)
}

func (h *Handlers) compare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	start, err1 := strconv.ParseFloat(r.URL.Query().Get("start"), 64)
	end, err2 := strconv.ParseFloat(r.URL.Query().Get("end"), 64)
	if err1 != nil || err2 != nil || start <= end || start < 0 || end < 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid range", "start and end must be month counts with start > end >= 0")
		return
	}

	out, err := h.Q.Compare(r.Context(), id, start, end, time.Now())
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "dataset not found")
		return
	}
	writeCachedJSON(w, r, out)
}

func (h *Handlers) analysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	window := r.URL.Query().Get("window")
	if window == "" {
		window = "all"
	}
	batch := r.URL.Query().Get("scope") == "batch"

	out, err := h.Q.Analysis(r.Context(), id, window, batch, time.Now())
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Analysis failed", err.Error())
		return
	}
	writeCachedJSON(w, r, out)
}
