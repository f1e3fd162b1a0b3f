package rest

import (
	"net/http"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// AnalyzeGenre handles GET /api/genres/analyze/{genre}
func (h *Handler) AnalyzeGenre(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.svc.AnalyzeGenre(r.Context(), r.PathValue("genre"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, metrics)
}

// AnalyzeGenres handles GET /api/genres/analyze/multiple?genres=a,b
func (h *Handler) AnalyzeGenres(w http.ResponseWriter, r *http.Request) {
	batch, err := h.svc.AnalyzeGenres(r.Context(), splitList(r.URL.Query().Get("genres")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, batch)
}

// CompareGenres handles GET /api/genres/compare?genre1=&genre2=
func (h *Handler) CompareGenres(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	first, second := q.Get("genre1"), q.Get("genre2")
	if first == "" || second == "" {
		writeValidationError(w, "genre1 and genre2 are required")
		return
	}
	batch, err := h.svc.CompareGenres(r.Context(), first, second)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, batch)
}

// FindUnderground handles GET /api/genres/underground
func (h *Handler) FindUnderground(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.FindUnderground(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, report)
}

// Trending handles GET /api/genres/trending
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Trending(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, report)
}

type genreHistoryResponse struct {
	Genre     string                 `json:"genre"`
	Snapshots []domain.GenreSnapshot `json:"snapshots"`
}

// GenreHistory handles GET /api/genres/history/{genre}?limit=
func (h *Handler) GenreHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	genre := r.PathValue("genre")
	snaps, err := h.svc.GenreHistory(r.Context(), genre, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, genreHistoryResponse{Genre: genre, Snapshots: snaps})
}
