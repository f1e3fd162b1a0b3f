package rest

import (
	"net/http"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/services"
)

// SearchArtist handles GET /api/artists/search?name=
func (h *Handler) SearchArtist(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeValidationError(w, "name is required")
		return
	}
	stub, err := h.svc.SearchArtist(r.Context(), name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, stub)
}

// AnalyzeArtist handles GET /api/artists/analyze/{name}
func (h *Handler) AnalyzeArtist(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.AnalyzeArtist(r.Context(), r.PathValue("name"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, profile)
}

// CompareArtists handles GET /api/artists/compare?artists=a,b
func (h *Handler) CompareArtists(w http.ResponseWriter, r *http.Request) {
	batch, err := h.svc.CompareArtists(r.Context(), splitList(r.URL.Query().Get("artists")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, batch)
}

// CompareBreakbeat handles GET /api/artists/compare/breakbeat
func (h *Handler) CompareBreakbeat(w http.ResponseWriter, r *http.Request) {
	batch, err := h.svc.ComparePreset(r.Context(), services.PresetBreakbeat)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, batch)
}

// ArtistVersus handles GET /api/artists/vs?artist1=&artist2=
func (h *Handler) ArtistVersus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	first, second := q.Get("artist1"), q.Get("artist2")
	if first == "" || second == "" {
		writeValidationError(w, "artist1 and artist2 are required")
		return
	}
	report, err := h.svc.ArtistVersus(r.Context(), first, second)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, report)
}

// UndergroundVersusMainstream handles GET /api/artists/underground/comparison
func (h *Handler) UndergroundVersusMainstream(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.UndergroundVersusMainstream(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, report)
}

type artistHistoryResponse struct {
	Artist    domain.ArtistIdentity   `json:"artist"`
	Snapshots []domain.ArtistSnapshot `json:"snapshots"`
}

// ArtistHistory handles GET /api/artists/history/{id}?limit=
func (h *Handler) ArtistHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	artist, snaps, err := h.svc.ArtistHistory(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, artistHistoryResponse{Artist: artist, Snapshots: snaps})
}
