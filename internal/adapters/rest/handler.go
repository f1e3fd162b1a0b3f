package rest

import (
	"log/slog"
	"net/http"

	"github.com/ewilliams-labs/soundmetrics/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.Orchestrator // Dependency on the Core Service
	router *http.ServeMux         // Standard library router
	logger *slog.Logger
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Orchestrator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		svc:    svc,
		router: http.NewServeMux(),
		logger: logger,
	}

	// Register Routes
	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
// It acts as a proxy, passing the request to our internal router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.withRequestLog(h.router).ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /{$}", h.Index)
	h.router.HandleFunc("GET /health", h.HealthCheck)

	// Genres
	h.router.HandleFunc("GET /api/genres/analyze/multiple", h.AnalyzeGenres)
	h.router.HandleFunc("GET /api/genres/analyze/{genre}", h.AnalyzeGenre)
	h.router.HandleFunc("GET /api/genres/compare", h.CompareGenres)
	h.router.HandleFunc("GET /api/genres/underground", h.FindUnderground)
	h.router.HandleFunc("GET /api/genres/trending", h.Trending)
	h.router.HandleFunc("GET /api/genres/history/{genre}", h.GenreHistory)

	// Artists
	h.router.HandleFunc("GET /api/artists/search", h.SearchArtist)
	h.router.HandleFunc("GET /api/artists/analyze/{name}", h.AnalyzeArtist)
	h.router.HandleFunc("GET /api/artists/compare", h.CompareArtists)
	h.router.HandleFunc("GET /api/artists/compare/breakbeat", h.CompareBreakbeat)
	h.router.HandleFunc("GET /api/artists/vs", h.ArtistVersus)
	h.router.HandleFunc("GET /api/artists/underground/comparison", h.UndergroundVersusMainstream)
	h.router.HandleFunc("GET /api/artists/history/{id}", h.ArtistHistory)
}

type serviceInfo struct {
	Service   string   `json:"service"`
	Endpoints []string `json:"endpoints"`
}

// Index lists the available endpoints.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, serviceInfo{
		Service: "soundmetrics",
		Endpoints: []string{
			"/health",
			"/api/genres/analyze/{genre}",
			"/api/genres/analyze/multiple?genres=a,b",
			"/api/genres/compare?genre1=&genre2=",
			"/api/genres/underground",
			"/api/genres/trending",
			"/api/genres/history/{genre}",
			"/api/artists/search?name=",
			"/api/artists/analyze/{name}",
			"/api/artists/compare?artists=a,b",
			"/api/artists/compare/breakbeat",
			"/api/artists/vs?artist1=&artist2=",
			"/api/artists/underground/comparison",
			"/api/artists/history/{id}",
		},
	})
}

// HealthCheck reports database and catalog connectivity. A degraded
// service answers 503 so load balancers can react.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := h.svc.Health(r.Context())
	status := http.StatusOK
	if report.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, envelope{Status: statusSuccess, Data: report})
}
