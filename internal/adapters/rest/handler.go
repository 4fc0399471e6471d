// Package rest is the HTTP interface of the service.
package rest

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ewilliams-labs/moodlens/internal/core/ports"
	"github.com/ewilliams-labs/moodlens/internal/core/services"
	"github.com/ewilliams-labs/moodlens/internal/metrics"
	"github.com/ewilliams-labs/moodlens/internal/profiling"
)

// CredentialSink receives updated credentials from the settings endpoint.
// The recommendation client implements it.
type CredentialSink interface {
	SetCredentials(ports.Credentials)
	Authenticate(ctx context.Context) error
}

// Handler manages the HTTP interface for the application.
type Handler struct {
	svc      *services.Orchestrator
	store    ports.CredentialStore
	sink     CredentialSink
	profiler *profiling.Profiler
	logger   *log.Logger
	router   chi.Router
}

// NewHandler initializes the HTTP adapter and sets up routes. The profiler is
// composed around handlers here, at construction time.
func NewHandler(svc *services.Orchestrator, store ports.CredentialStore, sink CredentialSink, profiler *profiling.Profiler, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{
		svc:      svc,
		store:    store,
		sink:     sink,
		profiler: profiler,
		logger:   logger.With("component", "rest"),
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Method(http.MethodPost, "/detect_emotion",
		h.profiler.Wrap("detect_emotion",
			metrics.HTTPMiddleware("detect_emotion")(http.HandlerFunc(h.DetectEmotion))))

	r.Get("/settings", h.GetSettings)
	r.Method(http.MethodPost, "/settings",
		metrics.HTTPMiddleware("settings")(http.HandlerFunc(h.UpdateSettings)))

	r.Get("/profiling", h.GetProfiling)
	r.Post("/profiling", h.ToggleProfiling)

	h.router = r
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
