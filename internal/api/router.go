package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Rate limiting is applied globally: 60 requests per minute per IP.
// The search route must be registered before the {id} route so "search"
// is not parsed as an id.
func NewRouter(handlers *Handlers, log *slog.Logger, backends map[string]Pinger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(log, backends))

	r.Get("/api/v1/destinations", handlers.ListDestinations)
	r.Get("/api/v1/destinations/search", handlers.SearchDestinations)
	r.Get("/api/v1/destinations/{id}", handlers.GetDestinationDetails)

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
