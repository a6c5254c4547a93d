package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tourspots/explorer/internal/destination"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	provider DestinationProvider
	log      *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(provider DestinationProvider, log *slog.Logger) *Handlers {
	return &Handlers{provider: provider, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListDestinations handles GET /api/v1/destinations.
// Remote enrichment failures degrade to the plain catalog, never a 5xx.
func (h *Handlers) ListDestinations(w http.ResponseWriter, r *http.Request) {
	dests, err := h.provider.GetDestinations(r.Context())
	if err != nil {
		h.log.Error("listing destinations failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dests)
}

// SearchDestinations handles GET /api/v1/destinations/search?q=&region=.
// A missing region means no region filter.
func (h *Handlers) SearchDestinations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	region := r.URL.Query().Get("region")
	if region == "" {
		region = "all"
	}

	dests, err := h.provider.SearchDestinations(r.Context(), query, region)
	if err != nil {
		h.log.Error("search failed", "query", query, "region", region, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dests)
}

// GetDestinationDetails handles GET /api/v1/destinations/{id}.
// Unknown ids are a 404; absent weather or rates are not an error.
func (h *Handlers) GetDestinationDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "destination id must be an integer"})
		return
	}

	details, err := h.provider.GetDestinationDetails(r.Context(), id)
	if err != nil {
		var nf *destination.NotFoundError
		if errors.As(err, &nf) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
			return
		}
		h.log.Error("destination details failed", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// Pinger reports backend connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that pings the named
// backends. Nil pingers (unconfigured backends) are skipped. Returns 200
// when everything configured is reachable, 503 otherwise.
func HealthHandlerFunc(log *slog.Logger, backends map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}

		for name, p := range backends {
			if p == nil {
				body[name] = "not configured"
				continue
			}
			if err := p.Ping(ctx); err != nil {
				log.Error("health check: backend ping failed", "backend", name, "err", err)
				body[name] = "error"
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			body[name] = "ok"
		}

		writeJSON(w, status, body)
	}
}
