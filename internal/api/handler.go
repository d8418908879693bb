// Package api exposes the query engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"propel-insights/internal/domain"
	"propel-insights/internal/middleware"
	"propel-insights/internal/service/ask"
)

// AskService answers questions and serves the schema listing.
type AskService interface {
	Ask(ctx context.Context, tenant *domain.Tenant, prompt string) (*ask.Response, error)
	Schema() map[string][]ask.SchemaField
}

// Handler holds the HTTP handlers for the query API.
type Handler struct {
	ask    AskService
	logger *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(askSvc AskService, logger *slog.Logger) *Handler {
	return &Handler{ask: askSvc, logger: logger}
}

// RouterConfig carries the middleware settings for NewRouter.
type RouterConfig struct {
	Auth               *middleware.Authenticator
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

// NewRouter assembles the chi router: request IDs and rate limiting on
// everything, tenant auth on the query endpoints, health check open.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(cfg.Auth.Middleware())
		r.Post("/v1/query", h.Query)
		r.Get("/v1/schema", h.Schema)
	})

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type queryRequest struct {
	Prompt string `json:"prompt"`
}

// Query answers one natural-language question for the authenticated tenant.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	tenant, ok := domain.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant resolved for request")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON with a prompt field")
		return
	}

	resp, err := h.ask.Ask(r.Context(), tenant, req.Prompt)
	if err != nil {
		writeError(w, httpStatusFromDomainError(err), err.Error())
		return
	}

	// User mistakes keep the 200-shaped payload; only genuine backend
	// faults surface a failure status, with the same body shape.
	status := http.StatusOK
	if resp.Failed {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

// Schema returns the tenant-visible field catalog grouped by dataset.
func (h *Handler) Schema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"datasets": h.ask.Schema(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"code":    status,
		"message": message,
	})
}
