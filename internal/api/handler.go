// Package api implements the HTTP surface: a single generate endpoint plus
// health and metrics. Every failure is terminal for its request only; the
// process stays ready for the next query.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/queryforge/queryforge/internal/cache"
	"github.com/queryforge/queryforge/internal/observability"
	"github.com/queryforge/queryforge/internal/orchestrator"
	qferrors "github.com/queryforge/queryforge/pkg/errors"
)

// Resolver answers a single query against a cache strategy.
type Resolver interface {
	Resolve(ctx context.Context, query string, strat cache.Strategy) (*orchestrator.Result, error)
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the query resolution API.
type Handler struct {
	resolver Resolver
	pinger   Pinger
	logger   *slog.Logger
}

// NewHandler creates a new API handler. pinger may be nil.
func NewHandler(resolver Resolver, pinger Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		resolver: resolver,
		pinger:   pinger,
		logger:   logger,
	}
}

// generateRequest is the wire form of a resolution request.
type generateRequest struct {
	Query     string   `json:"query"`
	Strategy  string   `json:"strategy,omitempty"`  // "exact" (default) or "semantic"
	Threshold *float64 `json:"threshold,omitempty"` // semantic only, [0, 1]
}

// generateResponse is the wire form of a successful resolution.
type generateResponse struct {
	GeneratedSQL string  `json:"generated_sql"`
	Source       string  `json:"source"`
	ElapsedMS    float64 `json:"elapsed_ms"`
	CachedPrompt string  `json:"cached_prompt,omitempty"`
	Distance     float64 `json:"distance,omitempty"`
}

// errorResponse is the wire form of a failure.
type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// HandleGenerate serves POST /v1/sql.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, qferrors.TypeInvalidRequest, "Error: method not allowed")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, qferrors.TypeInvalidRequest, "Error: invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, qferrors.TypeInvalidRequest, "Error: query is required")
		return
	}

	strat, err := cache.ParseStrategy(req.Strategy, req.Threshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, qferrors.TypeInvalidRequest, "Error: "+err.Error())
		return
	}

	result, err := h.resolver.Resolve(r.Context(), req.Query, strat)
	if err != nil {
		h.writeResolveError(w, r.Context(), err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		GeneratedSQL: result.SQL,
		Source:       string(result.Source),
		ElapsedMS:    float64(result.Elapsed.Microseconds()) / 1000,
		CachedPrompt: result.CachedPrompt,
		Distance:     result.Distance,
	})
}

// writeResolveError renders the taxonomy: generation failures carry the
// validation detail verbatim, everything else gets a generic message.
func (h *Handler) writeResolveError(w http.ResponseWriter, ctx context.Context, err error) {
	qe := qferrors.AsQueryError(err)

	h.logger.Error("resolve failed",
		"type", qe.Type,
		"error", err,
		"request_id", observability.RequestIDFromContext(ctx),
	)

	var message string
	if qferrors.IsGenerationError(err) {
		message = "Unable to produce an answer due to: " + qe.Message
	} else {
		message = "Error: " + qe.Message
	}

	writeError(w, qe.HTTPStatusCode(), qe.Type, message)
}

// HandleHealthz serves GET /healthz, pinging the configured backends.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, errorResponse{Error: message, Type: errType})
}
