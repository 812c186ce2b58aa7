package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/counselgate/counselgate/internal/intake"
	"github.com/counselgate/counselgate/internal/pipeline"
	"github.com/counselgate/counselgate/internal/storage"
)

const maxBodySize = 1 << 20 // 1MB

// AppDeps holds the handler dependencies.
type AppDeps struct {
	Store        storage.Store
	Orchestrator *pipeline.Orchestrator
	Intake       *intake.Service
	Token        string // optional; empty disables bearer auth
	Logger       *slog.Logger
}

// NewAppHandler builds the HTTP API.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/api/health", handleHealth())

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/api/conversation", handleConversationTurn(deps))
		r.Get("/api/conversation/{requestId}", handleGetConversation(deps))
		r.Post("/api/triage", handleTriage(deps))
		r.Post("/api/analyze-confidence", handleAnalyzeConfidence(deps))

		r.Post("/api/requests", handleCreateRequest(deps))
		r.Get("/api/requests", handleListRequests(deps))
		r.Get("/api/requests/{id}", handleGetRequest(deps))
		r.Post("/api/requests/{id}/accept", handleAcceptRequest(deps))
		r.Post("/api/requests/{id}/decline", handleDeclineRequest(deps))
		r.Post("/api/requests/{id}/reassign", handleReassignRequest(deps))
		r.Post("/api/requests/{id}/request-info", handleRequestInfo(deps))

		r.Get("/api/knowledge", handleListArticles(deps))
		r.Post("/api/knowledge", handleCreateArticle(deps))
		r.Get("/api/knowledge/{slug}", handleGetArticle(deps))
		r.Put("/api/knowledge/{id}", handleUpdateArticle(deps))
		r.Delete("/api/knowledge/{id}", handleDeleteArticle(deps))
		r.Post("/api/knowledge/{id}/feedback", handleArticleFeedback(deps))

		r.Get("/api/attorneys", handleListAttorneys(deps))
		r.Get("/api/attorneys/{id}", handleGetAttorney(deps))
	})

	return r
}

var startedAt = time.Now()

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(startedAt).Seconds(),
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}
