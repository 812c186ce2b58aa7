package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/counselgate/counselgate/internal/storage"
)

type conversationTurnRequest struct {
	RequestID string `json:"requestId"`
	Content   string `json:"content"`
}

func handleConversationTurn(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req conversationTurnRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.RequestID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "requestId is required")
			return
		}
		if req.Content == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
			return
		}

		result, err := deps.Orchestrator.RunConversationTurn(r.Context(), req.RequestID, req.Content)
		if err != nil {
			deps.Logger.Error("conversation turn failed", "requestId", req.RequestID, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to process conversation")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func handleGetConversation(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := deps.Store.GetMessages(chi.URLParam(r, "requestId"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch conversation")
			return
		}
		if messages == nil {
			messages = []storage.ConversationMessage{}
		}
		writeJSON(w, http.StatusOK, messages)
	}
}

type triageRequest struct {
	RequestID string `json:"requestId"`
}

func handleTriage(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req triageRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.RequestID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "requestId is required")
			return
		}

		assessment, err := deps.Orchestrator.RunFullTriage(r.Context(), req.RequestID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "conversation not found")
				return
			}
			deps.Logger.Error("triage failed", "requestId", req.RequestID, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to perform triage")
			return
		}

		writeJSON(w, http.StatusOK, assessment)
	}
}

type analyzeConfidenceRequest struct {
	Input string `json:"input"`
}

func handleAnalyzeConfidence(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeConfidenceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Input == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "input is required")
			return
		}

		writeJSON(w, http.StatusOK, deps.Intake.AnalyzeConfidence(r.Context(), req.Input))
	}
}
