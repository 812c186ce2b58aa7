package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/counselgate/counselgate/internal/intake"
	"github.com/counselgate/counselgate/internal/storage"
)

// requestView is a request with its assigned attorney resolved.
type requestView struct {
	storage.LegalRequest
	Attorney *storage.Attorney `json:"attorney,omitempty"`
}

func withAttorney(store storage.Store, r storage.LegalRequest) requestView {
	view := requestView{LegalRequest: r}
	if r.AssignedAttorneyID != "" {
		if attorney, err := store.GetAttorney(r.AssignedAttorneyID); err == nil {
			view.Attorney = &attorney
		}
	}
	return view
}

func handleCreateRequest(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub intake.Submission
		if !decodeBody(w, r, &sub) {
			return
		}

		request, attorney, err := deps.Intake.CreateRequest(r.Context(), sub)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request data: %v", err)
			return
		}

		writeJSON(w, http.StatusCreated, requestView{LegalRequest: request, Attorney: attorney})
	}
}

func handleListRequests(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := deps.Store.ListRequests()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch requests")
			return
		}

		views := make([]requestView, 0, len(requests))
		for _, req := range requests {
			views = append(views, withAttorney(deps.Store, req))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleGetRequest(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, err := deps.Store.GetRequest(chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "request not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch request")
			return
		}
		writeJSON(w, http.StatusOK, withAttorney(deps.Store, request))
	}
}

func handleAcceptRequest(deps AppDeps) http.HandlerFunc {
	return updateRequestStatus(deps, func(request *storage.LegalRequest, _ map[string]any) error {
		request.Status = storage.StatusAccepted
		return nil
	})
}

func handleDeclineRequest(deps AppDeps) http.HandlerFunc {
	return updateRequestStatus(deps, func(request *storage.LegalRequest, body map[string]any) error {
		request.Status = storage.StatusDeclined
		reason, _ := body["reason"].(string)
		if reason == "" {
			reason = "No reason provided"
		}
		if request.Metadata == nil {
			request.Metadata = map[string]any{}
		}
		request.Metadata["declineReason"] = reason
		return nil
	})
}

// updateRequestStatus loads, mutates, and saves one request.
func updateRequestStatus(deps AppDeps, mutate func(*storage.LegalRequest, map[string]any) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, err := deps.Store.GetRequest(chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "request not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch request")
			return
		}

		body := map[string]any{}
		if r.Body != nil && r.ContentLength != 0 {
			if !decodeBody(w, r, &body) {
				return
			}
		}

		if err := mutate(&request, body); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		if err := deps.Store.UpdateRequest(request); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to update request")
			return
		}
		writeJSON(w, http.StatusOK, withAttorney(deps.Store, request))
	}
}

type reassignRequest struct {
	AttorneyID string `json:"attorneyId"`
	Notes      string `json:"notes"`
}

func handleReassignRequest(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body reassignRequest
		if !decodeBody(w, r, &body) {
			return
		}
		if body.AttorneyID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "attorneyId is required")
			return
		}

		request, err := deps.Store.GetRequest(chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "request not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch request")
			return
		}

		attorney, err := deps.Store.GetAttorney(body.AttorneyID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "attorney not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch attorney")
			return
		}

		if request.Metadata == nil {
			request.Metadata = map[string]any{}
		}
		history, _ := request.Metadata["reassignmentHistory"].([]any)
		entry := map[string]any{
			"from":      request.AssignedAttorneyID,
			"to":        body.AttorneyID,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if body.Notes != "" {
			entry["notes"] = body.Notes
		}
		request.Metadata["reassignmentHistory"] = append(history, entry)
		request.AssignedAttorneyID = body.AttorneyID

		if err := deps.Store.UpdateRequest(request); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to update request")
			return
		}
		writeJSON(w, http.StatusOK, requestView{LegalRequest: request, Attorney: &attorney})
	}
}

type requestInfoBody struct {
	Message       string `json:"message"`
	MarkAsWaiting bool   `json:"markAsWaiting"`
}

func handleRequestInfo(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body requestInfoBody
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Message == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}

		request, err := deps.Store.GetRequest(chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "request not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch request")
			return
		}

		previousStatus := request.Status
		message := storage.ConversationMessage{
			ID:        uuid.NewString(),
			RequestID: request.ID,
			Role:      "assistant",
			Content:   body.Message,
			Metadata: map[string]any{
				"type":           "info_request",
				"previousStatus": previousStatus,
			},
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.CreateMessage(message); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to record message")
			return
		}

		if body.MarkAsWaiting {
			if request.Metadata == nil {
				request.Metadata = map[string]any{}
			}
			request.Status = storage.StatusAwaitingInfo
			request.Metadata["previousStatus"] = previousStatus
			request.Metadata["infoRequestedAt"] = time.Now().UTC().Format(time.RFC3339)
			if err := deps.Store.UpdateRequest(request); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to update request")
				return
			}
		}

		writeJSON(w, http.StatusOK, withAttorney(deps.Store, request))
	}
}
