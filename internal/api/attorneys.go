package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/counselgate/counselgate/internal/storage"
)

func handleListAttorneys(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			attorneys []storage.Attorney
			err       error
		)
		if r.URL.Query().Get("available") == "true" {
			attorneys, err = deps.Store.ListAvailableAttorneys()
		} else {
			attorneys, err = deps.Store.ListAttorneys()
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch attorneys")
			return
		}
		if attorneys == nil {
			attorneys = []storage.Attorney{}
		}
		writeJSON(w, http.StatusOK, attorneys)
	}
}

func handleGetAttorney(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attorney, err := deps.Store.GetAttorney(chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "attorney not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch attorney")
			return
		}
		writeJSON(w, http.StatusOK, attorney)
	}
}
