// Package api exposes the lifecycle engine and the transfer and salvage
// workflows over HTTP. Authorization policy is the caller's concern; the
// API only carries the caller identity through to the engine.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ZetallicA/assetflow/pkg/assets"
	"github.com/ZetallicA/assetflow/pkg/lifecycle"
)

// extractActor extracts the caller identity from the request headers.
// Falls back to "system" when the web layer supplies none.
func extractActor(r *http.Request) string {
	if principal := r.Header.Get("X-User-Principal"); principal != "" {
		return principal
	}
	return "system"
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps expected workflow failures onto status codes;
// anything unrecognized is a fault.
func writeDomainError(w http.ResponseWriter, err error) {
	var transitionErr *lifecycle.TransitionError
	var validationErr *lifecycle.ValidationError
	var ineligibleErr *lifecycle.IneligibleError

	switch {
	case errors.Is(err, assets.ErrAssetNotFound),
		errors.Is(err, assets.ErrTransferNotFound),
		errors.Is(err, assets.ErrBatchNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, assets.ErrConflict),
		errors.Is(err, assets.ErrDuplicateBatchCode):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusBadRequest, transitionErr)
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &ineligibleErr):
		writeError(w, http.StatusConflict, ineligibleErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody decodes an optional JSON request body into dst. An empty body
// is not an error; handlers validate required fields themselves.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
