package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	srverrors "github.com/serenolabs/sereno/internal/server/errors"
	"github.com/serenolabs/sereno/internal/server/logger"
)

// errorResponse is the structured body returned for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Get().Error("failed to encode response", zap.Error(err))
	}
}

// respondError translates an error through the domain taxonomy and writes
// the structured error body. Internal detail stays in the logs.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := srverrors.ToHTTPStatus(err)

	log := logger.WithContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	respondJSON(w, status, errorResponse{Error: message})
}

// decodeJSON decodes a JSON request body into dst with a size cap.
// Returns an invalid-input domain error on any decode failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return srverrors.NewInvalidInput(fmt.Sprintf("invalid request body: %v", err))
	}

	return nil
}
