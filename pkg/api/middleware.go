package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ssargent/tablestore/pkg/table"
)

// apiKeyMiddleware validates the X-API-Key header
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if apiKey != expectedKey {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusOK, data)
}

// sendCreated answers a successful insert.
func sendCreated(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusCreated, data)
}

func sendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := APIResponse{
		Success: false,
		Error:   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}

// sendTableError maps a table error kind to its HTTP status.
func sendTableError(w http.ResponseWriter, err error) {
	sendError(w, err.Error(), statusFor(err))
}

// sendWriteError is sendTableError for insert and update. A schema mismatch
// there comes from the request body, not from stored data.
func sendWriteError(w http.ResponseWriter, err error) {
	sendError(w, err.Error(), writeStatusFor(err))
}

func writeStatusFor(err error) int {
	if errors.Is(err, table.ErrSchemaMismatch) {
		return http.StatusBadRequest
	}
	return statusFor(err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, table.ErrKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, table.ErrInvalidQuery),
		errors.Is(err, table.ErrWrongType),
		errors.Is(err, table.ErrFieldNotMatched):
		return http.StatusBadRequest
	case errors.Is(err, table.ErrBackendFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
