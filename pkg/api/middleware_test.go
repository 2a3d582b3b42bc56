package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tablestore/pkg/table"
)

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantCode  int
		wantError string
	}{
		{"valid key", "test-key", http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Missing X-API-Key header"},
		{"wrong key", "wrong-key", http.StatusUnauthorized, "Invalid API key"},
		{"key differs only in case", "TEST-KEY", http.StatusUnauthorized, "Invalid API key"},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendSuccess(w, "through")
	})
	handler := apiKeyMiddleware("test-key")(next)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decodeEnvelope(t, w)
			assert.Equal(t, tt.wantError == "", resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestSendHelpers(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendSuccess(w, ContainsResponse{Key: "7", Contains: true})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"success":true,"data":{"key":"7","contains":true}}`, w.Body.String())
	})

	t.Run("created", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendCreated(w, map[string]string{"key": "1"})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeEnvelope(t, w).Success)
	})

	t.Run("table error", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendTableError(w, fmt.Errorf("lookup 9: %w", table.ErrKeyNotFound))

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeEnvelope(t, w)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "lookup 9")
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("remove 4: %w", table.ErrKeyNotFound), http.StatusNotFound},
		{table.ErrInvalidQuery, http.StatusBadRequest},
		{fmt.Errorf("gpa: %w", table.ErrWrongType), http.StatusBadRequest},
		{table.ErrFieldNotMatched, http.StatusBadRequest},
		{fmt.Errorf("%w: connection refused", table.ErrBackendFailure), http.StatusServiceUnavailable},
		{table.ErrSchemaMismatch, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWriteStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, writeStatusFor(fmt.Errorf("user: %w", table.ErrSchemaMismatch)))
	assert.Equal(t, http.StatusNotFound, writeStatusFor(table.ErrKeyNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, writeStatusFor(table.ErrBackendFailure))
	assert.Equal(t, http.StatusInternalServerError, statusFor(table.ErrSchemaMismatch), "stored rows that no longer fit stay a server error")
}
