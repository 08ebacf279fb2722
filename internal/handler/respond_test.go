package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/apperr"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.Validation, http.StatusBadRequest},
		{apperr.NotFound, http.StatusNotFound},
		{apperr.Forbidden, http.StatusForbidden},
		{apperr.Unauthorized, http.StatusUnauthorized},
		{apperr.Conflict, http.StatusConflict},
		{apperr.IntegrityViolation, http.StatusConflict},
		{apperr.Timeout, http.StatusGatewayTimeout},
		{apperr.Internal, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		if got := httpStatus(tc.kind); got != tc.want {
			t.Fatalf("httpStatus(%v) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func newErrorContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/tasks/1", nil)
	return c, w
}

func TestRespondError_ClassifiedError(t *testing.T) {
	c, w := newErrorContext(t)

	respondError(c, zap.NewNop(), apperr.New(apperr.Validation, "uniqueness violation").
		WithDetails("name taken"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Error != "uniqueness violation" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
	if len(body.Details) != 1 || body.Details[0] != "name taken" {
		t.Fatalf("details lost: %v", body.Details)
	}
}

func TestRespondError_HidesInternals(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unclassified", errors.New("connection refused to 10.0.0.3:5432")},
		{"internal kind", apperr.Wrap(apperr.Internal, "store operation failed", errors.New("boom"))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newErrorContext(t)
			respondError(c, zap.NewNop(), tc.err)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", w.Code)
			}

			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("bad body: %v", err)
			}
			if body.Error != "internal error" {
				t.Fatalf("internal detail leaked: %q", body.Error)
			}
		})
	}
}
