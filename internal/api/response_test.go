package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"habitpact/internal/service"
)

func performWithError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, err)
	return w
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrNotFound, http.StatusNotFound, "not_found"},
		{service.ErrAlreadyMarked, http.StatusConflict, "already_marked"},
		{service.ErrAlreadyConfirmed, http.StatusConflict, "already_confirmed"},
		{service.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
		{service.ErrNameRequired, http.StatusBadRequest, "name_required"},
		{service.ErrNoPartner, http.StatusForbidden, "partner_required"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{fmt.Errorf("wrapped: %w", service.ErrAlreadyMarked), http.StatusConflict, "already_marked"},
		{fmt.Errorf("db exploded"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := performWithError(tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

func TestRespondError_NeverLeaksInternals(t *testing.T) {
	w := performWithError(fmt.Errorf("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
