package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("latitude is required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("normalize: %w", NewValidationError("bad")), http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("debug key required"), http.StatusUnauthorized},
		{"not found", NewNotFoundError("drug not found"), http.StatusNotFound},
		{"authentication", NewAuthenticationError("token exchange failed", nil), http.StatusInternalServerError},
		{"upstream api", NewUpstreamAPIError("prices", 502, "bad gateway"), http.StatusInternalServerError},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsUpstream(t *testing.T) {
	assert.True(t, IsUpstream(NewUpstreamAPIError("search", 500, "")))
	assert.True(t, IsUpstream(NewUpstreamUnavailableError("search", fmt.Errorf("timeout"))))
	assert.True(t, IsUpstream(fmt.Errorf("wrap: %w", NewAuthenticationError("x", nil))))
	assert.False(t, IsUpstream(NewValidationError("x")))
	assert.False(t, IsUpstream(nil))
}

func TestUpstreamAPIError_CarriesStatusAndBody(t *testing.T) {
	err := NewUpstreamAPIError("drug details", 503, `{"message":"maintenance"}`)

	assert.Equal(t, 503, err.StatusCode)
	assert.Equal(t, `{"message":"maintenance"}`, err.Body)
	assert.Contains(t, err.Error(), "status 503")
}

func TestPublicMessage_HidesInternalDetails(t *testing.T) {
	assert.Equal(t, "internal server error", PublicMessage(NewInternalError("db password wrong", nil)))
	assert.Equal(t, "internal server error", PublicMessage(fmt.Errorf("raw")))
	assert.Equal(t, "prefix must be at least 3 characters", PublicMessage(NewValidationError("prefix must be at least 3 characters")))
}
