package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/rxpricediscovery/backend/internal/api/handlers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/application/services"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/rxpricediscovery/backend/pkg/errors"
)

func (f *handlerFixture) doWithKey(method, target, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if key != "" {
		req.Header.Set(handlers.HeaderDebugKey, key)
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_RequiresDebugKey(t *testing.T) {
	f := newHandlerFixture(t, services.StrategyLiveWithFallback)

	for _, key := range []string{"", "wrong"} {
		w := f.doWithKey(http.MethodGet, "/api/auth/status", key)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = f.doWithKey(http.MethodPost, "/api/auth/refresh", key)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAuthHandler_Status(t *testing.T) {
	f := newHandlerFixture(t, services.StrategyLiveWithFallback)
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.tokens.On("Status").Return(entities.TokenStatus{
		HasToken: true, Valid: true, TokenType: "Bearer", ExpiresAt: &expires, RemainingSeconds: 1800,
	}).Once()

	w := f.doWithKey(http.MethodGet, "/api/auth/status", "debug-secret")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, float64(1800), body["remainingSeconds"])
	assert.Equal(t, "2026-01-01T12:00:00Z", body["expiresAt"])
}

func TestAuthHandler_Refresh(t *testing.T) {
	f := newHandlerFixture(t, services.StrategyLiveWithFallback)
	f.tokens.On("ForceRefresh", mock.Anything).Return("token-2", nil).Once()
	f.tokens.On("Status").Return(entities.TokenStatus{HasToken: true, Valid: true, RemainingSeconds: 3600}).Once()

	w := f.doWithKey(http.MethodPost, "/api/auth/refresh", "debug-secret")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "token-2")
}

func TestAuthHandler_RefreshFailure(t *testing.T) {
	f := newHandlerFixture(t, services.StrategyLiveWithFallback)
	f.tokens.On("ForceRefresh", mock.Anything).
		Return("", apperrors.NewAuthenticationError("token exchange rejected", nil)).Once()
	f.tokens.On("Status").Return(entities.TokenStatus{}).Once()

	w := f.doWithKey(http.MethodPost, "/api/auth/refresh", "debug-secret")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "token exchange rejected", decodeError(t, w))
}

func TestAuthHandler_DisabledWithoutConfiguredKey(t *testing.T) {
	auth := handlers.NewAuthHandler(nil, "")
	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.Header.Set(handlers.HeaderDebugKey, "")
	w := httptest.NewRecorder()

	auth.Status(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
