package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/zatekoja/rxpricediscovery/backend/internal/application/services"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
)

// HeaderDebugKey carries the key guarding the token diagnostics routes
const HeaderDebugKey = "X-API-Debug-Key"

// AuthHandler exposes upstream token diagnostics
type AuthHandler struct {
	service  *services.DrugPricingService
	debugKey string
}

// NewAuthHandler creates a new auth handler. An empty debugKey disables both routes.
func NewAuthHandler(service *services.DrugPricingService, debugKey string) *AuthHandler {
	return &AuthHandler{service: service, debugKey: debugKey}
}

// Status handles GET /api/auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondWithJSON(w, http.StatusOK, h.service.TokenStatus())
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.service.RefreshToken(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	observability.LoggerFromContext(r.Context()).Info().
		Int64("remaining_seconds", status.RemainingSeconds).
		Msg("pricing api token refreshed on request")
	respondWithJSON(w, http.StatusOK, status)
}

func (h *AuthHandler) authorized(r *http.Request) bool {
	if h.debugKey == "" {
		return false
	}
	got := r.Header.Get(HeaderDebugKey)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.debugKey)) == 1
}
