package handlers

import (
	"net/http"

	"github.com/zatekoja/rxpricediscovery/backend/internal/application/services"
)

// PharmacyHandler handles the pharmacy locator
type PharmacyHandler struct {
	service *services.DrugPricingService
}

// NewPharmacyHandler creates a new pharmacy handler
func NewPharmacyHandler(service *services.DrugPricingService) *PharmacyHandler {
	return &PharmacyHandler{service: service}
}

// ListPharmacies handles GET /api/pharmacies?zipCode=|latitude=&longitude=&count=
func (h *PharmacyHandler) ListPharmacies(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Pharmacies(r.Context(), services.RawParamsFromQuery(r.URL.Query()))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	markDataSource(w, result.DataSource)
	respondWithJSON(w, http.StatusOK, result.Pharmacies)
}
