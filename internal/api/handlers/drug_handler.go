package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/rxpricediscovery/backend/internal/application/services"
	"github.com/zatekoja/rxpricediscovery/backend/pkg/config"
)

// DrugHandler handles drug search, monograph and pricing requests
type DrugHandler struct {
	service *services.DrugPricingService
}

// NewDrugHandler creates a new drug handler
func NewDrugHandler(service *services.DrugPricingService) *DrugHandler {
	return &DrugHandler{service: service}
}

// Search handles GET /api/drugs/search?q=...
func (h *DrugHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SearchDrugs(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	markDataSource(w, result.DataSource)
	respondWithJSON(w, http.StatusOK, result)
}

// SearchByPath handles GET /api/drugs/search/{query} and returns a bare array
func (h *DrugHandler) SearchByPath(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SearchDrugs(r.Context(), r.PathValue("query"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	markDataSource(w, result.DataSource)
	respondWithJSON(w, http.StatusOK, result.Results)
}

// SearchByPrefix handles GET /api/drugs/prefix/{prefix}?count=&hqAlias=
func (h *DrugHandler) SearchByPrefix(w http.ResponseWriter, r *http.Request) {
	count := 0
	if s := strings.TrimSpace(r.URL.Query().Get("count")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = n
	}

	result, err := h.service.SearchByPrefix(r.Context(), r.PathValue("prefix"), count, r.URL.Query().Get("hqAlias"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	markDataSource(w, result.DataSource)
	respondWithJSON(w, http.StatusOK, result)
}

// InfoByGSN handles GET /api/drugs/info/gsn?gsn=
func (h *DrugHandler) InfoByGSN(w http.ResponseWriter, r *http.Request) {
	gsn, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("gsn")))
	if err != nil || gsn <= 0 {
		respondWithError(w, http.StatusBadRequest, "gsn must be a positive integer")
		return
	}

	result, err := h.service.DrugInfoByGSN(r.Context(), gsn)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	markDataSource(w, result.DataSource)
	respondWithJSON(w, http.StatusOK, result)
}

// InfoByName handles GET /api/drugs/info/name?name=
func (h *DrugHandler) InfoByName(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.DrugInfoByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	markDataSource(w, result.DataSource)
	respondWithJSON(w, http.StatusOK, result)
}

// Prices handles POST /api/drugs/prices
func (h *DrugHandler) Prices(w http.ResponseWriter, r *http.Request) {
	h.prices(w, r, config.EndpointPrices)
}

// PricesByNDC handles POST /api/drugs/prices/ndc
func (h *DrugHandler) PricesByNDC(w http.ResponseWriter, r *http.Request) {
	h.prices(w, r, config.EndpointPricesNDC)
}

// GroupPrices handles POST /api/drugs/prices/group
func (h *DrugHandler) GroupPrices(w http.ResponseWriter, r *http.Request) {
	h.prices(w, r, config.EndpointGroupPrices)
}

func (h *DrugHandler) prices(w http.ResponseWriter, r *http.Request, endpoint string) {
	raw, err := requestParams(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.Prices(r.Context(), endpoint, raw)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	markDataSource(w, result.DataSource)
	respondWithJSON(w, http.StatusOK, result)
}

// Compare handles POST /api/drugs/compare
func (h *DrugHandler) Compare(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.Compare(r.Context(), body)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	markDataSource(w, result.DataSource)
	respondWithJSON(w, http.StatusOK, result)
}

// Alternatives handles POST /api/drugs/alternatives and returns a bare array
func (h *DrugHandler) Alternatives(w http.ResponseWriter, r *http.Request) {
	raw, err := requestParams(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.Alternatives(r.Context(), raw)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	markDataSource(w, result.DataSource)
	respondWithJSON(w, http.StatusOK, result.Alternatives)
}
