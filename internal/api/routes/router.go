package routes

import (
	"net/http"

	"github.com/zatekoja/rxpricediscovery/backend/internal/api/handlers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/api/middleware"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	drugHandler     *handlers.DrugHandler
	pharmacyHandler *handlers.PharmacyHandler
	authHandler     *handlers.AuthHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware may be nil.
func NewRouter(
	drugHandler *handlers.DrugHandler,
	pharmacyHandler *handlers.PharmacyHandler,
	authHandler *handlers.AuthHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		drugHandler:     drugHandler,
		pharmacyHandler: pharmacyHandler,
		authHandler:     authHandler,
		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Pharmacy locator
	r.mux.HandleFunc("GET /api/pharmacies", r.pharmacyHandler.ListPharmacies)

	// Drug search and monographs
	r.mux.HandleFunc("GET /api/drugs/search", r.drugHandler.Search)
	r.mux.HandleFunc("GET /api/drugs/search/{query}", r.drugHandler.SearchByPath)
	r.mux.HandleFunc("GET /api/drugs/prefix/{prefix}", r.drugHandler.SearchByPrefix)
	r.mux.HandleFunc("GET /api/drugs/info/gsn", r.drugHandler.InfoByGSN)
	r.mux.HandleFunc("GET /api/drugs/info/name", r.drugHandler.InfoByName)

	// Pricing
	r.mux.HandleFunc("POST /api/drugs/prices", r.drugHandler.Prices)
	r.mux.HandleFunc("POST /api/drugs/prices/ndc", r.drugHandler.PricesByNDC)
	r.mux.HandleFunc("POST /api/drugs/prices/group", r.drugHandler.GroupPrices)
	r.mux.HandleFunc("POST /api/drugs/compare", r.drugHandler.Compare)
	r.mux.HandleFunc("POST /api/drugs/alternatives", r.drugHandler.Alternatives)

	// Token diagnostics
	r.mux.HandleFunc("GET /api/auth/status", r.authHandler.Status)
	r.mux.HandleFunc("POST /api/auth/refresh", r.authHandler.Refresh)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.Compression(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	// Logging assigns the request id the inner layers read
	handler = middleware.LoggingMiddleware(handler)
	// CORS wraps everything so preflight never reaches the mux
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
