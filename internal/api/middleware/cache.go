package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
)

// CacheConfig holds cache configuration for specific routes
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
}

// DefaultCacheRoutes are the GET routes whose live responses are cached, matched by path prefix
var DefaultCacheRoutes = map[string]CacheConfig{
	"/api/drugs/info/":   {TTLSeconds: 3600, Enabled: true},
	"/api/drugs/search":  {TTLSeconds: 600, Enabled: true},
	"/api/drugs/prefix/": {TTLSeconds: 600, Enabled: true},
	"/api/pharmacies":    {TTLSeconds: 900, Enabled: true},
}

// CacheMiddleware caches successful GET responses that were answered with live data.
// Responses marked as mock data are never stored so recovery is visible immediately.
type CacheMiddleware struct {
	cache        providers.CacheProvider
	routeConfigs map[string]CacheConfig
	metrics      *observability.Metrics
}

// NewCacheMiddleware creates a new cache middleware for routes
func NewCacheMiddleware(cache providers.CacheProvider, routes map[string]CacheConfig, metrics *observability.Metrics) *CacheMiddleware {
	return &CacheMiddleware{
		cache:        cache,
		routeConfigs: routes,
		metrics:      metrics,
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		config := m.getRouteConfig(r.URL.Path)
		if !config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		cacheKey := m.generateCacheKey(r)

		if cached, err := m.cache.Get(ctx, cacheKey); err == nil {
			observability.RecordCacheHit(ctx, m.metrics, "http")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(cached); err != nil {
				logger.Debug().Err(err).Msg("failed to write cached response")
			}
			return
		}

		observability.RecordCacheMiss(ctx, m.metrics, "http")
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode != http.StatusOK || recorder.body.Len() == 0 {
			return
		}
		if w.Header().Get("X-Data-Source") == "mock" {
			return
		}

		if err := m.cache.Set(context.WithoutCancel(ctx), cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
			logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
		}
	})
}

// getRouteConfig gets the cache configuration for a route
func (m *CacheMiddleware) getRouteConfig(path string) CacheConfig {
	if config, exists := m.routeConfigs[path]; exists {
		return config
	}

	// Prefix match for dynamic routes
	for pattern, config := range m.routeConfigs {
		if strings.HasPrefix(path, pattern) {
			return config
		}
	}

	return CacheConfig{Enabled: false}
}

// generateCacheKey hashes method, path and query
func (m *CacheMiddleware) generateCacheKey(r *http.Request) string {
	key := fmt.Sprintf("%s:%s", r.Method, r.URL.Path)
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.Query().Encode()
	}

	hash := sha256.Sum256([]byte(key))
	return "http:" + hex.EncodeToString(hash[:])
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
