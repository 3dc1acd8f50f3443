package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
)

// CachedPricingAdapter wraps a PricingProvider with caching for catalog lookups.
// Prices are never cached.
type CachedPricingAdapter struct {
	provider providers.PricingProvider
	cache    providers.CacheProvider
	metrics  *observability.Metrics
}

// NewCachedPricingAdapter creates a new cached pricing adapter
func NewCachedPricingAdapter(provider providers.PricingProvider, cache providers.CacheProvider, metrics *observability.Metrics) providers.PricingProvider {
	return &CachedPricingAdapter{
		provider: provider,
		cache:    cache,
		metrics:  metrics,
	}
}

// Cache TTLs (in seconds)
const (
	prefixSearchTTL = 600  // 10 minutes for autocomplete
	drugDetailsTTL  = 3600 // 1 hour for monographs
	pharmaciesTTL   = 900  // 15 minutes for pharmacy lists
)

// Cache key generators
func prefixSearchCacheKey(prefix string, count int, hqAlias string) string {
	return fmt.Sprintf("drugs:prefix:%s:%d:%s", strings.ToLower(strings.TrimSpace(prefix)), count, hqAlias)
}

func drugDetailsCacheKey(gsn int, languageCode string) string {
	return fmt.Sprintf("drugs:gsn:%d:%s", gsn, languageCode)
}

func pharmaciesCacheKey(lat, lon float64, count int) string {
	// ~100m grid so nearby requests share an entry
	return fmt.Sprintf("pharmacies:%s:%s:%d",
		strconv.FormatFloat(lat, 'f', 3, 64), strconv.FormatFloat(lon, 'f', 3, 64), count)
}

// SearchDrugsByPrefix retrieves autocomplete hits with caching
func (a *CachedPricingAdapter) SearchDrugsByPrefix(ctx context.Context, prefix string, count int, hqAlias string) ([]entities.DrugSearchHit, error) {
	return withCache(ctx, a, "prefix", prefixSearchCacheKey(prefix, count, hqAlias), prefixSearchTTL,
		func() ([]entities.DrugSearchHit, error) {
			return a.provider.SearchDrugsByPrefix(ctx, prefix, count, hqAlias)
		})
}

// GetDrugDetailsByGSN retrieves a monograph with caching
func (a *CachedPricingAdapter) GetDrugDetailsByGSN(ctx context.Context, gsn int, languageCode string) (*entities.DrugDetails, error) {
	return withCache(ctx, a, "drug_details", drugDetailsCacheKey(gsn, languageCode), drugDetailsTTL,
		func() (*entities.DrugDetails, error) {
			return a.provider.GetDrugDetailsByGSN(ctx, gsn, languageCode)
		})
}

// GetPharmacies retrieves nearby pharmacies with caching
func (a *CachedPricingAdapter) GetPharmacies(ctx context.Context, lat, lon float64, count int) ([]entities.Pharmacy, error) {
	return withCache(ctx, a, "pharmacies", pharmaciesCacheKey(lat, lon, count), pharmaciesTTL,
		func() ([]entities.Pharmacy, error) {
			return a.provider.GetPharmacies(ctx, lat, lon, count)
		})
}

// GetDrugPrices passes through to the provider
func (a *CachedPricingAdapter) GetDrugPrices(ctx context.Context, req entities.PriceRequest) ([]entities.PharmacyPriceResult, error) {
	return a.provider.GetDrugPrices(ctx, req)
}

// GetGroupDrugPrices passes through to the provider
func (a *CachedPricingAdapter) GetGroupDrugPrices(ctx context.Context, req entities.PriceRequest) ([]entities.PharmacyPriceResult, error) {
	return a.provider.GetGroupDrugPrices(ctx, req)
}

// ComparePrices passes through to the provider
func (a *CachedPricingAdapter) ComparePrices(ctx context.Context, identifiers []entities.DrugIdentifier, lat, lon, radius float64) ([]entities.PriceComparison, error) {
	return a.provider.ComparePrices(ctx, identifiers, lat, lon, radius)
}

func withCache[T any](ctx context.Context, a *CachedPricingAdapter, namespace, cacheKey string, ttl int, fetch func() (T, error)) (T, error) {
	logger := observability.LoggerFromContext(ctx)

	// Try to get from cache first
	cached, err := a.cache.Get(ctx, cacheKey)
	if err == nil {
		var value T
		if err := json.Unmarshal(cached, &value); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, namespace)
			return value, nil
		}
		logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to unmarshal cached value")
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		logger.Warn().Err(err).Str("key", cacheKey).Msg("cache read failed")
	}
	observability.RecordCacheMiss(ctx, a.metrics, namespace)

	value, err := fetch()
	if err != nil {
		return value, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.WithoutCancel(ctx)
		data, err := json.Marshal(value)
		if err != nil {
			return
		}
		if err := a.cache.Set(bgCtx, cacheKey, data, ttl); err != nil {
			observability.LoggerFromContext(bgCtx).Warn().Err(err).Str("key", cacheKey).Msg("failed to cache value")
		}
	}()

	return value, nil
}
