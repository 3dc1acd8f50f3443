package pricing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/pricing"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/mocks"
	apperrors "github.com/zatekoja/rxpricediscovery/backend/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, ttls: map[string]int{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = expirationSeconds
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func TestCachedPricingAdapter_SearchDrugsByPrefix_CachesResult(t *testing.T) {
	provider := mocks.NewMockPricingProvider(t)
	cache := newMemoryCache()
	adapter := pricing.NewCachedPricingAdapter(provider, cache, nil)
	ctx := context.Background()

	hits := []entities.DrugSearchHit{{DrugName: "amoxicillin", GSN: 8970, IsGeneric: true}}
	provider.On("SearchDrugsByPrefix", ctx, "amo", 10, "walkerrx").Return(hits, nil).Once()

	first, err := adapter.SearchDrugsByPrefix(ctx, "amo", 10, "walkerrx")
	require.NoError(t, err)
	assert.Equal(t, hits, first)

	require.Eventually(t, func() bool { return cache.len() == 1 }, time.Second, 10*time.Millisecond)

	second, err := adapter.SearchDrugsByPrefix(ctx, "AMO", 10, "walkerrx")
	require.NoError(t, err)
	assert.Equal(t, hits, second)

}

func TestCachedPricingAdapter_GetDrugDetailsByGSN_CachesResult(t *testing.T) {
	provider := mocks.NewMockPricingProvider(t)
	cache := newMemoryCache()
	adapter := pricing.NewCachedPricingAdapter(provider, cache, nil)
	ctx := context.Background()

	details := &entities.DrugDetails{GSN: 8970, BrandName: "Amoxil", SideEffects: []string{}, Contraindications: []string{}}
	provider.On("GetDrugDetailsByGSN", ctx, 8970, "en").Return(details, nil).Once()

	_, err := adapter.GetDrugDetailsByGSN(ctx, 8970, "en")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return cache.len() == 1 }, time.Second, 10*time.Millisecond)

	cached, err := adapter.GetDrugDetailsByGSN(ctx, 8970, "en")
	require.NoError(t, err)
	assert.Equal(t, details, cached)
}

func TestCachedPricingAdapter_ErrorsAreNotCached(t *testing.T) {
	provider := mocks.NewMockPricingProvider(t)
	cache := newMemoryCache()
	adapter := pricing.NewCachedPricingAdapter(provider, cache, nil)
	ctx := context.Background()

	upstreamErr := apperrors.NewUpstreamAPIError("pharmacies", 503, "down")
	provider.On("GetPharmacies", ctx, 30.4014, -97.7525, 5).Return(nil, upstreamErr).Twice()

	for i := 0; i < 2; i++ {
		_, err := adapter.GetPharmacies(ctx, 30.4014, -97.7525, 5)
		assert.True(t, errors.Is(err, upstreamErr))
	}
	assert.Zero(t, cache.len())
}

func TestCachedPricingAdapter_CorruptEntryFallsThrough(t *testing.T) {
	provider := mocks.NewMockPricingProvider(t)
	cache := newMemoryCache()
	adapter := pricing.NewCachedPricingAdapter(provider, cache, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "pharmacies:30.400:-97.750:5", []byte("{not json"), 60))
	pharmacies := []entities.Pharmacy{{Name: "CVS Pharmacy"}}
	provider.On("GetPharmacies", ctx, 30.4, -97.75, 5).Return(pharmacies, nil).Once()

	got, err := adapter.GetPharmacies(ctx, 30.4, -97.75, 5)

	require.NoError(t, err)
	assert.Equal(t, pharmacies, got)
}

func TestCachedPricingAdapter_PricesPassThrough(t *testing.T) {
	provider := mocks.NewMockPricingProvider(t)
	cache := newMemoryCache()
	adapter := pricing.NewCachedPricingAdapter(provider, cache, nil)
	ctx := context.Background()

	req := entities.PriceRequest{DrugName: "lisinopril", Latitude: 30.2, Longitude: -97.7}
	results := []entities.PharmacyPriceResult{{Price: 4.5}}
	provider.On("GetDrugPrices", ctx, req).Return(results, nil).Twice()
	provider.On("GetGroupDrugPrices", ctx, req).Return(results, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := adapter.GetDrugPrices(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, results, got)
	}
	_, err := adapter.GetGroupDrugPrices(ctx, req)
	require.NoError(t, err)

	assert.Zero(t, cache.len())
}
