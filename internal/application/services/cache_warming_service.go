package services

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/mockdata"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
)

const warmConcurrency = 4

// WarmStats counts the lookups made while warming
type WarmStats struct {
	Warmed int
	Failed int
}

// CacheWarmingService preloads the pricing cache with monographs for every catalog drug
// and the pharmacies around the default location. provider is expected to be the cached adapter.
type CacheWarmingService struct {
	provider providers.PricingProvider
	dataset  *mockdata.Dataset
	geo      providers.GeolocationProvider
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(
	provider providers.PricingProvider,
	dataset *mockdata.Dataset,
	geo providers.GeolocationProvider,
) *CacheWarmingService {
	return &CacheWarmingService{
		provider: provider,
		dataset:  dataset,
		geo:      geo,
	}
}

// WarmCache fetches each entry once. Individual failures are counted, not returned;
// the error is non-nil only when ctx ends first.
func (s *CacheWarmingService) WarmCache(ctx context.Context) (WarmStats, error) {
	logger := observability.LoggerFromContext(ctx)
	logger.Info().Msg("starting cache warming")

	var warmed, failed atomic.Int64
	record := func(err error) {
		if err != nil {
			failed.Add(1)
			return
		}
		warmed.Add(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	for _, gsn := range s.dataset.GSNs() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := s.provider.GetDrugDetailsByGSN(gctx, gsn, "")
			if err != nil {
				logger.Debug().Err(err).Int("gsn", gsn).Msg("failed to warm drug details")
			}
			record(err)
			return nil
		})
	}

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		loc := s.geo.DefaultLocation()
		_, err := s.provider.GetPharmacies(gctx, loc.Latitude, loc.Longitude, defaultPharmacyCount)
		if err != nil {
			logger.Debug().Err(err).Msg("failed to warm pharmacies")
		}
		record(err)
		return nil
	})

	err := g.Wait()
	stats := WarmStats{Warmed: int(warmed.Load()), Failed: int(failed.Load())}
	logger.Info().
		Int("warmed", stats.Warmed).
		Int("failed", stats.Failed).
		Msg("cache warming completed")
	return stats, err
}
