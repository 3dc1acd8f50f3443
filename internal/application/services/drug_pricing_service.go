package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/mockdata"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
	"github.com/zatekoja/rxpricediscovery/backend/pkg/config"
	apperrors "github.com/zatekoja/rxpricediscovery/backend/pkg/errors"
)

const (
	// MinSearchLength is the shortest accepted free-text search
	MinSearchLength = 2
	// MinUpstreamSearchLength is the shortest query the pricing API autocompletes
	MinUpstreamSearchLength = 3

	defaultSearchLimit   = 10
	defaultPharmacyCount = 20
)

// DrugPricingService answers every drug pricing endpoint
type DrugPricingService struct {
	provider     providers.PricingProvider
	tokens       providers.TokenSource
	dataset      *mockdata.Dataset
	orchestrator *FallbackOrchestrator
	normalizer   *RequestNormalizer
}

// NewDrugPricingService creates a new drug pricing service
func NewDrugPricingService(
	provider providers.PricingProvider,
	tokens providers.TokenSource,
	dataset *mockdata.Dataset,
	orchestrator *FallbackOrchestrator,
	normalizer *RequestNormalizer,
) *DrugPricingService {
	return &DrugPricingService{
		provider:     provider,
		tokens:       tokens,
		dataset:      dataset,
		orchestrator: orchestrator,
		normalizer:   normalizer,
	}
}

// SearchDrugs searches by free text. Queries shorter than the upstream minimum are
// answered from the local catalog.
func (s *DrugPricingService) SearchDrugs(ctx context.Context, query string) (*entities.SearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "DrugPricingService.SearchDrugs")
	defer span.End()

	query = strings.TrimSpace(query)
	if len(query) < MinSearchLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("query must be at least %d characters", MinSearchLength))
	}

	if len(query) < MinUpstreamSearchLength {
		return &entities.SearchResult{
			Results: s.dataset.Search(query, defaultSearchLimit),
			DataSource: entities.DataSource{
				UsingMockData:  true,
				FallbackReason: fmt.Sprintf("queries shorter than %d characters are served from the local catalog", MinUpstreamSearchLength),
			},
		}, nil
	}

	return s.searchWithFallback(ctx, query, defaultSearchLimit, "")
}

// SearchByPrefix autocompletes a prefix of at least three characters
func (s *DrugPricingService) SearchByPrefix(ctx context.Context, prefix string, count int, hqAlias string) (*entities.SearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "DrugPricingService.SearchByPrefix")
	defer span.End()

	prefix = strings.TrimSpace(prefix)
	if len(prefix) < MinUpstreamSearchLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("prefix must be at least %d characters", MinUpstreamSearchLength))
	}
	if count <= 0 {
		count = defaultSearchLimit
	}
	return s.searchWithFallback(ctx, prefix, count, hqAlias)
}

func (s *DrugPricingService) searchWithFallback(ctx context.Context, query string, count int, hqAlias string) (*entities.SearchResult, error) {
	hits, source, err := withFallback(ctx, s.orchestrator, config.FeatureSearch,
		func(ctx context.Context) ([]entities.DrugSearchHit, error) {
			hits, err := s.provider.SearchDrugsByPrefix(ctx, query, count, hqAlias)
			if err != nil {
				return nil, err
			}
			return s.enrichWithGSN(hits), nil
		},
		func() ([]entities.DrugSearchHit, error) {
			return s.dataset.Search(query, count), nil
		})
	if err != nil {
		return nil, err
	}
	return &entities.SearchResult{Results: nonNilHits(hits), DataSource: source}, nil
}

// enrichWithGSN fills missing GSNs from the local name table
func (s *DrugPricingService) enrichWithGSN(hits []entities.DrugSearchHit) []entities.DrugSearchHit {
	out := make([]entities.DrugSearchHit, len(hits))
	for i, hit := range hits {
		if hit.GSN == 0 {
			if gsn, ok := s.dataset.LookupGSN(hit.DrugName); ok {
				hit.GSN = gsn
			} else if gsn, ok := s.dataset.LookupGSN(hit.GenericName); ok {
				hit.GSN = gsn
			}
		}
		out[i] = hit
	}
	return out
}

// DrugInfoByGSN returns a drug monograph by GSN
func (s *DrugPricingService) DrugInfoByGSN(ctx context.Context, gsn int) (*entities.DrugInfoResult, error) {
	ctx, span := observability.StartSpan(ctx, "DrugPricingService.DrugInfoByGSN")
	defer span.End()

	if gsn <= 0 {
		return nil, apperrors.NewValidationError("gsn must be a positive integer")
	}

	details, source, err := withFallback(ctx, s.orchestrator, config.FeatureDrugInfo,
		func(ctx context.Context) (*entities.DrugDetails, error) {
			return s.provider.GetDrugDetailsByGSN(ctx, gsn, "")
		},
		func() (*entities.DrugDetails, error) {
			return s.dataset.DrugDetailsByGSN(gsn)
		})
	if err != nil {
		return nil, err
	}
	return &entities.DrugInfoResult{DrugDetails: *details, DataSource: source}, nil
}

// DrugInfoByName resolves name to a GSN, through upstream search then the local table,
// and returns its monograph.
func (s *DrugPricingService) DrugInfoByName(ctx context.Context, name string) (*entities.DrugInfoResult, error) {
	ctx, span := observability.StartSpan(ctx, "DrugPricingService.DrugInfoByName")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	details, source, err := withFallback(ctx, s.orchestrator, config.FeatureDrugInfo,
		func(ctx context.Context) (*entities.DrugDetails, error) {
			gsn, err := s.resolveGSN(ctx, name)
			if err != nil {
				return nil, err
			}
			return s.provider.GetDrugDetailsByGSN(ctx, gsn, "")
		},
		func() (*entities.DrugDetails, error) {
			return s.dataset.DrugDetailsByName(name)
		})
	if err != nil {
		return nil, err
	}
	return &entities.DrugInfoResult{DrugDetails: *details, DataSource: source}, nil
}

func (s *DrugPricingService) resolveGSN(ctx context.Context, name string) (int, error) {
	if len(name) >= MinUpstreamSearchLength {
		hits, err := s.provider.SearchDrugsByPrefix(ctx, name, defaultSearchLimit, "")
		if err != nil {
			return 0, err
		}
		for _, hit := range hits {
			if hit.GSN > 0 && strings.EqualFold(hit.DrugName, name) {
				return hit.GSN, nil
			}
		}
	}
	if gsn, ok := s.dataset.LookupGSN(name); ok {
		return gsn, nil
	}
	return 0, apperrors.NewNotFoundError(fmt.Sprintf("drug %q not found", name))
}

// Prices returns prices for the drug named in raw, using endpoint's identifier precedence.
// EndpointGroupPrices is answered from the grouped pricing route.
func (s *DrugPricingService) Prices(ctx context.Context, endpoint string, raw RawParams) (*entities.PriceResult, error) {
	ctx, span := observability.StartSpan(ctx, "DrugPricingService.Prices")
	defer span.End()

	req, err := s.normalizer.NormalizePriceRequest(ctx, endpoint, raw)
	if err != nil {
		return nil, err
	}

	fetch := s.provider.GetDrugPrices
	if endpoint == config.EndpointGroupPrices {
		fetch = s.provider.GetGroupDrugPrices
	}

	results, source, err := withFallback(ctx, s.orchestrator, config.FeaturePrices,
		func(ctx context.Context) ([]entities.PharmacyPriceResult, error) {
			return fetch(ctx, *req)
		},
		func() ([]entities.PharmacyPriceResult, error) {
			return s.dataset.Prices(*req)
		})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []entities.PharmacyPriceResult{}
	}
	return &entities.PriceResult{Pharmacies: results, DataSource: source}, nil
}

// Compare summarises prices for several medications at one location
func (s *DrugPricingService) Compare(ctx context.Context, body []byte) (*entities.ComparisonResult, error) {
	ctx, span := observability.StartSpan(ctx, "DrugPricingService.Compare")
	defer span.End()

	req, err := s.normalizer.NormalizeCompareRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	comparisons, source, err := withFallback(ctx, s.orchestrator, config.FeatureCompare,
		func(ctx context.Context) ([]entities.PriceComparison, error) {
			return s.provider.ComparePrices(ctx, req.Medications, req.Location.Latitude, req.Location.Longitude, req.Radius)
		},
		func() ([]entities.PriceComparison, error) {
			return s.dataset.ComparePrices(req.Medications, req.Location, req.Radius)
		})
	if err != nil {
		return nil, err
	}
	return &entities.ComparisonResult{Comparisons: comparisons, DataSource: source}, nil
}

// Alternatives returns generic and therapeutic alternatives with their prices.
// Live mode prices each known alternative upstream.
func (s *DrugPricingService) Alternatives(ctx context.Context, raw RawParams) (*entities.AlternativesResult, error) {
	ctx, span := observability.StartSpan(ctx, "DrugPricingService.Alternatives")
	defer span.End()

	req, err := s.normalizer.NormalizeAlternativesRequest(ctx, raw)
	if err != nil {
		return nil, err
	}

	alts, source, err := withFallback(ctx, s.orchestrator, config.FeatureAlternatives,
		func(ctx context.Context) ([]entities.DrugAlternative, error) {
			return s.liveAlternatives(ctx, req)
		},
		func() ([]entities.DrugAlternative, error) {
			return s.dataset.Alternatives(req.DrugName, req.Location, req.Radius, req.IncludeGenerics, req.IncludeTherapeutic)
		})
	if err != nil {
		return nil, err
	}
	if alts == nil {
		alts = []entities.DrugAlternative{}
	}
	return &entities.AlternativesResult{Alternatives: alts, DataSource: source}, nil
}

func (s *DrugPricingService) liveAlternatives(ctx context.Context, req *AlternativesRequest) ([]entities.DrugAlternative, error) {
	known, err := s.dataset.Alternatives(req.DrugName, req.Location, req.Radius, req.IncludeGenerics, req.IncludeTherapeutic)
	if err != nil {
		// Nothing is known to be equivalent; that is an empty answer, not a failure.
		return []entities.DrugAlternative{}, nil
	}

	out := make([]entities.DrugAlternative, len(known))
	g, gctx := errgroup.WithContext(ctx)
	for i, alt := range known {
		g.Go(func() error {
			prices, err := s.provider.GetDrugPrices(gctx, entities.PriceRequest{
				DrugName:   alt.DrugName,
				GSN:        alt.GSN,
				Identifier: entities.IdentifierGSN,
				Latitude:   req.Location.Latitude,
				Longitude:  req.Location.Longitude,
				Radius:     req.Radius,
			})
			if err != nil {
				return err
			}
			priced := entities.DrugAlternative{
				DrugName:   alt.DrugName,
				GSN:        alt.GSN,
				Kind:       alt.Kind,
				Pharmacies: prices,
			}
			if priced.Pharmacies == nil {
				priced.Pharmacies = []entities.PharmacyPriceResult{}
			}
			for j, p := range prices {
				if j == 0 || p.Price < priced.LowestPrice {
					priced.LowestPrice = p.Price
				}
			}
			out[i] = priced
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Pharmacies lists participating pharmacies near the requested location
func (s *DrugPricingService) Pharmacies(ctx context.Context, raw RawParams) (*entities.PharmacyListResult, error) {
	ctx, span := observability.StartSpan(ctx, "DrugPricingService.Pharmacies")
	defer span.End()

	loc, err := s.normalizer.ResolveLocation(ctx, EndpointPharmacies, raw)
	if err != nil {
		return nil, err
	}
	count, _, err := raw.Int("count")
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = defaultPharmacyCount
	}

	list, source, err := withFallback(ctx, s.orchestrator, config.FeaturePharmacies,
		func(ctx context.Context) ([]entities.Pharmacy, error) {
			return s.provider.GetPharmacies(ctx, loc.Latitude, loc.Longitude, count)
		},
		func() ([]entities.Pharmacy, error) {
			return s.dataset.Pharmacies(loc, count), nil
		})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entities.Pharmacy{}
	}
	return &entities.PharmacyListResult{Pharmacies: list, DataSource: source}, nil
}

// TokenStatus reports the upstream token cache state
func (s *DrugPricingService) TokenStatus() entities.TokenStatus {
	return s.tokens.Status()
}

// RefreshToken forces a new token exchange and reports the resulting state
func (s *DrugPricingService) RefreshToken(ctx context.Context) (entities.TokenStatus, error) {
	if _, err := s.tokens.ForceRefresh(ctx); err != nil {
		return s.tokens.Status(), err
	}
	return s.tokens.Status(), nil
}

func nonNilHits(hits []entities.DrugSearchHit) []entities.DrugSearchHit {
	if hits == nil {
		return []entities.DrugSearchHit{}
	}
	return hits
}
