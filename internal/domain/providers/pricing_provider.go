package providers

import (
	"context"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
)

// PricingProvider defines the upstream pharmacy pricing API
type PricingProvider interface {
	// SearchDrugsByPrefix returns drugs whose names start with prefix (at least 3 characters)
	SearchDrugsByPrefix(ctx context.Context, prefix string, count int, hqAlias string) ([]entities.DrugSearchHit, error)

	// GetDrugDetailsByGSN returns the monograph for a GSN
	GetDrugDetailsByGSN(ctx context.Context, gsn int, languageCode string) (*entities.DrugDetails, error)

	// GetDrugPrices returns prices for one drug near a location
	GetDrugPrices(ctx context.Context, req entities.PriceRequest) ([]entities.PharmacyPriceResult, error)

	// GetGroupDrugPrices returns prices grouped by pharmacy chain
	GetGroupDrugPrices(ctx context.Context, req entities.PriceRequest) ([]entities.PharmacyPriceResult, error)

	// ComparePrices returns one comparison per identifier, in input order
	ComparePrices(ctx context.Context, identifiers []entities.DrugIdentifier, lat, lon, radius float64) ([]entities.PriceComparison, error)

	// GetPharmacies returns participating pharmacies near a location
	GetPharmacies(ctx context.Context, lat, lon float64, count int) ([]entities.Pharmacy, error)
}

// TokenSource exposes the upstream bearer token cache
type TokenSource interface {
	// GetToken returns a valid bearer token, exchanging credentials when needed
	GetToken(ctx context.Context) (string, error)

	// ForceRefresh exchanges credentials regardless of cache validity
	ForceRefresh(ctx context.Context) (string, error)

	// Status reports the cached token's validity window
	Status() entities.TokenStatus
}
