package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
)

// ErrUnknownZipCode is returned when a zip code has no known coordinates
var ErrUnknownZipCode = errors.New("unknown zip code")

// GeolocationProvider defines the interface for geolocation services
type GeolocationProvider interface {
	// GeocodeZip converts a US zip code to coordinates
	GeocodeZip(ctx context.Context, zipCode string) (*entities.Location, error)

	// DefaultLocation is used when a request carries no resolvable location
	DefaultLocation() entities.Location

	// CalculateDistance calculates the distance between two points in miles
	CalculateDistance(from, to entities.Location) float64
}
