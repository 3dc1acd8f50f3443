package geolocation

import (
	"context"
	"math"
	"strings"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
)

const earthRadiusMiles = 3958.8

// defaultLocation is downtown Austin, TX.
var defaultLocation = entities.Location{Latitude: 30.2672, Longitude: -97.7431}

var zipCoordinates = map[string]entities.Location{
	"78701": {Latitude: 30.2711, Longitude: -97.7437},
	"78702": {Latitude: 30.2633, Longitude: -97.7166},
	"78703": {Latitude: 30.2937, Longitude: -97.7649},
	"78704": {Latitude: 30.2428, Longitude: -97.7658},
	"78705": {Latitude: 30.2896, Longitude: -97.7396},
	"78731": {Latitude: 30.3472, Longitude: -97.7606},
	"78745": {Latitude: 30.2076, Longitude: -97.7956},
	"78750": {Latitude: 30.4224, Longitude: -97.7964},
	"78753": {Latitude: 30.3649, Longitude: -97.6729},
	"78757": {Latitude: 30.3515, Longitude: -97.7326},
	"78758": {Latitude: 30.3877, Longitude: -97.7069},
	"78759": {Latitude: 30.4014, Longitude: -97.7525},
	"77002": {Latitude: 29.7567, Longitude: -95.3656},
	"75201": {Latitude: 32.7904, Longitude: -96.8044},
	"78205": {Latitude: 29.4246, Longitude: -98.4895},
	"10001": {Latitude: 40.7506, Longitude: -73.9972},
	"60601": {Latitude: 41.8858, Longitude: -87.6181},
	"90001": {Latitude: 33.9731, Longitude: -118.2479},
}

// ZipTableProvider resolves zip codes from a static lookup table
type ZipTableProvider struct {
	table    map[string]entities.Location
	fallback entities.Location
}

// NewZipTableProvider creates a provider backed by the built-in zip table
func NewZipTableProvider() providers.GeolocationProvider {
	return &ZipTableProvider{table: zipCoordinates, fallback: defaultLocation}
}

// GeocodeZip converts a 5-digit (or ZIP+4) zip code to coordinates
func (p *ZipTableProvider) GeocodeZip(ctx context.Context, zipCode string) (*entities.Location, error) {
	zip := strings.TrimSpace(zipCode)
	if i := strings.IndexByte(zip, '-'); i > 0 {
		zip = zip[:i]
	}
	loc, ok := p.table[zip]
	if !ok {
		return nil, providers.ErrUnknownZipCode
	}
	return &loc, nil
}

// DefaultLocation returns the location used when none can be resolved
func (p *ZipTableProvider) DefaultLocation() entities.Location {
	return p.fallback
}

// CalculateDistance calculates the distance between two points using the Haversine formula
func (p *ZipTableProvider) CalculateDistance(from, to entities.Location) float64 {
	lat1Rad := toRadians(from.Latitude)
	lat2Rad := toRadians(to.Latitude)
	deltaLat := toRadians(to.Latitude - from.Latitude)
	deltaLon := toRadians(to.Longitude - from.Longitude)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
