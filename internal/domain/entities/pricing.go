package entities

import (
	"math"
	"strconv"
	"time"
)

// IdentifierKind names which drug identifier a price request is keyed by
type IdentifierKind string

const (
	IdentifierName IdentifierKind = "name"
	IdentifierGSN  IdentifierKind = "gsn"
	IdentifierNDC  IdentifierKind = "ndc"
)

// PriceRequest is a normalized price lookup. It is built per request and never persisted.
type PriceRequest struct {
	DrugName string `json:"drugName,omitempty"`
	GSN      int    `json:"gsn,omitempty" validate:"gte=0"`
	NDCCode  string `json:"ndcCode,omitempty"`

	// Identifier is the identifier chosen by endpoint precedence.
	Identifier IdentifierKind `json:"-"`

	Latitude           float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude          float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Radius             float64 `json:"radius,omitempty" validate:"gte=0"`
	MaximumPharmacies  int     `json:"maximumPharmacies,omitempty" validate:"gte=0"`
	Quantity           float64 `json:"quantity,omitempty" validate:"gte=0"`
	CustomizedQuantity bool    `json:"customizedQuantity,omitempty"`
	HQMappingName      string  `json:"hqMappingName,omitempty"`
}

// IdentifierValue returns the value of the chosen identifier as text.
func (r PriceRequest) IdentifierValue() string {
	switch r.Identifier {
	case IdentifierGSN:
		return strconv.Itoa(r.GSN)
	case IdentifierNDC:
		return r.NDCCode
	default:
		return r.DrugName
	}
}

// Location returns the request coordinates
func (r PriceRequest) Location() Location {
	return Location{Latitude: r.Latitude, Longitude: r.Longitude}
}

// DrugIdentifier is one medication named in a comparison request
type DrugIdentifier struct {
	Name string `json:"name,omitempty"`
	GSN  int    `json:"gsn,omitempty"`

	// Identifier is the identifier chosen by endpoint precedence.
	Identifier IdentifierKind `json:"-"`
}

// Kind returns the identifier prices are looked up by. Without a chosen
// identifier a positive GSN wins over the name.
func (id DrugIdentifier) Kind() IdentifierKind {
	if id.Identifier != "" {
		return id.Identifier
	}
	if id.GSN > 0 {
		return IdentifierGSN
	}
	return IdentifierName
}

// PriceComparison summarises the prices of one medication
type PriceComparison struct {
	DrugName     string                `json:"drugName"`
	GSN          int                   `json:"gsn,omitempty"`
	LowestPrice  float64               `json:"lowestPrice"`
	HighestPrice float64               `json:"highestPrice"`
	AveragePrice float64               `json:"averagePrice"`
	Pharmacies   []PharmacyPriceResult `json:"pharmacies"`
}

// DataSource marks responses that were substituted with mock data
type DataSource struct {
	UsingMockData  bool   `json:"usingMockData,omitempty"`
	FallbackReason string `json:"fallbackReason,omitempty"`
}

// SearchResult is returned by drug search endpoints
type SearchResult struct {
	Results []DrugSearchHit `json:"results"`
	DataSource
}

// DrugInfoResult is returned by drug detail endpoints
type DrugInfoResult struct {
	DrugDetails
	DataSource
}

// PriceResult is returned by price endpoints
type PriceResult struct {
	Pharmacies []PharmacyPriceResult `json:"pharmacies"`
	DataSource
}

// ComparisonResult is returned by the compare endpoint
type ComparisonResult struct {
	Comparisons []PriceComparison `json:"comparisons"`
	DataSource
}

// AlternativesResult is returned by the alternatives service
type AlternativesResult struct {
	Alternatives []DrugAlternative `json:"alternatives"`
	DataSource
}

// PharmacyListResult is returned by the pharmacy locator
type PharmacyListResult struct {
	Pharmacies []Pharmacy `json:"pharmacies"`
	DataSource
}

// TokenStatus reports the state of the cached upstream bearer token
type TokenStatus struct {
	HasToken         bool       `json:"hasToken"`
	Valid            bool       `json:"valid"`
	TokenType        string     `json:"tokenType,omitempty"`
	IssuedAt         *time.Time `json:"issuedAt,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	RemainingSeconds int64      `json:"remainingSeconds"`
}

// NewPriceComparison summarises the prices quoted for one medication.
func NewPriceComparison(drugName string, gsn int, results []PharmacyPriceResult) PriceComparison {
	cmp := PriceComparison{
		DrugName:   drugName,
		GSN:        gsn,
		Pharmacies: results,
	}
	if cmp.Pharmacies == nil {
		cmp.Pharmacies = []PharmacyPriceResult{}
	}
	if len(results) == 0 {
		return cmp
	}

	cmp.LowestPrice = results[0].Price
	cmp.HighestPrice = results[0].Price
	var total float64
	for _, r := range results {
		if r.Price < cmp.LowestPrice {
			cmp.LowestPrice = r.Price
		}
		if r.Price > cmp.HighestPrice {
			cmp.HighestPrice = r.Price
		}
		total += r.Price
	}
	cmp.AveragePrice = math.Round(total/float64(len(results))*100) / 100
	return cmp
}
