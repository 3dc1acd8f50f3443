package pricingapi

import (
	"strings"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
)

// Wire shapes of the pricing API. They are converted to domain entities
// before leaving this package.

type drugNameResponse struct {
	DrugName    string `json:"drugName"`
	GSN         int    `json:"gsn"`
	BrandName   string `json:"brandName"`
	GenericName string `json:"genericName"`
	IsGeneric   bool   `json:"isGeneric"`
}

type drugInfoResponse struct {
	GSN                int      `json:"gsn"`
	BrandName          string   `json:"brandName"`
	GenericName        string   `json:"genericName"`
	Description        string   `json:"description"`
	SideEffects        []string `json:"sideEffects"`
	Dosage             string   `json:"dosage"`
	Storage            string   `json:"storage"`
	Contraindications  []string `json:"contraindications"`
	AdministrationInfo string   `json:"administration"`
	Interactions       []string `json:"interactions"`
	Monitoring         string   `json:"monitoring"`
}

type priceRequestBody struct {
	DrugName           string  `json:"drugName,omitempty"`
	GSN                int     `json:"gsn,omitempty"`
	NDCCode            string  `json:"ndcCode,omitempty"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Radius             float64 `json:"radius,omitempty"`
	MaximumPharmacies  int     `json:"maximumPharmacies,omitempty"`
	CustomizedQuantity bool    `json:"customizedQuantity"`
	Quantity           float64 `json:"quantity,omitempty"`
	HQMappingName      string  `json:"hqMappingName"`
}

type priceResponse struct {
	PharmacyPricings []pharmacyPricing `json:"pharmacyPricings"`
}

type pharmacyPricing struct {
	Pharmacy pharmacyResponse `json:"pharmacy"`
	Prices   []priceEntry     `json:"prices"`
}

type priceEntry struct {
	Price                  float64 `json:"price"`
	UsualAndCustomaryPrice float64 `json:"usualAndCustomaryPrice"`
}

type pharmacyResponse struct {
	Name          string  `json:"name"`
	StreetAddress string  `json:"streetAddress"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZipCode       string  `json:"zipCode"`
	PhoneNumber   string  `json:"phone"`
	ChainCode     string  `json:"chainCode"`
	NPI           string  `json:"npi"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Distance      float64 `json:"distance"`
}

type pharmaciesResponse struct {
	Pharmacies []pharmacyResponse `json:"pharmacies"`
}

func (d drugNameResponse) toEntity() entities.DrugSearchHit {
	return entities.DrugSearchHit{
		DrugName:    strings.TrimSpace(d.DrugName),
		GSN:         d.GSN,
		BrandName:   d.BrandName,
		GenericName: d.GenericName,
		IsGeneric:   d.IsGeneric,
	}
}

func (d drugInfoResponse) toEntity() *entities.DrugDetails {
	return &entities.DrugDetails{
		GSN:                d.GSN,
		BrandName:          d.BrandName,
		GenericName:        d.GenericName,
		Description:        d.Description,
		SideEffects:        nonNil(d.SideEffects),
		Dosage:             d.Dosage,
		Storage:            d.Storage,
		Contraindications:  nonNil(d.Contraindications),
		AdministrationInfo: d.AdministrationInfo,
		Interactions:       d.Interactions,
		Monitoring:         d.Monitoring,
	}
}

func (p pharmacyResponse) toEntity() entities.Pharmacy {
	return entities.Pharmacy{
		Name:      p.Name,
		Address:   p.StreetAddress,
		City:      p.City,
		State:     p.State,
		ZipCode:   p.ZipCode,
		Phone:     p.PhoneNumber,
		ChainCode: p.ChainCode,
		NPI:       p.NPI,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Distance:  p.Distance,
	}
}

// toEntities keeps the lowest price quoted per pharmacy and drops pharmacies without a price.
func (r priceResponse) toEntities() []entities.PharmacyPriceResult {
	out := make([]entities.PharmacyPriceResult, 0, len(r.PharmacyPricings))
	for _, pp := range r.PharmacyPricings {
		if len(pp.Prices) == 0 {
			continue
		}
		best := pp.Prices[0]
		for _, p := range pp.Prices[1:] {
			if p.Price < best.Price {
				best = p
			}
		}
		out = append(out, entities.PharmacyPriceResult{
			Pharmacy:               pp.Pharmacy.toEntity(),
			Price:                  best.Price,
			UsualAndCustomaryPrice: best.UsualAndCustomaryPrice,
			Distance:               pp.Pharmacy.Distance,
		})
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

const maxErrorBodyLog = 512

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
