// Package mockdata holds the static drug and pharmacy dataset served when
// live pricing data is unavailable or mock data is configured.
package mockdata

import (
	"errors"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
)

// ErrNoMockData is returned when the dataset has nothing for the requested key
var ErrNoMockData = errors.New("no mock data available")

// DistanceFunc returns the distance in miles between two locations
type DistanceFunc func(from, to entities.Location) float64

// defaultQuantity is the unit count mock prices are quoted for.
const defaultQuantity = 30

// Dataset is read-only after construction and safe for concurrent use.
type Dataset struct {
	byKey      map[string]*drugRecord
	byGSN      map[int]*drugRecord
	byNDC      map[string]*drugRecord
	hits       []entities.DrugSearchHit
	pharmacies []pharmacyRecord
	distance   DistanceFunc
}

// New builds the dataset. distance computes pharmacy distances from the requested location.
func New(distance DistanceFunc) *Dataset {
	d := &Dataset{
		byKey:      make(map[string]*drugRecord, len(catalog)*2),
		byGSN:      make(map[int]*drugRecord, len(catalog)),
		byNDC:      make(map[string]*drugRecord, len(catalog)),
		hits:       make([]entities.DrugSearchHit, 0, len(catalog)*2),
		pharmacies: pharmacies,
		distance:   distance,
	}

	for i := range catalog {
		rec := &catalog[i]
		d.byKey[rec.name] = rec
		d.byKey[entities.DrugKey(rec.brand)] = rec
		d.byGSN[rec.gsn] = rec
		d.byNDC[normalizeNDC(rec.ndc)] = rec

		d.hits = append(d.hits,
			entities.DrugSearchHit{DrugName: rec.name, GSN: rec.gsn, BrandName: rec.brand, GenericName: rec.name, IsGeneric: true},
			entities.DrugSearchHit{DrugName: rec.brand, GSN: rec.gsn, BrandName: rec.brand, GenericName: rec.name},
		)
	}
	sort.Slice(d.hits, func(i, j int) bool {
		return strings.ToLower(d.hits[i].DrugName) < strings.ToLower(d.hits[j].DrugName)
	})

	return d
}

// Search returns catalog entries whose name contains query, ignoring case.
func (d *Dataset) Search(query string, limit int) []entities.DrugSearchHit {
	q := entities.DrugKey(query)
	out := []entities.DrugSearchHit{}
	if q == "" {
		return out
	}
	for _, hit := range d.hits {
		if strings.Contains(strings.ToLower(hit.DrugName), q) {
			out = append(out, hit)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// LookupGSN returns the GSN of a known generic or brand name
func (d *Dataset) LookupGSN(name string) (int, bool) {
	rec, ok := d.byKey[entities.DrugKey(name)]
	if !ok {
		return 0, false
	}
	return rec.gsn, true
}

// GSNs lists the GSN of every catalog drug in catalog order
func (d *Dataset) GSNs() []int {
	out := make([]int, 0, len(catalog))
	for i := range catalog {
		out = append(out, catalog[i].gsn)
	}
	return out
}

// DrugDetailsByName returns the monograph for a known generic or brand name
func (d *Dataset) DrugDetailsByName(name string) (*entities.DrugDetails, error) {
	rec, ok := d.byKey[entities.DrugKey(name)]
	if !ok {
		return nil, ErrNoMockData
	}
	return rec.detailsCopy(), nil
}

// DrugDetailsByGSN returns the monograph for a known GSN
func (d *Dataset) DrugDetailsByGSN(gsn int) (*entities.DrugDetails, error) {
	rec, ok := d.byGSN[gsn]
	if !ok {
		return nil, ErrNoMockData
	}
	return rec.detailsCopy(), nil
}

// Pharmacies returns mock pharmacies placed around loc, nearest first.
func (d *Dataset) Pharmacies(loc entities.Location, count int) []entities.Pharmacy {
	out := make([]entities.Pharmacy, 0, len(d.pharmacies))
	for _, rec := range d.pharmacies {
		out = append(out, d.place(rec, loc))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out
}

// Prices quotes deterministic prices for the request's drug, cheapest first.
// Any drug name can be priced; a GSN or NDC code must be known to the dataset.
func (d *Dataset) Prices(req entities.PriceRequest) ([]entities.PharmacyPriceResult, error) {
	key, base, err := d.resolvePriceKey(req)
	if err != nil {
		return nil, err
	}

	scale := 1.0
	if req.Quantity > 0 {
		scale = req.Quantity / defaultQuantity
	}

	loc := req.Location()
	out := make([]entities.PharmacyPriceResult, 0, len(d.pharmacies))
	for _, rec := range d.pharmacies {
		ph := d.place(rec, loc)
		if req.Radius > 0 && ph.Distance > req.Radius {
			continue
		}
		price, usual := quote(key, base, rec.pharmacy.NPI)
		out = append(out, entities.PharmacyPriceResult{
			Pharmacy:               ph,
			Price:                  round2(price * scale),
			UsualAndCustomaryPrice: round2(usual * scale),
			Distance:               ph.Distance,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].Distance < out[j].Distance
	})
	if req.MaximumPharmacies > 0 && len(out) > req.MaximumPharmacies {
		out = out[:req.MaximumPharmacies]
	}
	return out, nil
}

// ComparePrices summarises mock prices for each medication, in input order.
func (d *Dataset) ComparePrices(identifiers []entities.DrugIdentifier, loc entities.Location, radius float64) ([]entities.PriceComparison, error) {
	out := make([]entities.PriceComparison, 0, len(identifiers))
	for _, id := range identifiers {
		req := entities.PriceRequest{
			DrugName:   id.Name,
			GSN:        id.GSN,
			Identifier: id.Kind(),
			Latitude:   loc.Latitude,
			Longitude:  loc.Longitude,
			Radius:     radius,
		}
		prices, err := d.Prices(req)
		if err != nil {
			return nil, err
		}
		// A GSN lookup reports the drug the GSN names, not whatever name came with it.
		name := id.Name
		if req.Identifier == entities.IdentifierGSN {
			name = d.byGSN[id.GSN].name
		}
		out = append(out, entities.NewPriceComparison(name, id.GSN, prices))
	}
	return out, nil
}

// Alternatives returns the generic equivalent of a brand name and other drugs of the same class,
// each with its mock prices. The generic comes first, then therapeutic options cheapest first.
func (d *Dataset) Alternatives(name string, loc entities.Location, radius float64, includeGenerics, includeTherapeutic bool) ([]entities.DrugAlternative, error) {
	key := entities.DrugKey(name)
	rec, ok := d.byKey[key]
	if !ok {
		return nil, ErrNoMockData
	}

	var generics, therapeutic []entities.DrugAlternative
	if includeGenerics && key != rec.name {
		alt, err := d.alternative(rec, entities.AlternativeGeneric, loc, radius)
		if err != nil {
			return nil, err
		}
		generics = append(generics, alt)
	}
	if includeTherapeutic {
		for i := range catalog {
			other := &catalog[i]
			if other == rec || other.class != rec.class {
				continue
			}
			alt, err := d.alternative(other, entities.AlternativeTherapeutic, loc, radius)
			if err != nil {
				return nil, err
			}
			therapeutic = append(therapeutic, alt)
		}
		sort.SliceStable(therapeutic, func(i, j int) bool {
			return therapeutic[i].LowestPrice < therapeutic[j].LowestPrice
		})
	}

	return append(append([]entities.DrugAlternative{}, generics...), therapeutic...), nil
}

func (d *Dataset) alternative(rec *drugRecord, kind entities.AlternativeKind, loc entities.Location, radius float64) (entities.DrugAlternative, error) {
	prices, err := d.Prices(entities.PriceRequest{
		DrugName:   rec.name,
		Identifier: entities.IdentifierName,
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		Radius:     radius,
	})
	if err != nil {
		return entities.DrugAlternative{}, err
	}
	alt := entities.DrugAlternative{
		DrugName:   rec.name,
		GSN:        rec.gsn,
		Kind:       kind,
		Pharmacies: prices,
	}
	if len(prices) > 0 {
		alt.LowestPrice = prices[0].Price
	}
	return alt, nil
}

func (d *Dataset) resolvePriceKey(req entities.PriceRequest) (string, float64, error) {
	kind := req.Identifier
	if kind == "" {
		switch {
		case req.DrugName != "":
			kind = entities.IdentifierName
		case req.GSN > 0:
			kind = entities.IdentifierGSN
		default:
			kind = entities.IdentifierNDC
		}
	}

	switch kind {
	case entities.IdentifierGSN:
		if rec, ok := d.byGSN[req.GSN]; ok {
			return rec.name, rec.basePrice, nil
		}
	case entities.IdentifierNDC:
		if rec, ok := d.byNDC[normalizeNDC(req.NDCCode)]; ok {
			return rec.name, rec.basePrice, nil
		}
	default:
		key := entities.DrugKey(req.DrugName)
		if key == "" {
			break
		}
		if rec, ok := d.byKey[key]; ok {
			return rec.name, rec.basePrice, nil
		}
		return key, unknownBasePrice(key), nil
	}
	return "", 0, ErrNoMockData
}

func (d *Dataset) place(rec pharmacyRecord, from entities.Location) entities.Pharmacy {
	ph := rec.pharmacy
	ph.Latitude = round4(from.Latitude + rec.dLat)
	ph.Longitude = round4(from.Longitude + rec.dLon)
	if d.distance != nil {
		ph.Distance = round2(d.distance(from, entities.Location{Latitude: ph.Latitude, Longitude: ph.Longitude}))
	}
	return ph
}

func (r *drugRecord) detailsCopy() *entities.DrugDetails {
	details := r.details
	details.GSN = r.gsn
	details.SideEffects = append([]string{}, r.details.SideEffects...)
	details.Contraindications = append([]string{}, r.details.Contraindications...)
	if r.details.Interactions != nil {
		details.Interactions = append([]string{}, r.details.Interactions...)
	}
	return &details
}

// quote derives a stable price for a drug at a pharmacy.
func quote(drugKey string, base float64, npi string) (price, usual float64) {
	h := fnv.New32a()
	h.Write([]byte(drugKey))
	h.Write([]byte{0})
	h.Write([]byte(npi))
	v := h.Sum32()

	price = round2(base * (0.75 + float64(v%71)/100))
	usual = round2(price * (2.2 + float64((v>>8)%50)/100))
	return price, usual
}

func unknownBasePrice(key string) float64 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return 6 + float64(h.Sum32()%3500)/100
}

func normalizeNDC(ndc string) string {
	return strings.ReplaceAll(strings.TrimSpace(ndc), "-", "")
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
