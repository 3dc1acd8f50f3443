package mockdata_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/mockdata"
	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/providers/geolocation"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
)

var austin = entities.Location{Latitude: 30.4014, Longitude: -97.7525}

func newDataset() *mockdata.Dataset {
	return mockdata.New(geolocation.NewZipTableProvider().CalculateDistance)
}

func TestDataset_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	ds := newDataset()

	hits := ds.Search("AM", 0)

	require.NotEmpty(t, hits)
	names := make([]string, 0, len(hits))
	for _, hit := range hits {
		assert.Contains(t, strings.ToLower(hit.DrugName), "am")
		names = append(names, hit.DrugName)
	}
	assert.Contains(t, names, "amoxicillin")
	assert.Contains(t, names, "amlodipine")
}

func TestDataset_SearchMatchesBrandNames(t *testing.T) {
	ds := newDataset()

	hits := ds.Search("lipi", 0)

	require.Len(t, hits, 1)
	assert.Equal(t, "Lipitor", hits[0].DrugName)
	assert.Equal(t, "atorvastatin", hits[0].GenericName)
	assert.False(t, hits[0].IsGeneric)
	assert.Equal(t, 29967, hits[0].GSN)
}

func TestDataset_SearchLimitAndEmptyQuery(t *testing.T) {
	ds := newDataset()

	assert.Len(t, ds.Search("a", 2), 2)
	assert.Empty(t, ds.Search("   ", 0))
	assert.NotNil(t, ds.Search("zzz", 0))
}

func TestDataset_LookupGSN(t *testing.T) {
	ds := newDataset()

	gsn, ok := ds.LookupGSN(" Amoxicillin ")
	assert.True(t, ok)
	assert.Equal(t, 8970, gsn)

	gsn, ok = ds.LookupGSN("zoloft")
	assert.True(t, ok)
	assert.Equal(t, 16374, gsn)

	_, ok = ds.LookupGSN("unobtainium")
	assert.False(t, ok)
}

func TestDataset_DrugDetails(t *testing.T) {
	ds := newDataset()

	byName, err := ds.DrugDetailsByName("amoxicillin")
	require.NoError(t, err)
	assert.Equal(t, "Amoxil", byName.BrandName)
	assert.Equal(t, 8970, byName.GSN)

	byGSN, err := ds.DrugDetailsByGSN(8970)
	require.NoError(t, err)
	assert.Equal(t, byName, byGSN)

	_, err = ds.DrugDetailsByName("unobtainium")
	assert.ErrorIs(t, err, mockdata.ErrNoMockData)

	_, err = ds.DrugDetailsByGSN(1)
	assert.ErrorIs(t, err, mockdata.ErrNoMockData)
}

func TestDataset_DrugDetailsAreCopies(t *testing.T) {
	ds := newDataset()

	first, err := ds.DrugDetailsByName("lisinopril")
	require.NoError(t, err)
	first.SideEffects[0] = "changed"

	second, err := ds.DrugDetailsByName("lisinopril")
	require.NoError(t, err)
	assert.Equal(t, "dry cough", second.SideEffects[0])
}

func TestDataset_PricesSortedAndDeterministic(t *testing.T) {
	ds := newDataset()
	req := entities.PriceRequest{
		DrugName:   "amoxicillin",
		Identifier: entities.IdentifierName,
		Latitude:   austin.Latitude,
		Longitude:  austin.Longitude,
	}

	first, err := ds.Prices(req)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i-1].Price, first[i].Price)
	}
	for _, r := range first {
		assert.Greater(t, r.Price, 0.0)
		assert.Greater(t, r.UsualAndCustomaryPrice, r.Price)
	}

	second, err := ds.Prices(req)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestDataset_PricesAnyDrugName(t *testing.T) {
	ds := newDataset()

	results, err := ds.Prices(entities.PriceRequest{DrugName: "gabapentin", Latitude: austin.Latitude, Longitude: austin.Longitude})

	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestDataset_PricesByIdentifier(t *testing.T) {
	ds := newDataset()
	byName, err := ds.Prices(entities.PriceRequest{DrugName: "amoxicillin", Latitude: austin.Latitude, Longitude: austin.Longitude})
	require.NoError(t, err)

	byGSN, err := ds.Prices(entities.PriceRequest{GSN: 8970, Identifier: entities.IdentifierGSN, Latitude: austin.Latitude, Longitude: austin.Longitude})
	require.NoError(t, err)
	assert.Equal(t, byName, byGSN)

	byNDC, err := ds.Prices(entities.PriceRequest{NDCCode: "00093415573", Identifier: entities.IdentifierNDC, Latitude: austin.Latitude, Longitude: austin.Longitude})
	require.NoError(t, err)
	assert.Equal(t, byName, byNDC)

	_, err = ds.Prices(entities.PriceRequest{GSN: 1, Identifier: entities.IdentifierGSN, Latitude: austin.Latitude, Longitude: austin.Longitude})
	assert.ErrorIs(t, err, mockdata.ErrNoMockData)

	_, err = ds.Prices(entities.PriceRequest{NDCCode: "0000", Identifier: entities.IdentifierNDC})
	assert.ErrorIs(t, err, mockdata.ErrNoMockData)
}

func TestDataset_PricesRadiusAndMaximum(t *testing.T) {
	ds := newDataset()
	base := entities.PriceRequest{DrugName: "metformin", Latitude: austin.Latitude, Longitude: austin.Longitude}

	all, err := ds.Prices(base)
	require.NoError(t, err)

	near := base
	near.Radius = 1
	within, err := ds.Prices(near)
	require.NoError(t, err)
	assert.Less(t, len(within), len(all))
	for _, r := range within {
		assert.LessOrEqual(t, r.Distance, 1.0)
	}

	capped := base
	capped.MaximumPharmacies = 3
	top, err := ds.Prices(capped)
	require.NoError(t, err)
	assert.Equal(t, all[:3], top)
}

func TestDataset_PharmaciesNearestFirst(t *testing.T) {
	ds := newDataset()

	list := ds.Pharmacies(austin, 0)

	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Distance, list[i].Distance)
	}
	assert.Equal(t, "Walker Rx Pharmacy", list[0].Name)
	assert.Len(t, ds.Pharmacies(austin, 2), 2)
}

func TestDataset_ComparePrices(t *testing.T) {
	ds := newDataset()

	comparisons, err := ds.ComparePrices([]entities.DrugIdentifier{
		{Name: "lisinopril"},
		{GSN: 8970},
	}, austin, 0)

	require.NoError(t, err)
	require.Len(t, comparisons, 2)
	assert.Equal(t, "lisinopril", comparisons[0].DrugName)
	assert.Equal(t, "amoxicillin", comparisons[1].DrugName)
	for _, c := range comparisons {
		assert.LessOrEqual(t, c.LowestPrice, c.AveragePrice)
		assert.LessOrEqual(t, c.AveragePrice, c.HighestPrice)
	}

	_, err = ds.ComparePrices([]entities.DrugIdentifier{{GSN: 1}}, austin, 0)
	assert.ErrorIs(t, err, mockdata.ErrNoMockData)
}

func TestDataset_ComparePricesHonoursChosenIdentifier(t *testing.T) {
	ds := newDataset()

	byGSN, err := ds.Prices(entities.PriceRequest{GSN: 8970, Identifier: entities.IdentifierGSN, Latitude: austin.Latitude, Longitude: austin.Longitude})
	require.NoError(t, err)

	comparisons, err := ds.ComparePrices([]entities.DrugIdentifier{
		{Name: "Lipitor", GSN: 8970, Identifier: entities.IdentifierGSN},
		{Name: "Lipitor", GSN: 8970, Identifier: entities.IdentifierName},
	}, austin, 0)

	require.NoError(t, err)
	require.Len(t, comparisons, 2)
	assert.Equal(t, "amoxicillin", comparisons[0].DrugName)
	assert.Equal(t, byGSN, comparisons[0].Pharmacies)
	assert.Equal(t, "Lipitor", comparisons[1].DrugName)
	assert.NotEqual(t, comparisons[0].LowestPrice, comparisons[1].LowestPrice)
}

func TestDataset_Alternatives(t *testing.T) {
	ds := newDataset()

	alts, err := ds.Alternatives("Lipitor", austin, 0, true, true)

	require.NoError(t, err)
	require.Len(t, alts, 2)
	assert.Equal(t, "atorvastatin", alts[0].DrugName)
	assert.Equal(t, entities.AlternativeGeneric, alts[0].Kind)
	assert.Equal(t, "simvastatin", alts[1].DrugName)
	assert.Equal(t, entities.AlternativeTherapeutic, alts[1].Kind)
	assert.Equal(t, alts[1].Pharmacies[0].Price, alts[1].LowestPrice)
}

func TestDataset_AlternativesFlags(t *testing.T) {
	ds := newDataset()

	generics, err := ds.Alternatives("lisinopril", austin, 0, true, false)
	require.NoError(t, err)
	assert.Empty(t, generics)

	therapeutic, err := ds.Alternatives("lisinopril", austin, 0, false, true)
	require.NoError(t, err)
	names := []string{}
	for _, alt := range therapeutic {
		names = append(names, alt.DrugName)
	}
	assert.ElementsMatch(t, []string{"amlodipine", "losartan"}, names)

	_, err = ds.Alternatives("unobtainium", austin, 0, true, true)
	assert.ErrorIs(t, err, mockdata.ErrNoMockData)
}
