package pricingapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/clients/pricingapi"
	apperrors "github.com/zatekoja/rxpricediscovery/backend/pkg/errors"
)

type stubTokens struct {
	token string
	err   error
	calls atomic.Int32
}

func (s *stubTokens) GetToken(ctx context.Context) (string, error) {
	s.calls.Add(1)
	return s.token, s.err
}

func (s *stubTokens) ForceRefresh(ctx context.Context) (string, error) {
	return s.GetToken(ctx)
}

func (s *stubTokens) Status() entities.TokenStatus {
	return entities.TokenStatus{HasToken: s.err == nil, Valid: s.err == nil}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*pricingapi.HTTPClient, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := pricingapi.NewClient(pricingapi.ClientConfig{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	}, &stubTokens{token: "test-token"})
	return client, &hits
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPClient_SearchDrugsByPrefix(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/pricing/v1/autocomplete", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "amo", r.URL.Query().Get("prefixText"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))
		assert.Equal(t, pricingapi.DefaultHQMappingName, r.URL.Query().Get("hqAlias"))

		fmt.Fprint(w, `[
			{"drugName":"amoxicillin","gsn":8970,"genericName":"amoxicillin","isGeneric":true},
			{"drugName":"  ","gsn":1},
			{"drugName":"amoxicillin-clavulanate","gsn":8989}
		]`)
	})

	drugs, err := client.SearchDrugsByPrefix(context.Background(), "amo", 0, "")

	require.NoError(t, err)
	require.Len(t, drugs, 2)
	assert.Equal(t, "amoxicillin", drugs[0].DrugName)
	assert.Equal(t, 8970, drugs[0].GSN)
	assert.True(t, drugs[0].IsGeneric)
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPClient_SearchDrugsByPrefix_ShortPrefixNeverCallsUpstream(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called")
	})

	_, err := client.SearchDrugsByPrefix(context.Background(), "am", 10, "")

	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, int32(0), hits.Load())
}

func TestHTTPClient_GetDrugDetailsByGSN(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pricing/v1/drugs/8970", r.URL.Path)
		assert.Equal(t, "en", r.URL.Query().Get("languageCode"))
		assert.Equal(t, pricingapi.DefaultHQMappingName, r.URL.Query().Get("hqMappingName"))
		writeJSON(w, map[string]interface{}{
			"brandName":      "Amoxil",
			"genericName":    "amoxicillin",
			"description":    "Penicillin-class antibiotic",
			"sideEffects":    []string{"nausea"},
			"administration": "Take with water",
		})
	})

	details, err := client.GetDrugDetailsByGSN(context.Background(), 8970, "")

	require.NoError(t, err)
	assert.Equal(t, 8970, details.GSN)
	assert.Equal(t, "Amoxil", details.BrandName)
	assert.Equal(t, []string{"nausea"}, details.SideEffects)
	assert.Equal(t, []string{}, details.Contraindications)
	assert.Equal(t, "Take with water", details.AdministrationInfo)
}

func TestHTTPClient_GetDrugDetailsByGSN_RejectsNonPositive(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.GetDrugDetailsByGSN(context.Background(), 0, "")

	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, int32(0), hits.Load())
}

func TestHTTPClient_GetDrugPrices(t *testing.T) {
	tests := []struct {
		name     string
		req      entities.PriceRequest
		wantPath string
		check    func(t *testing.T, body map[string]interface{})
	}{
		{
			name:     "by name",
			req:      entities.PriceRequest{DrugName: "amoxicillin", Identifier: entities.IdentifierName, Latitude: 30.4, Longitude: -97.7},
			wantPath: "/pricing/v1/drugprices/byName",
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "amoxicillin", body["drugName"])
				assert.NotContains(t, body, "gsn")
			},
		},
		{
			name:     "by gsn",
			req:      entities.PriceRequest{DrugName: "amoxicillin", GSN: 8970, Identifier: entities.IdentifierGSN, Latitude: 30.4, Longitude: -97.7},
			wantPath: "/pricing/v1/drugprices/byGSN",
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(8970), body["gsn"])
				assert.NotContains(t, body, "drugName")
			},
		},
		{
			name:     "by ndc",
			req:      entities.PriceRequest{NDCCode: "00093-4155-73", Identifier: entities.IdentifierNDC, Latitude: 30.4, Longitude: -97.7},
			wantPath: "/pricing/v1/drugprices/byNdcCode",
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "00093-4155-73", body["ndcCode"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, pricingapi.DefaultHQMappingName, body["hqMappingName"])
				assert.Equal(t, 30.4, body["latitude"])
				tt.check(t, body)

				fmt.Fprint(w, `{"pharmacyPricings":[
					{"pharmacy":{"name":"Walgreens","streetAddress":"1 Main St","distance":1.2},
					 "prices":[{"price":14.5,"usualAndCustomaryPrice":30},{"price":12.25,"usualAndCustomaryPrice":28}]},
					{"pharmacy":{"name":"No Price Pharmacy"},"prices":[]}
				]}`)
			})

			results, err := client.GetDrugPrices(context.Background(), tt.req)

			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "Walgreens", results[0].Pharmacy.Name)
			assert.Equal(t, "1 Main St", results[0].Pharmacy.Address)
			assert.Equal(t, 12.25, results[0].Price)
			assert.Equal(t, 28.0, results[0].UsualAndCustomaryPrice)
			assert.Equal(t, 1.2, results[0].Distance)
		})
	}
}

func TestHTTPClient_GetGroupDrugPrices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pricing/v1/groupdrugprices/byName", r.URL.Path)
		fmt.Fprint(w, `{"pharmacyPricings":[]}`)
	})

	results, err := client.GetGroupDrugPrices(context.Background(), entities.PriceRequest{
		DrugName: "lisinopril", Latitude: 30.2, Longitude: -97.7,
	})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHTTPClient_GetDrugPrices_RequiresIdentifierAndLocation(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.GetDrugPrices(context.Background(), entities.PriceRequest{DrugName: "amoxicillin", Latitude: 95})
	assert.True(t, apperrors.IsValidation(err))

	_, err = client.GetPharmacies(context.Background(), 0, 181, 5)
	assert.True(t, apperrors.IsValidation(err))

	_, err = client.GetDrugPrices(context.Background(), entities.PriceRequest{Latitude: 30.2, Longitude: -97.7})
	assert.True(t, apperrors.IsValidation(err))

	assert.Equal(t, int32(0), hits.Load())
}

func TestHTTPClient_NonSuccessStatusIsUpstreamAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message":"pricing engine offline"}`)
	})

	_, err := client.GetDrugPrices(context.Background(), entities.PriceRequest{
		DrugName: "amoxicillin", Latitude: 30.2, Longitude: -97.7,
	})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeUpstreamAPI, appErr.Type)
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
	assert.Contains(t, appErr.Body, "pricing engine offline")
}

func TestHTTPClient_InvalidBodyIsUpstreamAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})

	_, err := client.GetPharmacies(context.Background(), 30.2, -97.7, 5)

	assert.Equal(t, apperrors.ErrorTypeUpstreamAPI, apperrors.TypeOf(err))
}

func TestHTTPClient_UnreachableIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := pricingapi.NewClient(pricingapi.ClientConfig{BaseURL: baseURL, Timeout: time.Second}, &stubTokens{token: "t"})

	_, err := client.SearchDrugsByPrefix(context.Background(), "amoxi", 5, "")

	assert.Equal(t, apperrors.ErrorTypeUpstreamUnavailable, apperrors.TypeOf(err))
}

func TestHTTPClient_TimeoutIsUpstreamUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := pricingapi.NewClient(pricingapi.ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, &stubTokens{token: "t"})

	_, err := client.GetPharmacies(context.Background(), 30.2, -97.7, 5)

	assert.Equal(t, apperrors.ErrorTypeUpstreamUnavailable, apperrors.TypeOf(err))
}

func TestHTTPClient_TokenFailureSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	tokens := &stubTokens{err: apperrors.NewAuthenticationError("token exchange failed", nil)}
	client := pricingapi.NewClient(pricingapi.ClientConfig{BaseURL: srv.URL}, tokens)

	_, err := client.GetDrugDetailsByGSN(context.Background(), 8970, "en")

	assert.Equal(t, apperrors.ErrorTypeAuthentication, apperrors.TypeOf(err))
	assert.Equal(t, int32(0), hits.Load())
}

func TestHTTPClient_GetPharmacies(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pricing/v1/pharmacies", r.URL.Path)
		assert.Equal(t, "30.4014", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-97.7525", r.URL.Query().Get("longitude"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		fmt.Fprint(w, `{"pharmacies":[{"name":"CVS Pharmacy","streetAddress":"9500 N MoPac","phone":"512-555-0100","zipCode":"78759"}]}`)
	})

	pharmacies, err := client.GetPharmacies(context.Background(), 30.4014, -97.7525, 3)

	require.NoError(t, err)
	require.Len(t, pharmacies, 1)
	assert.Equal(t, "CVS Pharmacy", pharmacies[0].Name)
	assert.Equal(t, "9500 N MoPac", pharmacies[0].Address)
	assert.Equal(t, "512-555-0100", pharmacies[0].Phone)
}

func TestHTTPClient_AcceptsNullIsland(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pricing/v1/pharmacies" {
			assert.Equal(t, "0", r.URL.Query().Get("latitude"))
			assert.Equal(t, "0", r.URL.Query().Get("longitude"))
			fmt.Fprint(w, `{"pharmacies":[]}`)
			return
		}
		fmt.Fprint(w, `{"pharmacyPricings":[]}`)
	})

	_, err := client.GetPharmacies(context.Background(), 0, 0, 3)
	require.NoError(t, err)
	_, err = client.GetDrugPrices(context.Background(), entities.PriceRequest{DrugName: "amoxicillin", Identifier: entities.IdentifierName})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPClient_ComparePrices(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/pricing/v1/drugprices/byGSN":
			assert.Equal(t, float64(8970), body["gsn"])
			fmt.Fprint(w, `{"pharmacyPricings":[
				{"pharmacy":{"name":"A"},"prices":[{"price":10}]},
				{"pharmacy":{"name":"B"},"prices":[{"price":20.02}]}
			]}`)
		case "/pricing/v1/drugprices/byName":
			assert.Equal(t, "lisinopril", body["drugName"])
			fmt.Fprint(w, `{"pharmacyPricings":[{"pharmacy":{"name":"C"},"prices":[{"price":4}]}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	comparisons, err := client.ComparePrices(context.Background(), []entities.DrugIdentifier{
		{Name: "amoxicillin", GSN: 8970},
		{Name: "lisinopril"},
	}, 30.2, -97.7, 10)

	require.NoError(t, err)
	require.Len(t, comparisons, 2)
	assert.Equal(t, "amoxicillin", comparisons[0].DrugName)
	assert.Equal(t, 10.0, comparisons[0].LowestPrice)
	assert.Equal(t, 20.02, comparisons[0].HighestPrice)
	assert.Equal(t, 15.01, comparisons[0].AveragePrice)
	assert.Equal(t, "lisinopril", comparisons[1].DrugName)
	assert.Equal(t, 4.0, comparisons[1].LowestPrice)
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPClient_ComparePrices_FirstFailureFailsAll(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pricing/v1/drugprices/byName" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"pharmacyPricings":[]}`)
	})

	comparisons, err := client.ComparePrices(context.Background(), []entities.DrugIdentifier{
		{GSN: 8970},
		{Name: "lisinopril"},
	}, 30.2, -97.7, 10)

	assert.Nil(t, comparisons)
	assert.Equal(t, apperrors.ErrorTypeUpstreamAPI, apperrors.TypeOf(err))
}

func TestHTTPClient_WithTokenCache(t *testing.T) {
	ts := newTokenServer(t, 3600)
	tokens := newTestTokenCache(ts, newFakeClock())

	var seen []string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		fmt.Fprint(w, `[]`)
	}))
	defer api.Close()

	client := pricingapi.NewClient(pricingapi.ClientConfig{BaseURL: api.URL}, tokens)
	for i := 0; i < 3; i++ {
		_, err := client.SearchDrugsByPrefix(context.Background(), "lisin", 5, "")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"Bearer token-1", "Bearer token-1", "Bearer token-1"}, seen)
	assert.Equal(t, int32(1), ts.calls.Load())
}
