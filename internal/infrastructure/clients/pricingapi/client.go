package pricingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/rxpricediscovery/backend/pkg/errors"
)

const (
	// DefaultTimeout bounds every call to the pricing API and its token endpoint.
	DefaultTimeout = 10 * time.Second

	// DefaultHQMappingName is the tenant used when none is configured.
	DefaultHQMappingName = "walkerrx"

	// MinPrefixLength is the shortest prefix the autocomplete endpoint accepts.
	MinPrefixLength = 3

	defaultSearchCount   = 10
	defaultPharmacyCount = 20
	maxErrorBody         = 64 << 10
)

// ClientConfig configures an HTTPClient
type ClientConfig struct {
	BaseURL       string
	HQMappingName string
	LanguageCode  string
	Timeout       time.Duration
	// RateLimit caps upstream requests per second; 0 disables limiting.
	RateLimit float64

	HTTPClient *http.Client
	Metrics    *observability.Metrics
}

// HTTPClient calls the pharmacy pricing API with a cached bearer token.
// Every call is a single attempt; callers decide what to do on failure.
type HTTPClient struct {
	baseURL       string
	hqMappingName string
	languageCode  string
	httpClient    *http.Client
	tokens        providers.TokenSource
	limiter       *rate.Limiter
	metrics       *observability.Metrics
}

var _ providers.PricingProvider = (*HTTPClient)(nil)

// NewClient creates a pricing API client
func NewClient(cfg ClientConfig, tokens providers.TokenSource) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	hq := cfg.HQMappingName
	if hq == "" {
		hq = DefaultHQMappingName
	}
	lang := cfg.LanguageCode
	if lang == "" {
		lang = "en"
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &HTTPClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		hqMappingName: hq,
		languageCode:  lang,
		httpClient:    httpClient,
		tokens:        tokens,
		limiter:       limiter,
		metrics:       cfg.Metrics,
	}
}

// HQMappingName returns the tenant identifier attached to every call
func (c *HTTPClient) HQMappingName() string {
	return c.hqMappingName
}

// SearchDrugsByPrefix calls GET /pricing/v1/autocomplete
func (c *HTTPClient) SearchDrugsByPrefix(ctx context.Context, prefix string, count int, hqAlias string) ([]entities.DrugSearchHit, error) {
	prefix = strings.TrimSpace(prefix)
	if len(prefix) < MinPrefixLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("prefix must be at least %d characters", MinPrefixLength))
	}
	if count <= 0 {
		count = defaultSearchCount
	}
	if hqAlias == "" {
		hqAlias = c.hqMappingName
	}

	query := url.Values{}
	query.Set("prefixText", prefix)
	query.Set("count", strconv.Itoa(count))
	query.Set("hqAlias", hqAlias)

	var out []drugNameResponse
	if err := c.do(ctx, "search_prefix", http.MethodGet, c.endpoint("/pricing/v1/autocomplete", query), nil, &out); err != nil {
		return nil, err
	}

	hits := make([]entities.DrugSearchHit, 0, len(out))
	for _, d := range out {
		if hit := d.toEntity(); hit.DrugName != "" {
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// GetDrugDetailsByGSN calls GET /pricing/v1/drugs/{gsn}
func (c *HTTPClient) GetDrugDetailsByGSN(ctx context.Context, gsn int, languageCode string) (*entities.DrugDetails, error) {
	if gsn <= 0 {
		return nil, apperrors.NewValidationError("gsn must be a positive integer")
	}
	if languageCode == "" {
		languageCode = c.languageCode
	}

	query := url.Values{}
	query.Set("languageCode", languageCode)
	query.Set("hqMappingName", c.hqMappingName)

	var out drugInfoResponse
	path := "/pricing/v1/drugs/" + strconv.Itoa(gsn)
	if err := c.do(ctx, "drug_details", http.MethodGet, c.endpoint(path, query), nil, &out); err != nil {
		return nil, err
	}

	details := out.toEntity()
	if details.GSN == 0 {
		details.GSN = gsn
	}
	return details, nil
}

// GetDrugPrices calls POST /pricing/v1/drugprices/{byName|byGSN|byNdcCode}
func (c *HTTPClient) GetDrugPrices(ctx context.Context, req entities.PriceRequest) ([]entities.PharmacyPriceResult, error) {
	return c.prices(ctx, "drug_prices", "/pricing/v1/drugprices", req)
}

// GetGroupDrugPrices calls POST /pricing/v1/groupdrugprices/{byName|byGSN|byNdcCode}
func (c *HTTPClient) GetGroupDrugPrices(ctx context.Context, req entities.PriceRequest) ([]entities.PharmacyPriceResult, error) {
	return c.prices(ctx, "group_drug_prices", "/pricing/v1/groupdrugprices", req)
}

// ComparePrices looks up prices for each identifier concurrently. The first failure fails the comparison.
func (c *HTTPClient) ComparePrices(ctx context.Context, identifiers []entities.DrugIdentifier, lat, lon, radius float64) ([]entities.PriceComparison, error) {
	if len(identifiers) == 0 {
		return nil, apperrors.NewValidationError("at least one medication is required")
	}

	results := make([]entities.PriceComparison, len(identifiers))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range identifiers {
		g.Go(func() error {
			req := entities.PriceRequest{
				DrugName:   id.Name,
				GSN:        id.GSN,
				Identifier: id.Kind(),
				Latitude:   lat,
				Longitude:  lon,
				Radius:     radius,
			}
			prices, err := c.GetDrugPrices(gctx, req)
			if err != nil {
				return err
			}
			results[i] = entities.NewPriceComparison(id.Name, id.GSN, prices)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetPharmacies calls GET /pricing/v1/pharmacies
func (c *HTTPClient) GetPharmacies(ctx context.Context, lat, lon float64, count int) ([]entities.Pharmacy, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = defaultPharmacyCount
	}

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("count", strconv.Itoa(count))
	query.Set("hqMappingName", c.hqMappingName)

	var out pharmaciesResponse
	if err := c.do(ctx, "pharmacies", http.MethodGet, c.endpoint("/pricing/v1/pharmacies", query), nil, &out); err != nil {
		return nil, err
	}

	pharmacies := make([]entities.Pharmacy, 0, len(out.Pharmacies))
	for _, p := range out.Pharmacies {
		pharmacies = append(pharmacies, p.toEntity())
	}
	return pharmacies, nil
}

func (c *HTTPClient) prices(ctx context.Context, operation, basePath string, req entities.PriceRequest) ([]entities.PharmacyPriceResult, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	body := priceRequestBody{
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Radius:             req.Radius,
		MaximumPharmacies:  req.MaximumPharmacies,
		CustomizedQuantity: req.CustomizedQuantity,
		Quantity:           req.Quantity,
		HQMappingName:      req.HQMappingName,
	}
	if body.HQMappingName == "" {
		body.HQMappingName = c.hqMappingName
	}

	var path string
	switch identifierOf(req) {
	case entities.IdentifierGSN:
		path, body.GSN = basePath+"/byGSN", req.GSN
	case entities.IdentifierNDC:
		path, body.NDCCode = basePath+"/byNdcCode", req.NDCCode
	case entities.IdentifierName:
		path, body.DrugName = basePath+"/byName", req.DrugName
	default:
		return nil, apperrors.NewValidationError("drugName, gsn or ndcCode is required")
	}

	var out priceResponse
	if err := c.do(ctx, operation, http.MethodPost, c.endpoint(path, nil), body, &out); err != nil {
		return nil, err
	}
	return out.toEntities(), nil
}

// identifierOf returns the request's chosen identifier, or the first one present when none was chosen.
func identifierOf(req entities.PriceRequest) entities.IdentifierKind {
	switch req.Identifier {
	case entities.IdentifierGSN:
		if req.GSN > 0 {
			return req.Identifier
		}
	case entities.IdentifierNDC:
		if req.NDCCode != "" {
			return req.Identifier
		}
	case entities.IdentifierName:
		if req.DrugName != "" {
			return req.Identifier
		}
	}
	switch {
	case req.DrugName != "":
		return entities.IdentifierName
	case req.GSN > 0:
		return entities.IdentifierGSN
	case req.NDCCode != "":
		return entities.IdentifierNDC
	}
	return ""
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	if len(query) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + query.Encode()
}

func (c *HTTPClient) do(ctx context.Context, operation, method, endpoint string, body, out interface{}) error {
	ctx, span := observability.StartSpan(ctx, "pricingapi."+operation)
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("pricing.operation", operation),
		attribute.String("pricing.hq_mapping", c.hqMappingName),
	)

	start := time.Now()
	err := c.doJSON(ctx, operation, method, endpoint, body, out)

	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(string(apperrors.TypeOf(err)))
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("operation", operation).
			Msg("pricing api call failed")
	}
	observability.RecordUpstreamMetric(ctx, c.metrics, operation, outcome, time.Since(start))
	return err
}

func (c *HTTPClient) doJSON(ctx context.Context, operation, method, endpoint string, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperrors.NewUpstreamUnavailableError(operation, err)
		}
	}

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("failed to encode pricing api request", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperrors.NewInternalError("failed to build pricing api request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.NewUpstreamUnavailableError(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.NewUpstreamAPIError(operation, resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewUpstreamAPIError(operation, resp.StatusCode, "invalid response body: "+err.Error())
	}

	return nil
}

// validateCoordinates only rejects impossible values; (0,0) is a real point.
func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return apperrors.NewValidationError("latitude must be within [-90, 90] and longitude within [-180, 180]")
	}
	return nil
}
