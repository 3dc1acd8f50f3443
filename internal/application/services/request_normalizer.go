package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
	"github.com/zatekoja/rxpricediscovery/backend/pkg/config"
	apperrors "github.com/zatekoja/rxpricediscovery/backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// EndpointPharmacies is the pharmacy locator; it always allows the default location.
const EndpointPharmacies = "pharmacies"

// DefaultIdentifierPrecedence is the identifier order each price endpoint uses when a request names several.
var DefaultIdentifierPrecedence = map[string][]entities.IdentifierKind{
	config.EndpointPrices:       {entities.IdentifierGSN, entities.IdentifierName},
	config.EndpointPricesNDC:    {entities.IdentifierNDC, entities.IdentifierGSN, entities.IdentifierName},
	config.EndpointGroupPrices:  {entities.IdentifierName, entities.IdentifierGSN, entities.IdentifierNDC},
	config.EndpointCompare:      {entities.IdentifierGSN, entities.IdentifierName},
	config.EndpointAlternatives: {entities.IdentifierName},
}

// RawParams holds inbound request parameters as text, keyed by parameter name
type RawParams map[string]string

// RawParamsFromQuery takes the first value of every query parameter
func RawParamsFromQuery(values url.Values) RawParams {
	raw := make(RawParams, len(values))
	for k, v := range values {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	return raw
}

// RawParamsFromJSON flattens a JSON object's scalar members to text.
// Numbers and booleans may arrive either as JSON literals or as strings.
func RawParamsFromJSON(data []byte) (RawParams, error) {
	raw := RawParams{}
	if len(bytes.TrimSpace(data)) == 0 {
		return raw, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, apperrors.NewValidationError("request body must be a JSON object")
	}
	return rawParamsFromFields(fields), nil
}

func rawParamsFromFields(fields map[string]json.RawMessage) RawParams {
	raw := make(RawParams, len(fields))
	for k, v := range fields {
		lit := string(bytes.TrimSpace(v))
		// null reads as absent so it cannot mask a query parameter of the same name
		if lit == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			raw[k] = s
			continue
		}
		switch {
		case strings.HasPrefix(lit, "{"), strings.HasPrefix(lit, "["):
			// nested values are read by the caller
		default:
			raw[k] = lit
		}
	}
	return raw
}

// String returns the first non-empty value among keys
func (p RawParams) String(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(p[k]); v != "" {
			return v
		}
	}
	return ""
}

// Float parses the first present key. ok is false when no key is present.
func (p RawParams) Float(keys ...string) (value float64, ok bool, err error) {
	for _, k := range keys {
		v := strings.TrimSpace(p[k])
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, true, apperrors.NewValidationError(fmt.Sprintf("%s must be a number", k))
		}
		return f, true, nil
	}
	return 0, false, nil
}

// Int parses the first present key as an integer. Whole-valued decimals such as "30.0" are accepted.
func (p RawParams) Int(keys ...string) (value int, ok bool, err error) {
	f, ok, err := p.Float(keys...)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f != float64(int(f)) {
		return 0, true, apperrors.NewValidationError(fmt.Sprintf("%s must be an integer", keys[0]))
	}
	return int(f), true, nil
}

// Bool parses the first present key, returning def when absent
func (p RawParams) Bool(def bool, keys ...string) (bool, error) {
	for _, k := range keys {
		v := strings.TrimSpace(p[k])
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, apperrors.NewValidationError(fmt.Sprintf("%s must be true or false", k))
		}
		return b, nil
	}
	return def, nil
}

// CompareRequest is a normalized price comparison
type CompareRequest struct {
	Medications []entities.DrugIdentifier `json:"medications"`
	Location    entities.Location         `json:"location"`
	Radius      float64                   `json:"radius" validate:"gte=0"`
}

// AlternativesRequest is a normalized alternatives lookup
type AlternativesRequest struct {
	DrugName           string            `json:"drugName"`
	Location           entities.Location `json:"location"`
	Radius             float64           `json:"radius" validate:"gte=0"`
	IncludeGenerics    bool              `json:"includeGenerics"`
	IncludeTherapeutic bool              `json:"includeTherapeutic"`
}

// RequestNormalizer turns raw request parameters into typed requests
type RequestNormalizer struct {
	geo             providers.GeolocationProvider
	precedence      map[string][]entities.IdentifierKind
	requireLocation map[string]bool
}

// NewRequestNormalizer creates a normalizer. overrides replace the default identifier
// precedence per endpoint; requireLocation names endpoints that must not use the default location.
func NewRequestNormalizer(geo providers.GeolocationProvider, overrides map[string][]string, requireLocation []string) *RequestNormalizer {
	precedence := make(map[string][]entities.IdentifierKind, len(DefaultIdentifierPrecedence))
	for endpoint, kinds := range DefaultIdentifierPrecedence {
		precedence[endpoint] = kinds
	}
	for endpoint, names := range overrides {
		var kinds []entities.IdentifierKind
		for _, name := range names {
			switch kind := entities.IdentifierKind(name); kind {
			case entities.IdentifierName, entities.IdentifierGSN, entities.IdentifierNDC:
				kinds = append(kinds, kind)
			}
		}
		if len(kinds) > 0 {
			precedence[endpoint] = kinds
		}
	}

	required := make(map[string]bool, len(requireLocation))
	for _, endpoint := range requireLocation {
		required[endpoint] = true
	}

	return &RequestNormalizer{
		geo:             geo,
		precedence:      precedence,
		requireLocation: required,
	}
}

// Precedence returns the identifier order used by endpoint
func (n *RequestNormalizer) Precedence(endpoint string) []entities.IdentifierKind {
	if kinds, ok := n.precedence[endpoint]; ok {
		return kinds
	}
	return DefaultIdentifierPrecedence[config.EndpointPrices]
}

// NormalizePriceRequest builds a PriceRequest for a price endpoint
func (n *RequestNormalizer) NormalizePriceRequest(ctx context.Context, endpoint string, raw RawParams) (*entities.PriceRequest, error) {
	req := &entities.PriceRequest{
		DrugName:      raw.String("drugName", "name", "drug"),
		NDCCode:       raw.String("ndcCode", "ndc"),
		HQMappingName: raw.String("hqMappingName"),
	}

	var err error
	if req.GSN, _, err = raw.Int("gsn"); err != nil {
		return nil, err
	}
	if req.Radius, _, err = raw.Float("radius"); err != nil {
		return nil, err
	}
	if req.Quantity, _, err = raw.Float("quantity"); err != nil {
		return nil, err
	}
	if req.MaximumPharmacies, _, err = raw.Int("maximumPharmacies"); err != nil {
		return nil, err
	}
	if req.CustomizedQuantity, err = raw.Bool(false, "customizedQuantity"); err != nil {
		return nil, err
	}

	loc, err := n.ResolveLocation(ctx, endpoint, raw)
	if err != nil {
		return nil, err
	}
	req.Latitude, req.Longitude = loc.Latitude, loc.Longitude

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	kind, err := n.chooseIdentifier(endpoint, req.DrugName, req.GSN, req.NDCCode)
	if err != nil {
		return nil, err
	}
	req.Identifier = kind
	return req, nil
}

// NormalizeCompareRequest builds a CompareRequest from a JSON body with a medications array
func (n *RequestNormalizer) NormalizeCompareRequest(ctx context.Context, body []byte) (*CompareRequest, error) {
	raw, err := RawParamsFromJSON(body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Medications []map[string]json.RawMessage `json:"medications"`
		Drugs       []map[string]json.RawMessage `json:"drugs"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.NewValidationError("medications must be an array of objects")
	}
	meds := payload.Medications
	if len(meds) == 0 {
		meds = payload.Drugs
	}
	if len(meds) == 0 {
		return nil, apperrors.NewValidationError("at least one medication is required")
	}

	req := &CompareRequest{Medications: make([]entities.DrugIdentifier, 0, len(meds))}
	for i, m := range meds {
		medRaw := rawParamsFromFields(m)
		name := medRaw.String("name", "drugName")
		gsn, _, err := medRaw.Int("gsn")
		if err != nil {
			return nil, err
		}
		kind, err := n.chooseIdentifier(config.EndpointCompare, name, gsn, "")
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("medication %d: %s", i, apperrors.PublicMessage(err)))
		}
		id := entities.DrugIdentifier{Name: name, GSN: gsn, Identifier: kind}
		if kind == entities.IdentifierName {
			id.GSN = 0
		}
		req.Medications = append(req.Medications, id)
	}

	if req.Radius, _, err = raw.Float("radius"); err != nil {
		return nil, err
	}
	if req.Location, err = n.ResolveLocation(ctx, config.EndpointCompare, raw); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return req, nil
}

// NormalizeAlternativesRequest builds an AlternativesRequest
func (n *RequestNormalizer) NormalizeAlternativesRequest(ctx context.Context, raw RawParams) (*AlternativesRequest, error) {
	name := raw.String("drugName", "name", "drug")
	gsn, _, err := raw.Int("gsn")
	if err != nil {
		return nil, err
	}
	if _, err := n.chooseIdentifier(config.EndpointAlternatives, name, gsn, raw.String("ndcCode")); err != nil {
		return nil, err
	}

	req := &AlternativesRequest{DrugName: name}
	if req.IncludeGenerics, err = raw.Bool(true, "includeGenerics"); err != nil {
		return nil, err
	}
	if req.IncludeTherapeutic, err = raw.Bool(true, "includeTherapeutic"); err != nil {
		return nil, err
	}
	if req.Radius, _, err = raw.Float("radius"); err != nil {
		return nil, err
	}
	if req.Location, err = n.ResolveLocation(ctx, config.EndpointAlternatives, raw); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return req, nil
}

// ResolveLocation returns explicit coordinates, else the zip code's coordinates, else the
// default location. Endpoints that require a location fail instead of using the default.
func (n *RequestNormalizer) ResolveLocation(ctx context.Context, endpoint string, raw RawParams) (entities.Location, error) {
	lat, hasLat, err := raw.Float("latitude", "lat")
	if err != nil {
		return entities.Location{}, err
	}
	lon, hasLon, err := raw.Float("longitude", "lon", "lng")
	if err != nil {
		return entities.Location{}, err
	}

	if hasLat && hasLon {
		loc := entities.Location{Latitude: lat, Longitude: lon}
		if err := validateStruct(locationInput{Latitude: lat, Longitude: lon}); err != nil {
			return entities.Location{}, err
		}
		return loc, nil
	}
	if hasLat != hasLon {
		return entities.Location{}, apperrors.NewValidationError("latitude and longitude must be provided together")
	}

	if zip := raw.String("zipCode", "zip"); zip != "" {
		loc, err := n.geo.GeocodeZip(ctx, zip)
		if err == nil {
			return *loc, nil
		}
		if !errors.Is(err, providers.ErrUnknownZipCode) {
			return entities.Location{}, apperrors.NewInternalError("failed to resolve zip code", err)
		}
		if n.requireLocation[endpoint] {
			return entities.Location{}, apperrors.NewValidationError(fmt.Sprintf("unrecognized zip code %q", zip))
		}
		return n.geo.DefaultLocation(), nil
	}

	if n.requireLocation[endpoint] {
		return entities.Location{}, apperrors.NewValidationError("latitude and longitude or a zip code is required")
	}
	return n.geo.DefaultLocation(), nil
}

func (n *RequestNormalizer) chooseIdentifier(endpoint, name string, gsn int, ndc string) (entities.IdentifierKind, error) {
	order := n.Precedence(endpoint)
	for _, kind := range order {
		switch {
		case kind == entities.IdentifierGSN && gsn > 0,
			kind == entities.IdentifierName && name != "",
			kind == entities.IdentifierNDC && ndc != "":
			return kind, nil
		}
	}
	return "", apperrors.NewValidationError(identifierRequiredMessage(order))
}

func identifierRequiredMessage(order []entities.IdentifierKind) string {
	fields := make([]string, 0, len(order))
	for _, kind := range order {
		switch kind {
		case entities.IdentifierName:
			fields = append(fields, "drugName")
		case entities.IdentifierGSN:
			fields = append(fields, "gsn")
		case entities.IdentifierNDC:
			fields = append(fields, "ndcCode")
		}
	}
	if len(fields) == 1 {
		return fields[0] + " is required"
	}
	return strings.Join(fields[:len(fields)-1], ", ") + " or " + fields[len(fields)-1] + " is required"
}

type locationInput struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := fe.Field()
		if field == "" {
			field = fe.StructField()
		}
		return apperrors.NewValidationError(fmt.Sprintf("%s %s", field, describeRule(fe.Tag(), fe.Param())))
	}
	return apperrors.NewValidationError(err.Error())
}

func describeRule(tag, param string) string {
	switch tag {
	case "gte":
		return "must be at least " + param
	case "lte":
		return "must be at most " + param
	case "required":
		return "is required"
	default:
		return "is invalid"
	}
}
