package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/zatekoja/rxpricediscovery/backend/internal/application/services"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/rxpricediscovery/backend/pkg/errors"
)

// HeaderDataSource is set to "mock" on responses answered from mock data.
// Bare-array endpoints have no body field to carry that marker.
const HeaderDataSource = "X-Data-Source"

const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.GetLogger().Error().Err(err).Msg("failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps err to its status code and public message
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	logger := observability.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}
	respondWithError(w, status, apperrors.PublicMessage(err))
}

func markDataSource(w http.ResponseWriter, source entities.DataSource) {
	if source.UsingMockData {
		w.Header().Set(HeaderDataSource, "mock")
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read request body")
	}
	return body, nil
}

// requestParams merges query parameters with a JSON body; body members win.
func requestParams(w http.ResponseWriter, r *http.Request) (services.RawParams, error) {
	raw := services.RawParamsFromQuery(r.URL.Query())
	if r.Body == nil {
		return raw, nil
	}
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	fromBody, err := services.RawParamsFromJSON(body)
	if err != nil {
		return nil, err
	}
	for k, v := range fromBody {
		raw[k] = v
	}
	return raw, nil
}
