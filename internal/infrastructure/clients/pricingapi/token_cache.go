package pricingapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/rxpricediscovery/backend/pkg/errors"
)

// TokenSafetyMargin is subtracted from expires_in so a token is never used in its last minutes.
// Tokens living no longer than the margin use half their lifetime instead.
const TokenSafetyMargin = 5 * time.Minute

// Clock abstracts time so token expiry can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// TokenCacheConfig configures a TokenCache
type TokenCacheConfig struct {
	AuthURL      string
	ClientID     string
	ClientSecret string
	Scope        string

	HTTPClient *http.Client
	Clock      Clock
	Metrics    *observability.Metrics
}

type cachedToken struct {
	value     string
	tokenType string
	issuedAt  time.Time
	expiresAt time.Time
}

// TokenCache holds the single current bearer token for the pricing API and
// refreshes it through an OAuth2 client-credentials exchange.
//
// The current token is replaced wholesale on refresh. Concurrent callers that
// find no valid token share one in-flight exchange.
type TokenCache struct {
	oauth      *clientcredentials.Config
	httpClient *http.Client
	clock      Clock
	metrics    *observability.Metrics

	mu      sync.RWMutex
	current *cachedToken

	flight singleflight.Group
}

// NewTokenCache creates a token cache. Nothing is fetched until the first GetToken.
func NewTokenCache(cfg TokenCacheConfig) *TokenCache {
	var scopes []string
	if cfg.Scope != "" {
		scopes = []string{cfg.Scope}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}

	return &TokenCache{
		oauth: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.AuthURL,
			Scopes:       scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
		clock:      clock,
		metrics:    cfg.Metrics,
	}
}

// GetToken returns the cached token while it is valid, otherwise exchanges credentials.
// A stale token is never returned when the exchange fails.
func (c *TokenCache) GetToken(ctx context.Context) (string, error) {
	if tok := c.validToken(); tok != nil {
		return tok.value, nil
	}
	return c.refresh(ctx, false)
}

// ForceRefresh exchanges credentials regardless of the cached token's validity.
func (c *TokenCache) ForceRefresh(ctx context.Context) (string, error) {
	return c.refresh(ctx, true)
}

// Status reports whether a token is cached and how long it remains valid.
func (c *TokenCache) Status() entities.TokenStatus {
	c.mu.RLock()
	tok := c.current
	c.mu.RUnlock()

	if tok == nil {
		return entities.TokenStatus{}
	}

	now := c.clock.Now()
	issuedAt, expiresAt := tok.issuedAt, tok.expiresAt
	status := entities.TokenStatus{
		HasToken:  true,
		TokenType: tok.tokenType,
		IssuedAt:  &issuedAt,
		ExpiresAt: &expiresAt,
		Valid:     now.Before(tok.expiresAt),
	}
	if status.Valid {
		status.RemainingSeconds = int64(tok.expiresAt.Sub(now) / time.Second)
	}
	return status
}

func (c *TokenCache) validToken() *cachedToken {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current != nil && c.clock.Now().Before(c.current.expiresAt) {
		return c.current
	}
	return nil
}

func (c *TokenCache) refresh(ctx context.Context, force bool) (string, error) {
	key := "token"
	if force {
		key = "force"
	}

	// The shared exchange must not be cancelled by whichever caller started it.
	flightCtx := context.WithoutCancel(ctx)

	ch := c.flight.DoChan(key, func() (interface{}, error) {
		if !force {
			if tok := c.validToken(); tok != nil {
				return tok.value, nil
			}
		}
		tok, err := c.exchange(flightCtx)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.current = tok
		c.mu.Unlock()
		return tok.value, nil
	})

	select {
	case <-ctx.Done():
		return "", apperrors.NewAuthenticationError("token exchange cancelled", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *TokenCache) exchange(ctx context.Context) (*cachedToken, error) {
	logger := observability.LoggerFromContext(ctx)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	issuedAt := c.clock.Now()
	tok, err := c.oauth.Token(ctx)
	if err != nil {
		observability.RecordTokenRefresh(ctx, c.metrics, "failure")
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			logger.Error().
				Int("status", retrieveErr.Response.StatusCode).
				Str("body", truncate(string(retrieveErr.Body), maxErrorBodyLog)).
				Msg("pricing api token exchange rejected")
			return nil, apperrors.NewAuthenticationError(
				fmt.Sprintf("token exchange rejected with status %d", retrieveErr.Response.StatusCode), err)
		}
		logger.Error().Err(err).Msg("pricing api token exchange failed")
		return nil, apperrors.NewAuthenticationError("token exchange failed", err)
	}

	expiresIn, ok := expiresInFromResponse(tok)
	if !ok && !tok.Expiry.IsZero() {
		expiresIn = tok.Expiry.Sub(c.clock.Now())
	}
	if expiresIn <= 0 {
		observability.RecordTokenRefresh(ctx, c.metrics, "failure")
		return nil, apperrors.NewAuthenticationError("token response missing expires_in", nil)
	}

	margin := TokenSafetyMargin
	if expiresIn <= margin {
		margin = expiresIn / 2
		logger.Warn().
			Dur("expires_in", expiresIn).
			Dur("safety_margin", margin).
			Msg("pricing api token lifetime shorter than safety margin")
	}

	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	cached := &cachedToken{
		value:     tok.AccessToken,
		tokenType: tokenType,
		issuedAt:  issuedAt,
		expiresAt: issuedAt.Add(expiresIn - margin),
	}

	observability.RecordTokenRefresh(ctx, c.metrics, "success")
	logger.Info().
		Time("expires_at", cached.expiresAt).
		Int64("expires_in_seconds", int64(expiresIn/time.Second)).
		Msg("pricing api token refreshed")

	return cached, nil
}

// expiresInFromResponse reads expires_in from the raw token response. The
// clientcredentials package only exposes it as an absolute Expiry computed from
// the wall clock, which would bypass the injected Clock.
func expiresInFromResponse(tok *oauth2.Token) (time.Duration, bool) {
	var seconds float64
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		seconds = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		seconds = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		seconds = f
	case int:
		seconds = float64(v)
	case int64:
		seconds = float64(v)
	default:
		return 0, false
	}
	if seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}
