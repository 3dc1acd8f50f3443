package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PricingAPIConfig(t *testing.T) {
	t.Setenv("AMERICAS_PHARMACY_API_URL", "http://pricing.test")
	t.Setenv("AMERICAS_PHARMACY_AUTH_URL", "http://auth.test/token")
	t.Setenv("AMERICAS_PHARMACY_CLIENT_ID", "client")
	t.Setenv("AMERICAS_PHARMACY_CLIENT_SECRET", "secret")
	t.Setenv("AMERICAS_PHARMACY_HQ_MAPPING", "acme")
	t.Setenv("AMERICAS_PHARMACY_TIMEOUT", "2500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://pricing.test", cfg.PricingAPI.BaseURL)
	assert.Equal(t, "http://auth.test/token", cfg.PricingAPI.AuthURL)
	assert.Equal(t, "acme", cfg.PricingAPI.HQMappingName)
	assert.Equal(t, 2500*time.Millisecond, cfg.PricingAPI.Timeout)
	assert.True(t, cfg.PricingAPI.HasCredentials())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "walkerrx", cfg.PricingAPI.HQMappingName)
	assert.Equal(t, 10*time.Second, cfg.PricingAPI.Timeout)
	assert.Zero(t, cfg.PricingAPI.RateLimit)
	assert.False(t, cfg.MockData.UseMockData)
	assert.True(t, cfg.MockData.FallbackToMock)
	assert.Empty(t, cfg.Precedence)
	assert.False(t, cfg.PricingAPI.HasCredentials())
}

func TestLoad_MockFlags(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_USE_MOCK_PRICES", "true")
	t.Setenv("NEXT_PUBLIC_FALLBACK_TO_MOCK", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.MockData.UseMockDataFor(FeaturePrices))
	assert.False(t, cfg.MockData.UseMockDataFor(FeatureSearch))
	assert.False(t, cfg.MockData.FallbackToMock)

	t.Setenv("NEXT_PUBLIC_USE_MOCK_DATA", "true")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.MockData.UseMockDataFor(FeatureSearch))
}

func TestLoad_IdentifierPrecedence(t *testing.T) {
	t.Setenv("DRUG_ID_PRECEDENCE_PRICES", "Name, gsn ,ndc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "gsn", "ndc"}, cfg.Precedence[EndpointPrices])
	_, ok := cfg.Precedence[EndpointCompare]
	assert.False(t, ok)
}

func TestLoad_RejectsNegativeRateLimit(t *testing.T) {
	t.Setenv("AMERICAS_PHARMACY_RATE_LIMIT", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_OriginsAndRequiredLocation(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.RequireLocation)

	t.Setenv("ALLOWED_ORIGINS", "https://rx.example.com, https://admin.example.com")
	t.Setenv("REQUIRE_LOCATION_ENDPOINTS", "prices,group_prices")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://rx.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{EndpointPrices, EndpointGroupPrices}, cfg.RequireLocation)
}
