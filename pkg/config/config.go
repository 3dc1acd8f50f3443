package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mock data features. Each maps to a NEXT_PUBLIC_USE_MOCK_<FEATURE> flag.
const (
	FeatureSearch       = "search"
	FeatureDrugInfo     = "drug_info"
	FeaturePrices       = "prices"
	FeaturePharmacies   = "pharmacies"
	FeatureCompare      = "compare"
	FeatureAlternatives = "alternatives"
)

// Features lists every feature that can be switched to mock data.
var Features = []string{
	FeatureSearch,
	FeatureDrugInfo,
	FeaturePrices,
	FeaturePharmacies,
	FeatureCompare,
	FeatureAlternatives,
}

// Price endpoints whose drug identifier precedence is configurable.
const (
	EndpointPrices       = "prices"
	EndpointPricesNDC    = "prices_ndc"
	EndpointGroupPrices  = "group_prices"
	EndpointCompare      = "compare"
	EndpointAlternatives = "alternatives"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	App        AppConfig
	PricingAPI PricingAPIConfig
	MockData   MockDataConfig
	Precedence map[string][]string
	// RequireLocation lists price endpoints that reject requests without a resolvable location.
	RequireLocation []string
	Debug           DebugConfig
	Redis           RedisConfig
	Cache           CacheConfig
	OTEL            OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env string
}

// PricingAPIConfig holds the upstream pharmacy pricing API settings
type PricingAPIConfig struct {
	BaseURL       string
	AuthURL       string
	ClientID      string
	ClientSecret  string
	Scope         string
	HQMappingName string
	LanguageCode  string
	Timeout       time.Duration
	// RateLimit is the maximum upstream requests per second; 0 disables limiting.
	RateLimit float64
}

// MockDataConfig controls when mock data replaces upstream data
type MockDataConfig struct {
	UseMockData    bool
	FallbackToMock bool
	Features       map[string]bool
}

// DebugConfig guards the diagnostics routes
type DebugConfig struct {
	APIKey string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds response cache settings
type CacheConfig struct {
	Enabled bool
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS"),
		},
		App: AppConfig{
			Env: getEnv("APP_ENV", "development"),
		},
		PricingAPI: PricingAPIConfig{
			BaseURL:       getEnv("AMERICAS_PHARMACY_API_URL", "https://api.americaspharmacy.com"),
			AuthURL:       getEnv("AMERICAS_PHARMACY_AUTH_URL", "https://auth.americaspharmacy.com/oauth2/token"),
			ClientID:      getEnv("AMERICAS_PHARMACY_CLIENT_ID", ""),
			ClientSecret:  getEnv("AMERICAS_PHARMACY_CLIENT_SECRET", ""),
			Scope:         getEnv("AMERICAS_PHARMACY_SCOPE", "ccds.read"),
			HQMappingName: getEnv("AMERICAS_PHARMACY_HQ_MAPPING", "walkerrx"),
			LanguageCode:  getEnv("AMERICAS_PHARMACY_LANGUAGE", "en"),
			Timeout:       getEnvAsDuration("AMERICAS_PHARMACY_TIMEOUT", 10*time.Second),
			RateLimit:     getEnvAsFloat("AMERICAS_PHARMACY_RATE_LIMIT", 0),
		},
		MockData: MockDataConfig{
			UseMockData:    getEnvAsBool("NEXT_PUBLIC_USE_MOCK_DATA", false),
			FallbackToMock: getEnvAsBool("NEXT_PUBLIC_FALLBACK_TO_MOCK", true),
			Features:       make(map[string]bool, len(Features)),
		},
		Precedence:      make(map[string][]string),
		RequireLocation: getEnvAsList("REQUIRE_LOCATION_ENDPOINTS"),
		Debug: DebugConfig{
			APIKey: getEnv("API_DEBUG_KEY", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Enabled: getEnvAsBool("CACHE_ENABLED", false),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "rx-price-discovery"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	for _, feature := range Features {
		cfg.MockData.Features[feature] = getEnvAsBool(mockFlagName(feature), false)
	}

	for _, endpoint := range []string{EndpointPrices, EndpointPricesNDC, EndpointGroupPrices, EndpointCompare, EndpointAlternatives} {
		if list := getEnvAsList("DRUG_ID_PRECEDENCE_" + strings.ToUpper(endpoint)); len(list) > 0 {
			cfg.Precedence[endpoint] = list
		}
	}

	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	if cfg.PricingAPI.Timeout <= 0 {
		return nil, fmt.Errorf("AMERICAS_PHARMACY_TIMEOUT must be positive")
	}
	if cfg.PricingAPI.RateLimit < 0 {
		return nil, fmt.Errorf("AMERICAS_PHARMACY_RATE_LIMIT must not be negative")
	}

	return cfg, nil
}

// UseMockDataFor reports whether feature must be served from mock data without calling upstream.
func (c *MockDataConfig) UseMockDataFor(feature string) bool {
	return c.UseMockData || c.Features[feature]
}

// HasCredentials reports whether the client-credentials exchange can be attempted.
func (c *PricingAPIConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func mockFlagName(feature string) string {
	return "NEXT_PUBLIC_USE_MOCK_" + strings.ToUpper(feature)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration syntax ("10s") or a bare number of milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
