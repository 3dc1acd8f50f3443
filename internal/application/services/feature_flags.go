package services

import (
	"github.com/zatekoja/rxpricediscovery/backend/pkg/config"
)

// Strategy decides where a feature's data comes from
type Strategy string

const (
	// StrategyLiveOnly calls upstream and surfaces its errors
	StrategyLiveOnly Strategy = "live_only"
	// StrategyLiveWithFallback calls upstream and substitutes mock data when it fails
	StrategyLiveWithFallback Strategy = "live_with_fallback"
	// StrategyMockOnly never calls upstream
	StrategyMockOnly Strategy = "mock_only"
)

// FeatureFlags holds the strategy chosen for every feature at startup
type FeatureFlags struct {
	strategies map[string]Strategy
}

// NewFeatureFlags derives per-feature strategies from the mock data settings.
// Without upstream credentials, features that may fall back go straight to mock data.
func NewFeatureFlags(cfg config.MockDataConfig, hasCredentials bool) *FeatureFlags {
	strategies := make(map[string]Strategy, len(config.Features))
	for _, feature := range config.Features {
		switch {
		case cfg.UseMockDataFor(feature):
			strategies[feature] = StrategyMockOnly
		case cfg.FallbackToMock && !hasCredentials:
			strategies[feature] = StrategyMockOnly
		case cfg.FallbackToMock:
			strategies[feature] = StrategyLiveWithFallback
		default:
			strategies[feature] = StrategyLiveOnly
		}
	}
	return &FeatureFlags{strategies: strategies}
}

// NewStaticFeatureFlags uses one strategy for every feature
func NewStaticFeatureFlags(strategy Strategy) *FeatureFlags {
	strategies := make(map[string]Strategy, len(config.Features))
	for _, feature := range config.Features {
		strategies[feature] = strategy
	}
	return &FeatureFlags{strategies: strategies}
}

// StrategyFor returns the strategy for feature. Unknown features fall back to mock on failure.
func (f *FeatureFlags) StrategyFor(feature string) Strategy {
	if s, ok := f.strategies[feature]; ok {
		return s
	}
	return StrategyLiveWithFallback
}

// Strategies returns a copy of every feature's strategy
func (f *FeatureFlags) Strategies() map[string]Strategy {
	out := make(map[string]Strategy, len(f.strategies))
	for k, v := range f.strategies {
		out[k] = v
	}
	return out
}
