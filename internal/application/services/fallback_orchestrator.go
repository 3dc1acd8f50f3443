package services

import (
	"context"
	"errors"
	"strings"

	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/mockdata"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/rxpricediscovery/backend/pkg/errors"
)

// Fallback reasons recorded on metrics
const (
	reasonMockConfigured = "mock_configured"
)

// FallbackOrchestrator decides per request whether live or mock data answers it.
// One live attempt is made at most; substitution is terminal.
type FallbackOrchestrator struct {
	flags   *FeatureFlags
	metrics *observability.Metrics
}

// NewFallbackOrchestrator creates a new orchestrator
func NewFallbackOrchestrator(flags *FeatureFlags, metrics *observability.Metrics) *FallbackOrchestrator {
	return &FallbackOrchestrator{flags: flags, metrics: metrics}
}

// Strategy returns the strategy for a feature
func (o *FallbackOrchestrator) Strategy(feature string) Strategy {
	return o.flags.StrategyFor(feature)
}

// withFallback runs live unless feature is mock-only. When live fails with an upstream
// error and the strategy allows it, mock answers instead. Validation errors are never
// substituted, and when mock has no data the live error is returned.
func withFallback[T any](
	ctx context.Context,
	o *FallbackOrchestrator,
	feature string,
	live func(ctx context.Context) (T, error),
	mock func() (T, error),
) (T, entities.DataSource, error) {
	var zero T
	logger := observability.LoggerFromContext(ctx)
	strategy := o.flags.StrategyFor(feature)

	if strategy == StrategyMockOnly {
		v, err := mock()
		if err != nil {
			if errors.Is(err, mockdata.ErrNoMockData) {
				return zero, entities.DataSource{}, apperrors.NewNotFoundError("no data available for the requested drug")
			}
			return zero, entities.DataSource{}, err
		}
		observability.RecordFallback(ctx, o.metrics, feature, reasonMockConfigured)
		return v, entities.DataSource{UsingMockData: true}, nil
	}

	v, liveErr := live(ctx)
	if liveErr == nil {
		return v, entities.DataSource{}, nil
	}
	if strategy == StrategyLiveOnly || !apperrors.IsUpstream(liveErr) {
		return zero, entities.DataSource{}, liveErr
	}

	mv, err := mock()
	if err != nil {
		logger.Warn().
			Err(liveErr).
			Str("feature", feature).
			AnErr("mock_error", err).
			Msg("pricing api failed and no mock data is available")
		return zero, entities.DataSource{}, liveErr
	}

	reason := strings.ToLower(string(apperrors.TypeOf(liveErr)))
	observability.RecordFallback(ctx, o.metrics, feature, reason)
	logger.Warn().
		Err(liveErr).
		Str("feature", feature).
		Msg("serving mock data after pricing api failure")

	return mv, entities.DataSource{UsingMockData: true, FallbackReason: liveErr.Error()}, nil
}
