// Package mocks holds testify mocks for the domain provider interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockPricingProvider is a mock implementation of providers.PricingProvider
type MockPricingProvider struct {
	mock.Mock
}

var _ providers.PricingProvider = (*MockPricingProvider)(nil)

// NewMockPricingProvider creates a mock that asserts its expectations when the test ends.
func NewMockPricingProvider(t testingT) *MockPricingProvider {
	m := &MockPricingProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPricingProvider) SearchDrugsByPrefix(ctx context.Context, prefix string, count int, hqAlias string) ([]entities.DrugSearchHit, error) {
	args := m.Called(ctx, prefix, count, hqAlias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.DrugSearchHit), args.Error(1)
}

func (m *MockPricingProvider) GetDrugDetailsByGSN(ctx context.Context, gsn int, languageCode string) (*entities.DrugDetails, error) {
	args := m.Called(ctx, gsn, languageCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrugDetails), args.Error(1)
}

func (m *MockPricingProvider) GetDrugPrices(ctx context.Context, req entities.PriceRequest) ([]entities.PharmacyPriceResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.PharmacyPriceResult), args.Error(1)
}

func (m *MockPricingProvider) GetGroupDrugPrices(ctx context.Context, req entities.PriceRequest) ([]entities.PharmacyPriceResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.PharmacyPriceResult), args.Error(1)
}

func (m *MockPricingProvider) ComparePrices(ctx context.Context, identifiers []entities.DrugIdentifier, lat, lon, radius float64) ([]entities.PriceComparison, error) {
	args := m.Called(ctx, identifiers, lat, lon, radius)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.PriceComparison), args.Error(1)
}

func (m *MockPricingProvider) GetPharmacies(ctx context.Context, lat, lon float64, count int) ([]entities.Pharmacy, error) {
	args := m.Called(ctx, lat, lon, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Pharmacy), args.Error(1)
}
