package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
)

// MockTokenSource is a mock implementation of providers.TokenSource
type MockTokenSource struct {
	mock.Mock
}

var _ providers.TokenSource = (*MockTokenSource)(nil)

// NewMockTokenSource creates a mock that asserts its expectations when the test ends.
func NewMockTokenSource(t testingT) *MockTokenSource {
	m := &MockTokenSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenSource) GetToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTokenSource) ForceRefresh(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTokenSource) Status() entities.TokenStatus {
	args := m.Called()
	return args.Get(0).(entities.TokenStatus)
}
