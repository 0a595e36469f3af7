package mocks

import (
	"context"

	"github.com/dukex/area/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockAreaClient is a mock implementation of services.AreaClient interface.
type MockAreaClient struct {
	mock.Mock
}

func (m *MockAreaClient) CreateArea(ctx context.Context, request *models.AreaRequest) (*models.AreaResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.AreaResponse), args.Error(1)
}

func (m *MockAreaClient) UpdateArea(ctx context.Context, id string, request *models.AreaRequest) (*models.AreaResponse, error) {
	args := m.Called(ctx, id, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.AreaResponse), args.Error(1)
}

func (m *MockAreaClient) GetArea(ctx context.Context, id string) (*models.AreaResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.AreaResponse), args.Error(1)
}

func (m *MockAreaClient) ConnectedServices(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}
