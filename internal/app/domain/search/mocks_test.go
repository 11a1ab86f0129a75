package search

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

type MockClient struct {
	mock.Mock
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Geocode(ctx context.Context, text string) (*Point, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Point), args.Error(1)
}

func (m *MockClient) Places(ctx context.Context, q PlacesQuery) ([]PlaceFeature, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PlaceFeature), args.Error(1)
}

type MockService struct {
	mock.Mock
}

var _ Service = (*MockService)(nil)

func (m *MockService) Search(ctx context.Context, query, interest string) (models.SearchResponse, error) {
	args := m.Called(ctx, query, interest)
	return args.Get(0).(models.SearchResponse), args.Error(1)
}
