package itineraries

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

// MockRepository is a testify mock of Repository.
type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) CreateItinerary(ctx context.Context, userID uuid.UUID, params models.CreateItineraryParams) (uuid.UUID, error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) ListItineraries(ctx context.Context, userID uuid.UUID, countryISO2 string) ([]models.Itinerary, error) {
	args := m.Called(ctx, userID, countryISO2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Itinerary), args.Error(1)
}

func (m *MockRepository) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (models.Itinerary, error) {
	args := m.Called(ctx, userID, itineraryID)
	return args.Get(0).(models.Itinerary), args.Error(1)
}

func (m *MockRepository) CountryCounts(ctx context.Context, userID uuid.UUID) ([]models.CountryCount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CountryCount), args.Error(1)
}

func (m *MockRepository) ListDays(ctx context.Context, userID, itineraryID uuid.UUID) ([]models.ItineraryDay, error) {
	args := m.Called(ctx, userID, itineraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItineraryDay), args.Error(1)
}

func (m *MockRepository) ListItems(ctx context.Context, userID uuid.UUID, dayIDs []uuid.UUID) ([]models.ItineraryItem, error) {
	args := m.Called(ctx, userID, dayIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItineraryItem), args.Error(1)
}

func (m *MockRepository) InsertDay(ctx context.Context, userID, itineraryID uuid.UUID, dayIndex int, date *string) (models.ItineraryDay, error) {
	args := m.Called(ctx, userID, itineraryID, dayIndex, date)
	return args.Get(0).(models.ItineraryDay), args.Error(1)
}

func (m *MockRepository) InsertItem(ctx context.Context, userID, itineraryID uuid.UUID, item models.ItineraryItem) (models.ItineraryItem, error) {
	args := m.Called(ctx, userID, itineraryID, item)
	return args.Get(0).(models.ItineraryItem), args.Error(1)
}

func (m *MockRepository) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) DeleteItineraryCascade(ctx context.Context, userID, itineraryID uuid.UUID) error {
	args := m.Called(ctx, userID, itineraryID)
	return args.Error(0)
}

// MockService is a testify mock of Service.
type MockService struct {
	mock.Mock
}

var _ Service = (*MockService)(nil)

func (m *MockService) CreateItinerary(ctx context.Context, userID uuid.UUID, params models.CreateItineraryParams) (uuid.UUID, error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockService) ListItineraries(ctx context.Context, userID uuid.UUID, countryISO2 string) ([]models.Itinerary, error) {
	args := m.Called(ctx, userID, countryISO2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Itinerary), args.Error(1)
}

func (m *MockService) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (models.Itinerary, error) {
	args := m.Called(ctx, userID, itineraryID)
	return args.Get(0).(models.Itinerary), args.Error(1)
}

func (m *MockService) CountryCounts(ctx context.Context, userID uuid.UUID) ([]models.CountryCount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CountryCount), args.Error(1)
}

func (m *MockService) LoadTimeline(ctx context.Context, userID, itineraryID uuid.UUID, selectedDay *uuid.UUID) (models.TimelineView, error) {
	args := m.Called(ctx, userID, itineraryID, selectedDay)
	return args.Get(0).(models.TimelineView), args.Error(1)
}

func (m *MockService) AddDay(ctx context.Context, userID, itineraryID uuid.UUID, params models.AddDayParams) (models.TimelineView, error) {
	args := m.Called(ctx, userID, itineraryID, params)
	return args.Get(0).(models.TimelineView), args.Error(1)
}

func (m *MockService) AddItem(ctx context.Context, userID, itineraryID, dayID uuid.UUID, params models.AddItemParams) (models.TimelineView, error) {
	args := m.Called(ctx, userID, itineraryID, dayID, params)
	return args.Get(0).(models.TimelineView), args.Error(1)
}

func (m *MockService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID, selectedDay *uuid.UUID) (models.TimelineView, error) {
	args := m.Called(ctx, userID, itemID, selectedDay)
	return args.Get(0).(models.TimelineView), args.Error(1)
}

func (m *MockService) DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error {
	args := m.Called(ctx, userID, itineraryID)
	return args.Error(0)
}
