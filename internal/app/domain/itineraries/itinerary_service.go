package itineraries

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
	"github.com/FACorreiaa/go-tripboard/internal/app/observability/metrics"
)

const tracerName = "ItineraryService"

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateItinerary(ctx context.Context, userID uuid.UUID, params models.CreateItineraryParams) (uuid.UUID, error)
	ListItineraries(ctx context.Context, userID uuid.UUID, countryISO2 string) ([]models.Itinerary, error)
	GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (models.Itinerary, error)
	CountryCounts(ctx context.Context, userID uuid.UUID) ([]models.CountryCount, error)

	LoadTimeline(ctx context.Context, userID, itineraryID uuid.UUID, selectedDay *uuid.UUID) (models.TimelineView, error)
	AddDay(ctx context.Context, userID, itineraryID uuid.UUID, params models.AddDayParams) (models.TimelineView, error)
	AddItem(ctx context.Context, userID, itineraryID, dayID uuid.UUID, params models.AddItemParams) (models.TimelineView, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID, selectedDay *uuid.UUID) (models.TimelineView, error)
	DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func countMutation(ctx context.Context, op string) {
	metrics.Get().ItineraryMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

func fail(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

// CreateItinerary validates and stores a new itinerary.
func (s *ServiceImpl) CreateItinerary(ctx context.Context, userID uuid.UUID, params models.CreateItineraryParams) (uuid.UUID, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CreateItinerary", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "CreateItinerary"), zap.String("userID", userID.String()))
	l.Debug("Creating itinerary")

	if userID == uuid.Nil {
		fail(span, models.ErrUnauthenticated, "Not authenticated")
		return uuid.Nil, models.ErrUnauthenticated
	}

	clean, err := ValidateItinerary(params)
	if err != nil {
		l.Warn("Rejected itinerary", zap.Error(err))
		fail(span, err, "Invalid itinerary")
		return uuid.Nil, err
	}
	span.SetAttributes(attribute.String("itinerary.country", clean.CountryISO2))

	id, err := s.repo.CreateItinerary(ctx, userID, clean)
	if err != nil {
		l.Error("Failed to create itinerary", zap.Error(err))
		fail(span, err, "Failed to create itinerary")
		return uuid.Nil, err
	}

	countMutation(ctx, "create_itinerary")
	l.Info("Itinerary created", zap.String("itineraryID", id.String()))
	span.SetStatus(codes.Ok, "Itinerary created")
	return id, nil
}

// ValidateItinerary trims and checks an itinerary payload.
func ValidateItinerary(p models.CreateItineraryParams) (models.CreateItineraryParams, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.StartDate = strings.TrimSpace(p.StartDate)
	p.EndDate = strings.TrimSpace(p.EndDate)
	p.CountryISO2 = strings.ToUpper(strings.TrimSpace(p.CountryISO2))
	if p.Title == "" || p.StartDate == "" || p.EndDate == "" || p.CountryISO2 == "" {
		return p, models.ErrMissingFields
	}

	if len(p.CountryISO2) != 2 {
		return p, models.NewValidationError("Invalid country code: %s", p.CountryISO2)
	}
	region, err := language.ParseRegion(p.CountryISO2)
	if err != nil || !region.IsCountry() {
		return p, models.NewValidationError("Invalid country code: %s", p.CountryISO2)
	}

	start, err := time.Parse(models.DateLayout, p.StartDate)
	if err != nil {
		return p, models.NewValidationError("Invalid start_date, expected YYYY-MM-DD")
	}
	end, err := time.Parse(models.DateLayout, p.EndDate)
	if err != nil {
		return p, models.NewValidationError("Invalid end_date, expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return p, models.NewValidationError("end_date must not be before start_date")
	}

	if p.Notes != nil {
		notes := strings.TrimSpace(*p.Notes)
		if notes == "" {
			p.Notes = nil
		} else {
			p.Notes = &notes
		}
	}
	return p, nil
}

func (s *ServiceImpl) ListItineraries(ctx context.Context, userID uuid.UUID, countryISO2 string) ([]models.Itinerary, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ListItineraries", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("itinerary.country", countryISO2),
	))
	defer span.End()

	list, err := s.repo.ListItineraries(ctx, userID, strings.ToUpper(strings.TrimSpace(countryISO2)))
	if err != nil {
		s.logger.Error("Failed to list itineraries", zap.String("userID", userID.String()), zap.Error(err))
		fail(span, err, "Failed to list itineraries")
		return nil, err
	}
	span.SetAttributes(attribute.Int("itineraries.count", len(list)))
	return list, nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (models.Itinerary, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "GetItinerary", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	it, err := s.repo.GetItinerary(ctx, userID, itineraryID)
	if err != nil {
		fail(span, err, "Failed to get itinerary")
		return models.Itinerary{}, err
	}
	return it, nil
}

func (s *ServiceImpl) CountryCounts(ctx context.Context, userID uuid.UUID) ([]models.CountryCount, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CountryCounts")
	defer span.End()

	counts, err := s.repo.CountryCounts(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count itineraries", zap.String("userID", userID.String()), zap.Error(err))
		fail(span, err, "Failed to count itineraries")
		return nil, err
	}
	return counts, nil
}

// LoadTimeline builds the timeline of an itinerary, keeping selectedDay
// selected when it still exists.
func (s *ServiceImpl) LoadTimeline(ctx context.Context, userID, itineraryID uuid.UUID, selectedDay *uuid.UUID) (models.TimelineView, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "LoadTimeline", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	view := NewView(s.repo, userID, itineraryID)
	if selectedDay != nil {
		view.Select(*selectedDay)
	}
	if err := view.Reload(ctx); err != nil {
		s.logger.Error("Failed to load timeline", zap.String("itineraryID", itineraryID.String()), zap.Error(err))
		fail(span, err, "Failed to load timeline")
		return view.Snapshot(), err
	}
	return view.Snapshot(), nil
}

// CoerceDayIndex turns anything that is not a positive integer fitting the
// day_index column into 1.
func CoerceDayIndex(raw string) int {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil || n < 1 {
		return 1
	}
	return int(n)
}

// AddDay appends a day and returns the timeline with the new highest day selected.
func (s *ServiceImpl) AddDay(ctx context.Context, userID, itineraryID uuid.UUID, params models.AddDayParams) (models.TimelineView, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "AddDay", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "AddDay"), zap.String("itineraryID", itineraryID.String()))

	dayIndex := CoerceDayIndex(string(params.DayIndex))
	var date *string
	if d := strings.TrimSpace(params.Date); d != "" {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			err = models.NewValidationError("Invalid date, expected YYYY-MM-DD")
			fail(span, err, "Invalid day")
			return models.TimelineView{}, err
		}
		date = &d
	}
	span.SetAttributes(attribute.Int("day.index", dayIndex))

	day, err := s.repo.InsertDay(ctx, userID, itineraryID, dayIndex, date)
	if err != nil {
		l.Warn("Failed to add day", zap.Int("dayIndex", dayIndex), zap.Error(err))
		fail(span, err, "Failed to add day")
		return models.TimelineView{}, err
	}
	countMutation(ctx, "add_day")
	l.Info("Day added", zap.String("dayID", day.ID.String()), zap.Int("dayIndex", day.DayIndex))

	view := NewView(s.repo, userID, itineraryID)
	if err := view.ReloadAfterDayAdded(ctx); err != nil {
		fail(span, err, "Failed to reload timeline")
		return view.Snapshot(), err
	}
	return view.Snapshot(), nil
}

// ValidateItem checks an item payload before it reaches storage.
func ValidateItem(dayID uuid.UUID, p models.AddItemParams) (models.ItineraryItem, error) {
	if dayID == uuid.Nil {
		return models.ItineraryItem{}, models.ErrMissingDay
	}
	activity := strings.TrimSpace(p.Activity)
	if activity == "" {
		return models.ItineraryItem{}, models.ErrActivityRequired
	}

	item := models.ItineraryItem{
		DayID:    dayID,
		Activity: activity,
		Location: optional(p.Location),
		Notes:    optional(p.Notes),
		Cost:     models.ParseCost(string(p.Cost)),
	}
	if raw := strings.TrimSpace(p.Time); raw != "" {
		t, err := parseTimeOfDay(raw)
		if err != nil {
			return models.ItineraryItem{}, models.NewValidationError("Invalid time, expected HH:MM")
		}
		item.Time = &t
	}
	return item, nil
}

func parseTimeOfDay(raw string) (string, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("invalid time of day %q", raw)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// AddItem stores an item under dayID and returns the timeline with that day selected.
func (s *ServiceImpl) AddItem(ctx context.Context, userID, itineraryID, dayID uuid.UUID, params models.AddItemParams) (models.TimelineView, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "AddItem", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
		attribute.String("day.id", dayID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "AddItem"), zap.String("dayID", dayID.String()))

	item, err := ValidateItem(dayID, params)
	if err != nil {
		l.Warn("Rejected item", zap.Error(err))
		fail(span, err, "Invalid item")
		return models.TimelineView{}, err
	}

	created, err := s.repo.InsertItem(ctx, userID, itineraryID, item)
	if err != nil {
		l.Error("Failed to add item", zap.Error(err))
		fail(span, err, "Failed to add item")
		return models.TimelineView{}, err
	}
	countMutation(ctx, "add_item")
	l.Info("Item added", zap.String("itemID", created.ID.String()))

	return s.LoadTimeline(ctx, userID, itineraryID, &dayID)
}

// DeleteItem removes one item and returns its itinerary's reloaded timeline.
func (s *ServiceImpl) DeleteItem(ctx context.Context, userID, itemID uuid.UUID, selectedDay *uuid.UUID) (models.TimelineView, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DeleteItem", trace.WithAttributes(
		attribute.String("item.id", itemID.String()),
	))
	defer span.End()

	itineraryID, err := s.repo.DeleteItem(ctx, userID, itemID)
	if err != nil {
		s.logger.Warn("Failed to delete item", zap.String("itemID", itemID.String()), zap.Error(err))
		fail(span, err, "Failed to delete item")
		return models.TimelineView{}, err
	}
	countMutation(ctx, "delete_item")

	return s.LoadTimeline(ctx, userID, itineraryID, selectedDay)
}

// DeleteItinerary removes an itinerary with all of its days and items.
func (s *ServiceImpl) DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DeleteItinerary", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	if err := s.repo.DeleteItineraryCascade(ctx, userID, itineraryID); err != nil {
		s.logger.Error("Failed to delete itinerary", zap.String("itineraryID", itineraryID.String()), zap.Error(err))
		fail(span, err, "Failed to delete itinerary")
		return err
	}
	countMutation(ctx, "delete_itinerary")
	s.logger.Info("Itinerary deleted", zap.String("itineraryID", itineraryID.String()))
	span.SetStatus(codes.Ok, "Itinerary deleted")
	return nil
}
