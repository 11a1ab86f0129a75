package itineraries

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

// TimelineSource reads the rows a timeline is built from.
type TimelineSource interface {
	ListDays(ctx context.Context, userID, itineraryID uuid.UUID) ([]models.ItineraryDay, error)
	ListItems(ctx context.Context, userID uuid.UUID, dayIDs []uuid.UUID) ([]models.ItineraryItem, error)
}

// BuildTimeline nests items under their days. Days are ordered by day_index
// and items by time of day, untimed items last; ties keep their input order.
// Items whose day is not in days are dropped.
func BuildTimeline(days []models.ItineraryDay, items []models.ItineraryItem) []models.DayWithItems {
	out := make([]models.DayWithItems, 0, len(days))
	pos := make(map[uuid.UUID]int, len(days))

	sorted := slices.Clone(days)
	slices.SortStableFunc(sorted, func(a, b models.ItineraryDay) int {
		return a.DayIndex - b.DayIndex
	})
	for _, d := range sorted {
		pos[d.ID] = len(out)
		out = append(out, models.DayWithItems{ItineraryDay: d, Items: []models.ItineraryItem{}})
	}

	for _, it := range items {
		if i, ok := pos[it.DayID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	for i := range out {
		slices.SortStableFunc(out[i].Items, compareItemTime)
	}
	return out
}

func compareItemTime(a, b models.ItineraryItem) int {
	switch {
	case a.Time == nil && b.Time == nil:
		return 0
	case a.Time == nil:
		return 1
	case b.Time == nil:
		return -1
	}
	return strings.Compare(*a.Time, *b.Time)
}

// TotalCost sums every item cost; missing costs count as zero. The sum
// saturates instead of wrapping.
func TotalCost(days []models.DayWithItems) models.Cents {
	var total models.Cents
	for _, d := range days {
		for _, it := range d.Items {
			if it.Cost == nil || *it.Cost <= 0 {
				continue
			}
			if *it.Cost > math.MaxInt64-total {
				return math.MaxInt64
			}
			total += *it.Cost
		}
	}
	return total
}

// NextDayIndex is the suggested index for a new day: one past the highest.
func NextDayIndex(days []models.DayWithItems) int {
	next := 1
	for _, d := range days {
		if d.DayIndex >= next {
			next = d.DayIndex + 1
		}
	}
	return next
}

// View is the timeline of one itinerary with a selected-day cursor.
type View struct {
	source      TimelineSource
	userID      uuid.UUID
	itineraryID uuid.UUID

	days     []models.DayWithItems
	selected *uuid.UUID
	loaded   bool
}

func NewView(source TimelineSource, userID, itineraryID uuid.UUID) *View {
	return &View{
		source:      source,
		userID:      userID,
		itineraryID: itineraryID,
		days:        []models.DayWithItems{},
	}
}

// Reload re-reads days and items. A selection that still exists is kept;
// otherwise the first day is selected. On a read failure the view is emptied.
func (v *View) Reload(ctx context.Context) error {
	if err := v.load(ctx); err != nil {
		return err
	}
	if v.selected == nil || !v.has(*v.selected) {
		v.selected = nil
		if len(v.days) > 0 {
			id := v.days[0].ID
			v.selected = &id
		}
	}
	return nil
}

// ReloadAfterDayAdded re-reads the timeline and selects the highest day.
func (v *View) ReloadAfterDayAdded(ctx context.Context) error {
	if err := v.load(ctx); err != nil {
		return err
	}
	v.selected = nil
	for i := range v.days {
		if v.selected == nil || v.days[i].DayIndex > v.dayIndexOf(*v.selected) {
			id := v.days[i].ID
			v.selected = &id
		}
	}
	return nil
}

// Select moves the cursor. Before the first load any id is accepted and
// checked on the next Reload; afterwards unknown days are refused.
func (v *View) Select(dayID uuid.UUID) bool {
	if v.loaded && !v.has(dayID) {
		return false
	}
	v.selected = &dayID
	return true
}

// Snapshot returns the current state for rendering.
func (v *View) Snapshot() models.TimelineView {
	var selected *uuid.UUID
	if v.selected != nil {
		id := *v.selected
		selected = &id
	}
	return models.TimelineView{
		ItineraryID:   v.itineraryID,
		Days:          v.days,
		SelectedDayID: selected,
		NextDayIndex:  NextDayIndex(v.days),
		TotalCost:     TotalCost(v.days),
		Currency:      models.DefaultCurrency,
	}
}

func (v *View) load(ctx context.Context) error {
	days, err := v.source.ListDays(ctx, v.userID, v.itineraryID)
	if err != nil {
		v.clear()
		return fmt.Errorf("failed to load days: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(days))
	for _, d := range days {
		ids = append(ids, d.ID)
	}
	var items []models.ItineraryItem
	if len(ids) > 0 {
		items, err = v.source.ListItems(ctx, v.userID, ids)
		if err != nil {
			v.clear()
			return fmt.Errorf("failed to load items: %w", err)
		}
	}

	v.days = BuildTimeline(days, items)
	v.loaded = true
	return nil
}

func (v *View) clear() {
	v.days = []models.DayWithItems{}
	v.selected = nil
	v.loaded = true
}

func (v *View) has(dayID uuid.UUID) bool {
	return v.dayIndexOf(dayID) > 0
}

func (v *View) dayIndexOf(dayID uuid.UUID) int {
	for _, d := range v.days {
		if d.ID == dayID {
			return d.DayIndex
		}
	}
	return 0
}
