package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency is the fixed currency of every item cost.
const DefaultCurrency = "CAD"

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// Itinerary is a user-owned travel plan for one country and a date range.
type Itinerary struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	CountryISO2 string    `json:"country_iso2"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItineraryDay is a numbered day of an itinerary.
type ItineraryDay struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	DayIndex    int       `json:"day_index"`
	Date        *string   `json:"date,omitempty"`
}

// ItineraryItem is one scheduled activity within a day.
type ItineraryItem struct {
	ID       uuid.UUID `json:"id"`
	DayID    uuid.UUID `json:"itinerary_day_id"`
	Time     *string   `json:"time,omitempty"`
	Activity string    `json:"activity"`
	Location *string   `json:"location,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Cost     *Cents    `json:"cost,omitempty"`
}

// DayWithItems is a day merged with its ordered items.
type DayWithItems struct {
	ItineraryDay
	Items []ItineraryItem `json:"items"`
}

// TimelineView is the rendered state of one itinerary timeline.
type TimelineView struct {
	ItineraryID   uuid.UUID      `json:"itinerary_id"`
	Days          []DayWithItems `json:"days"`
	SelectedDayID *uuid.UUID     `json:"selected_day_id"`
	NextDayIndex  int            `json:"next_day_index"`
	TotalCost     Cents          `json:"total_cost"`
	Currency      string         `json:"currency"`
}

// CountryCount is the number of itineraries a user has for one country.
type CountryCount struct {
	CountryISO2 string `json:"country_iso2"`
	Count       int    `json:"count"`
}

// CreateItineraryParams is the itinerary creation payload.
type CreateItineraryParams struct {
	Title       string  `json:"title"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	CountryISO2 string  `json:"country_iso2"`
	Notes       *string `json:"notes"`
}

// AddDayParams is the add-day payload. DayIndex is coerced, never rejected.
type AddDayParams struct {
	DayIndex LooseString `json:"day_index"`
	Date     string      `json:"date"`
}

// AddItemParams is the add-item payload.
type AddItemParams struct {
	Time     string      `json:"time"`
	Activity string      `json:"activity"`
	Location string      `json:"location"`
	Notes    string      `json:"notes"`
	Cost     LooseString `json:"cost"`
}

// Cents is a monetary amount in hundredths of the fixed currency.
type Cents int64

// MarshalJSON renders the amount as a decimal number, e.g. 12.5.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(c)/100, 'f', -1, 64)), nil
}

// MaxCost is the largest cost a single item may carry, one billion in the
// fixed currency. Totals over any realistic number of items stay in range.
const MaxCost Cents = 1_000_000_000 * 100

// ParseCost coerces a user supplied cost. Empty, non-numeric, non-finite,
// negative and above-MaxCost values all yield nil.
func ParseCost(raw string) *Cents {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > float64(MaxCost)/100 {
		return nil
	}
	c := Cents(math.Round(f * 100))
	return &c
}

// LooseString accepts a JSON string, number or null.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = LooseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = LooseString(num.String())
	return nil
}
