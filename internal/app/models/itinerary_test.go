package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *Cents
	}{
		{name: "empty", raw: "", want: nil},
		{name: "blank", raw: "   ", want: nil},
		{name: "decimal", raw: "12.50", want: centsPtr(1250)},
		{name: "integer", raw: "40", want: centsPtr(4000)},
		{name: "zero", raw: "0", want: centsPtr(0)},
		{name: "negative", raw: "-3", want: nil},
		{name: "not a number", raw: "abc", want: nil},
		{name: "nan", raw: "NaN", want: nil},
		{name: "infinite", raw: "Inf", want: nil},
		{name: "rounds to cents", raw: "19.999", want: centsPtr(2000)},
		{name: "largest allowed", raw: "1000000000", want: centsPtr(int64(MaxCost))},
		{name: "just above the cap", raw: "1000000000.01", want: nil},
		{name: "int64 overflow", raw: "1e17", want: nil},
		{name: "int64 boundary", raw: "92233720368547758.08", want: nil},
		{name: "huge finite", raw: "1e300", want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseCost(tc.raw))
		})
	}
}

func TestCentsMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Cents(1250))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(b))

	b, err = json.Marshal(Cents(0))
	require.NoError(t, err)
	assert.Equal(t, "0", string(b))
}

func TestLooseStringUnmarshal(t *testing.T) {
	var p AddItemParams
	require.NoError(t, json.Unmarshal([]byte(`{"activity":"Hike","cost":12.5}`), &p))
	assert.Equal(t, LooseString("12.5"), p.Cost)

	require.NoError(t, json.Unmarshal([]byte(`{"activity":"Hike","cost":"7"}`), &p))
	assert.Equal(t, LooseString("7"), p.Cost)

	var d AddDayParams
	require.NoError(t, json.Unmarshal([]byte(`{"day_index":null}`), &d))
	assert.Equal(t, LooseString(""), d.DayIndex)

	assert.Error(t, json.Unmarshal([]byte(`{"day_index":[1]}`), &d))
}

func TestUpstreamError(t *testing.T) {
	err := &UpstreamError{Op: "Geocode", Status: 503}
	assert.Equal(t, "Geocode failed (503)", err.Error())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("end_date must not be before %s", "2025-01-02")
	assert.Equal(t, "end_date must not be before 2025-01-02", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("Server API key not configured")
	assert.Equal(t, "Server API key not configured", err.Error())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func centsPtr(c int64) *Cents {
	v := Cents(c)
	return &v
}
