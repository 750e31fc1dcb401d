package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseField("howSoon")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFormState_SetAndGet(t *testing.T) {
	var s FormState
	for _, f := range Fields {
		value := "x"
		switch f {
		case FieldPlanningSelling:
			value = "no"
		case FieldSellingSoon:
			value = "more-than-6-months"
		}
		require.NoError(t, s.Set(f, value))
		assert.Equal(t, value, s.Get(f))
	}

	// Unsetting an enum is allowed.
	require.NoError(t, s.Set(FieldPlanningSelling, ""))
	assert.Equal(t, PlanningSellingUnset, s.PlanningSelling)
}

func TestFormState_SetRejectsUnknownEnumValues(t *testing.T) {
	var s FormState
	assert.ErrorIs(t, s.Set(FieldPlanningSelling, "Yes"), ErrInvalidValue)
	assert.ErrorIs(t, s.Set(FieldSellingSoon, "asap"), ErrInvalidValue)
	assert.ErrorIs(t, s.Set(Field("age"), "42"), ErrUnknownField)
	assert.Equal(t, FormState{}, s)
}

func TestNewLeadPayload(t *testing.T) {
	s := FormState{
		FirstName:       "Jane",
		LastName:        "Doe",
		PhoneNumber:     "0412345678",
		EmailAddress:    "jane@example.com",
		PropertyAddress: "1 Main St",
		PlanningSelling: PlanningSellingYes,
		SellingSoon:     SellingTimeframeUnderSixMonths,
	}
	ts := time.Date(2024, 5, 1, 19, 30, 15, 7000000, time.FixedZone("AEST", 10*60*60))

	p := NewLeadPayload(s, ts)
	assert.Equal(t, "less-than-6-months", p.HowSoon)
	assert.Equal(t, "2024-05-01T09:30:15.007Z", p.Timestamp)
	assert.Equal(t, "yes", p.PlanningSelling)

	s.PlanningSelling = PlanningSellingNo
	assert.Empty(t, NewLeadPayload(s, ts).HowSoon)
}
