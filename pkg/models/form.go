package models

import (
	"fmt"
	"time"
)

// Field names a form input. The value doubles as the JSON key of the field.
type Field string

const (
	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldPhoneNumber     Field = "phoneNumber"
	FieldEmailAddress    Field = "emailAddress"
	FieldPropertyAddress Field = "propertyAddress"
	FieldPlanningSelling Field = "planningSelling"
	FieldSellingSoon     Field = "sellingSoon"
)

// Fields lists every form input in display order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldPhoneNumber,
	FieldEmailAddress,
	FieldPropertyAddress,
	FieldPlanningSelling,
	FieldSellingSoon,
}

// ParseField resolves a field name sent by the presentation layer
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// PlanningSelling answers "are you planning on selling?". The zero value is unset.
type PlanningSelling string

const (
	PlanningSellingUnset PlanningSelling = ""
	PlanningSellingYes   PlanningSelling = "yes"
	PlanningSellingNo    PlanningSelling = "no"
)

// Valid reports whether p is one of the known answers, unset included
func (p PlanningSelling) Valid() bool {
	switch p {
	case PlanningSellingUnset, PlanningSellingYes, PlanningSellingNo:
		return true
	}
	return false
}

// SellingTimeframe answers "how soon do you plan to sell?". The zero value is unset.
type SellingTimeframe string

const (
	SellingTimeframeUnset          SellingTimeframe = ""
	SellingTimeframeUnderOneMonth  SellingTimeframe = "less-than-1-month"
	SellingTimeframeUnderSixMonths SellingTimeframe = "less-than-6-months"
	SellingTimeframeOverSixMonths  SellingTimeframe = "more-than-6-months"
)

// Valid reports whether t is one of the known timeframes, unset included
func (t SellingTimeframe) Valid() bool {
	switch t {
	case SellingTimeframeUnset, SellingTimeframeUnderOneMonth, SellingTimeframeUnderSixMonths, SellingTimeframeOverSixMonths:
		return true
	}
	return false
}

// FormState holds the raw values of the property valuation form.
// Validation tags are resolved by the form package's validator.
type FormState struct {
	FirstName       string           `json:"firstName" validate:"notblank"`
	LastName        string           `json:"lastName" validate:"notblank"`
	PhoneNumber     string           `json:"phoneNumber" validate:"notblank,phone"`
	EmailAddress    string           `json:"emailAddress" validate:"notblank,leademail"`
	PropertyAddress string           `json:"propertyAddress" validate:"notblank"`
	PlanningSelling PlanningSelling  `json:"planningSelling" validate:"oneof=yes no"`
	SellingSoon     SellingTimeframe `json:"sellingSoon" validate:"timeframe"`
}

// Set assigns a raw value to one field. Enum fields only accept known values.
func (s *FormState) Set(field Field, value string) error {
	switch field {
	case FieldFirstName:
		s.FirstName = value
	case FieldLastName:
		s.LastName = value
	case FieldPhoneNumber:
		s.PhoneNumber = value
	case FieldEmailAddress:
		s.EmailAddress = value
	case FieldPropertyAddress:
		s.PropertyAddress = value
	case FieldPlanningSelling:
		p := PlanningSelling(value)
		if !p.Valid() {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
		}
		s.PlanningSelling = p
	case FieldSellingSoon:
		t := SellingTimeframe(value)
		if !t.Valid() {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
		}
		s.SellingSoon = t
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Get returns the raw value of one field
func (s FormState) Get(field Field) string {
	switch field {
	case FieldFirstName:
		return s.FirstName
	case FieldLastName:
		return s.LastName
	case FieldPhoneNumber:
		return s.PhoneNumber
	case FieldEmailAddress:
		return s.EmailAddress
	case FieldPropertyAddress:
		return s.PropertyAddress
	case FieldPlanningSelling:
		return string(s.PlanningSelling)
	case FieldSellingSoon:
		return string(s.SellingSoon)
	}
	return ""
}

// ErrorMap maps a field to its active validation message
type ErrorMap map[Field]string

// Clone returns an independent copy of m
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Status is the submission lifecycle of a form
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
)

// TimestampLayout is the ISO-8601 layout of LeadPayload.Timestamp
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// LeadPayload is the body forwarded to the external collector
type LeadPayload struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber"`
	EmailAddress    string `json:"emailAddress"`
	PropertyAddress string `json:"propertyAddress"`
	PlanningSelling string `json:"planningSelling"`
	HowSoon         string `json:"howSoon"`
	Timestamp       string `json:"timestamp"`
}

// NewLeadPayload builds the collector payload for s submitted at ts.
// HowSoon is only carried when the owner plans to sell.
func NewLeadPayload(s FormState, ts time.Time) LeadPayload {
	howSoon := ""
	if s.PlanningSelling == PlanningSellingYes {
		howSoon = string(s.SellingSoon)
	}
	return LeadPayload{
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		PhoneNumber:     s.PhoneNumber,
		EmailAddress:    s.EmailAddress,
		PropertyAddress: s.PropertyAddress,
		PlanningSelling: string(s.PlanningSelling),
		HowSoon:         howSoon,
		Timestamp:       ts.UTC().Format(TimestampLayout),
	}
}
