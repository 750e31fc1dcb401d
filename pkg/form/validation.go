package form

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"property-leads/pkg/models"
)

// Whitespace as browsers see it: RE2's \s is ASCII only.
const space = `\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}`

var (
	// An optional leading +, then at least ten digits, spaces, hyphens or parentheses.
	phonePattern = regexp.MustCompile(`^\+?[\d` + space + `\-()]{10,}$`)
	emailPattern = regexp.MustCompile(`^[^` + space + `@]+@[^` + space + `@]+\.[^` + space + `@]+$`)
)

type fieldMessages struct {
	missing string
	invalid string
}

var messages = map[models.Field]fieldMessages{
	models.FieldFirstName:       {missing: "First name is required"},
	models.FieldLastName:        {missing: "Last name is required"},
	models.FieldPhoneNumber:     {missing: "Phone number is required", invalid: "Please enter a valid numeric phone number"},
	models.FieldEmailAddress:    {missing: "Email address is required", invalid: "Please enter a valid email address"},
	models.FieldPropertyAddress: {missing: "Property address is required"},
	models.FieldPlanningSelling: {missing: "Please select if you are planning on selling"},
	models.FieldSellingSoon:     {missing: "Please select how soon you plan to sell"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names so they line up with models.Field.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]validator.Func{
		"notblank":  notBlank,
		"phone":     validPhone,
		"leademail": validEmail,
		"timeframe": validTimeframe,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validEmail(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(fl.Field().String())
}

// validTimeframe only demands a timeframe from owners planning to sell.
// A stale value left over from a "yes" answer is never flagged.
func validTimeframe(fl validator.FieldLevel) bool {
	planning := fl.Parent().FieldByName("PlanningSelling")
	if !planning.IsValid() || models.PlanningSelling(planning.String()) != models.PlanningSellingYes {
		return true
	}
	t := models.SellingTimeframe(fl.Field().String())
	return t != models.SellingTimeframeUnset && t.Valid()
}

// Validate checks every field of s and returns the messages of the failing
// ones. An empty map means the form may be submitted.
func Validate(s models.FormState) models.ErrorMap {
	out := models.ErrorMap{}

	err := validate.Struct(s)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only returned for non-struct input.
		panic(err)
	}
	for _, fe := range verrs {
		field := models.Field(fe.Field())
		out[field] = messageFor(field, fe.Tag())
	}
	return out
}

func messageFor(field models.Field, tag string) string {
	m := messages[field]
	switch tag {
	case "phone", "leademail":
		return m.invalid
	default:
		return m.missing
	}
}

// VisibleFields derives which inputs the form shows for s. The timeframe
// question only appears once the owner says they plan to sell.
func VisibleFields(s models.FormState) []models.Field {
	out := make([]models.Field, 0, len(models.Fields))
	for _, f := range models.Fields {
		if f == models.FieldSellingSoon && s.PlanningSelling != models.PlanningSellingYes {
			continue
		}
		out = append(out, f)
	}
	return out
}
