// Package validation wraps go-playground/validator with the field naming and
// messages exposed by the HTTP API.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
)

const (
	// DateLayout is the ISO calendar date accepted on the wire.
	DateLayout = "2006-01-02"
	// TimeLayout is the 24-hour time-of-day accepted on the wire.
	TimeLayout = "15:04"
)

var (
	clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
)

// New returns a validator that reports json field names and understands the
// isodate and clock tags.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return IsDate(fl.Field().String())
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	})
	// after=Field compares two HH:MM values of the same struct; malformed
	// values are left to the clock rule.
	_ = v.RegisterValidation("after", func(fl validator.FieldLevel) bool {
		other, _, _, ok := fl.GetStructFieldOKAdvanced2(fl.Parent(), fl.Param())
		if !ok || other.Kind() != reflect.String {
			return false
		}
		end, start := fl.Field().String(), other.String()
		if !IsClock(end) || !IsClock(start) {
			return true
		}
		return end > start
	})
	return v
}

// IsDate reports whether raw is a valid YYYY-MM-DD calendar date.
func IsDate(raw string) bool {
	if len(raw) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, raw)
	return err == nil
}

// IsClock reports whether raw is a valid zero-padded HH:MM time of day.
func IsClock(raw string) bool {
	return clockPattern.MatchString(raw)
}

// Struct validates payload and converts failures into a 422 error with per-field messages.
func Struct(v *validator.Validate, payload interface{}) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	return appErrors.Validation(Translate(verrs))
}

// Translate maps validator errors to field -> messages.
func Translate(verrs validator.ValidationErrors) map[string][]string {
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		key := FieldPath(fe.Namespace())
		fields[key] = append(fields[key], Message(key, fe.Tag(), fe.Param()))
	}
	return fields
}

// FieldPath turns "CreateSlotsRequest.slots[0].end_time" into "slots.0.end_time".
func FieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		namespace = namespace[idx+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

// Message renders the user-facing message for a failed rule.
func Message(field, tag, param string) string {
	label := humanize(field)
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, param)
	case "min":
		return fmt.Sprintf("The %s field must have at least %s items.", label, param)
	case "isodate":
		return fmt.Sprintf("The %s field must be a valid date.", label)
	case "clock":
		return fmt.Sprintf("The %s field must match the format H:i.", label)
	case "after":
		return fmt.Sprintf("The %s field must be a time after %s.", label, humanize(snake(param)))
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", label, param)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}

// FromBindError converts a JSON binding failure into a 422 error. Type mismatches
// are attributed to the offending field.
func FromBindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return appErrors.FieldError(typeErr.Field, fmt.Sprintf("The %s field has an invalid type.", humanize(typeErr.Field)))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "The request body is not valid JSON.")
}

func snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func humanize(field string) string {
	if strings.Contains(field, ".") {
		return field
	}
	return strings.ReplaceAll(field, "_", " ")
}
