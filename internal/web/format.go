package web

import (
	"time"

	"github.com/noah-isme/slot-booking-api/pkg/validation"
)

// ClockLabel renders "14:30" as "2:30 PM". Unparseable input is returned as is.
func ClockLabel(raw string) string {
	t, err := time.Parse(validation.TimeLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format("3:04 PM")
}

// DateLabel renders "2025-03-01" as "Saturday, March 1, 2025".
func DateLabel(raw string) string {
	t, err := time.Parse(validation.DateLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format("Monday, January 2, 2006")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
