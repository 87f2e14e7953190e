package dto

import "github.com/noah-isme/slot-booking-api/internal/models"

// BookSlotRequest captures POST /book-slot payload.
type BookSlotRequest struct {
	TimeSlotID   int64   `json:"time_slot_id" validate:"required"`
	VisitorName  string  `json:"visitor_name" validate:"required,max=255"`
	VisitorEmail string  `json:"visitor_email" validate:"required,email,max=255"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
}

// ExportQuery selects the bookings export.
type ExportQuery struct {
	Date   string `form:"date" json:"date" validate:"required,isodate"`
	Format string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}

// BookSlotResponse is returned after a successful booking.
type BookSlotResponse struct {
	Message string          `json:"message"`
	Booking *models.Booking `json:"booking"`
}

// BookingsResponse lists bookings for a date.
type BookingsResponse struct {
	Date     string                 `json:"date"`
	Bookings []models.BookingRecord `json:"bookings"`
}

// CancelBookingResponse returns the removed booking.
type CancelBookingResponse struct {
	Message string                `json:"message"`
	Booking *models.BookingRecord `json:"booking"`
}

// ReminderResponse is returned once a reminder is queued.
type ReminderResponse struct {
	Message  string                  `json:"message"`
	Reminder *models.BookingReminder `json:"reminder"`
}
