package models

import "time"

// Booking is a visitor's claim on exactly one time slot.
type Booking struct {
	ID           int64     `db:"id" json:"id"`
	TimeSlotID   int64     `db:"time_slot_id" json:"time_slot_id"`
	VisitorName  string    `db:"visitor_name" json:"visitor_name"`
	VisitorEmail string    `db:"visitor_email" json:"visitor_email"`
	Notes        *string   `db:"notes" json:"notes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// BookingRecord flattens a booking with its slot for admin views.
type BookingRecord struct {
	ID           int64   `db:"id" json:"id"`
	TimeSlotID   int64   `db:"time_slot_id" json:"-"`
	VisitorName  string  `db:"visitor_name" json:"visitor_name"`
	VisitorEmail string  `db:"visitor_email" json:"visitor_email"`
	Notes        *string `db:"notes" json:"notes"`
	Date         string  `db:"date" json:"date"`
	StartTime    string  `db:"start_time" json:"start_time"`
	EndTime      string  `db:"end_time" json:"end_time"`
	BookedAt     string  `db:"booked_at" json:"booked_at"`
}

// ReminderStatus tracks a reminder through the worker.
type ReminderStatus string

const (
	ReminderStatusQueued     ReminderStatus = "queued"
	ReminderStatusDispatched ReminderStatus = "dispatched"
	ReminderStatusFailed     ReminderStatus = "failed"
)

// BookingReminder records a request to remind a visitor about their booking.
type BookingReminder struct {
	ID           int64          `db:"id" json:"id"`
	BookingID    int64          `db:"booking_id" json:"booking_id"`
	Status       ReminderStatus `db:"status" json:"status"`
	RequestedBy  *string        `db:"requested_by" json:"requested_by"`
	Attempts     int            `db:"attempts" json:"attempts"`
	LastError    *string        `db:"last_error" json:"last_error,omitempty"`
	RequestedAt  time.Time      `db:"requested_at" json:"requested_at"`
	DispatchedAt *time.Time     `db:"dispatched_at" json:"dispatched_at,omitempty"`
}
