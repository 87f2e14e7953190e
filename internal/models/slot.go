package models

import "time"

// TimeSlot is a bookable window on a calendar date. Date is YYYY-MM-DD and the
// times are HH:MM in 24-hour form.
type TimeSlot struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Date        string    `db:"date" json:"date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AvailableSlot is the projection returned to visitors.
type AvailableSlot struct {
	ID        int64  `db:"id" json:"id"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}
