package dto

import "github.com/noah-isme/slot-booking-api/internal/models"

// DateQuery is the ?date= filter shared by the read endpoints.
type DateQuery struct {
	Date string `form:"date" json:"date" validate:"required,isodate"`
}

// SlotWindow is one start/end pair inside a create-slots payload.
type SlotWindow struct {
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock,after=StartTime"`
}

// CreateSlotsRequest captures POST /create-slots payload.
type CreateSlotsRequest struct {
	Date  string       `json:"date" validate:"required,isodate"`
	Slots []SlotWindow `json:"slots" validate:"required,min=1,max=100,dive"`
}

// AvailableSlotsResponse lists open slots for a date.
type AvailableSlotsResponse struct {
	Date  string                 `json:"date"`
	Slots []models.AvailableSlot `json:"slots"`
}

// CreateSlotsResponse echoes the persisted slots.
type CreateSlotsResponse struct {
	Message string            `json:"message"`
	Slots   []models.TimeSlot `json:"slots"`
}
