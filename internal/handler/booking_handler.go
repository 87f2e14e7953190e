package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/pkg/export"
	"github.com/noah-isme/slot-booking-api/pkg/response"
)

type bookingService interface {
	Book(ctx context.Context, req dto.BookSlotRequest) (*dto.BookSlotResponse, error)
	ListByDate(ctx context.Context, query dto.DateQuery) (*dto.BookingsResponse, error)
	Cancel(ctx context.Context, id int64) (*dto.CancelBookingResponse, error)
}

type reminderService interface {
	Request(ctx context.Context, bookingID int64, requestedBy string) (*dto.ReminderResponse, error)
}

type exportService interface {
	Export(ctx context.Context, query dto.ExportQuery) (*export.Document, error)
}

// BookingHandler exposes booking endpoints.
type BookingHandler struct {
	bookings  bookingService
	reminders reminderService
	exports   exportService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(bookings bookingService, reminders reminderService, exports exportService) *BookingHandler {
	return &BookingHandler{bookings: bookings, reminders: reminders, exports: exports}
}

// Book godoc
// @Summary Book a slot
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.BookSlotRequest true "Visitor details"
// @Success 201 {object} dto.BookSlotResponse
// @Failure 409 {object} response.ErrorBody
// @Failure 422 {object} response.ValidationBody
// @Failure 429 {object} response.ErrorBody
// @Router /book-slot [post]
func (h *BookingHandler) Book(c *gin.Context) {
	var req dto.BookSlotRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.bookings.Book(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// List godoc
// @Summary List bookings for a date
// @Tags Bookings
// @Produce json
// @Param date query string true "Calendar date (YYYY-MM-DD)"
// @Success 200 {object} dto.BookingsResponse
// @Failure 422 {object} response.ValidationBody
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	resp, err := h.bookings.ListByDate(c.Request.Context(), dto.DateQuery{Date: c.Query("date")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Cancel godoc
// @Summary Cancel a booking
// @Description Deletes the booking; its slot becomes available again.
// @Tags Bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} dto.CancelBookingResponse
// @Failure 404 {object} response.ErrorBody
// @Failure 422 {object} response.ValidationBody
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.bookings.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// RequestReminder godoc
// @Summary Queue a reminder for a booking
// @Tags Bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 202 {object} dto.ReminderResponse
// @Failure 404 {object} response.ErrorBody
// @Router /bookings/{id}/reminders [post]
func (h *BookingHandler) RequestReminder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.reminders.Request(c.Request.Context(), id, callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, resp)
}

// Export godoc
// @Summary Export bookings for a date
// @Tags Bookings
// @Produce text/csv
// @Produce application/pdf
// @Param date query string true "Calendar date (YYYY-MM-DD)"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 422 {object} response.ValidationBody
// @Router /bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	doc, err := h.exports.Export(c.Request.Context(), dto.ExportQuery{Date: c.Query("date"), Format: c.Query("format")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Body)
}
