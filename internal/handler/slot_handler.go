package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/pkg/response"
)

type slotService interface {
	ListAvailable(ctx context.Context, query dto.DateQuery) (*dto.AvailableSlotsResponse, error)
	CreateSlots(ctx context.Context, ownerID string, req dto.CreateSlotsRequest) (*dto.CreateSlotsResponse, error)
}

// SlotHandler exposes slot availability and creation endpoints.
type SlotHandler struct {
	service slotService
}

// NewSlotHandler constructs the handler.
func NewSlotHandler(service slotService) *SlotHandler {
	return &SlotHandler{service: service}
}

// AvailableSlots godoc
// @Summary List available slots
// @Description Slots on the date that are flagged available and not booked, ordered by id.
// @Tags Slots
// @Produce json
// @Param date query string true "Calendar date (YYYY-MM-DD)"
// @Success 200 {object} dto.AvailableSlotsResponse
// @Failure 422 {object} response.ValidationBody
// @Router /available-slots [get]
func (h *SlotHandler) AvailableSlots(c *gin.Context) {
	resp, err := h.service.ListAvailable(c.Request.Context(), dto.DateQuery{Date: c.Query("date")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// CreateSlots godoc
// @Summary Create time slots
// @Description Creates one slot per window for the date, owned by the caller.
// @Tags Slots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSlotsRequest true "Slots to create"
// @Success 201 {object} dto.CreateSlotsResponse
// @Failure 401 {object} response.ErrorBody
// @Failure 422 {object} response.ValidationBody
// @Router /create-slots [post]
func (h *SlotHandler) CreateSlots(c *gin.Context) {
	var req dto.CreateSlotsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.service.CreateSlots(c.Request.Context(), callerID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}
