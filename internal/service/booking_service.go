package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/internal/models"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
	"github.com/noah-isme/slot-booking-api/pkg/validation"
)

type slotLookup interface {
	FindByID(ctx context.Context, id int64) (*models.TimeSlot, error)
}

type bookingStore interface {
	CreateIfAvailable(ctx context.Context, booking *models.Booking) error
	ListByDate(ctx context.Context, date string) ([]models.BookingRecord, error)
	FindRecordByID(ctx context.Context, id int64) (*models.BookingRecord, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// BookingService books, lists and cancels appointments.
type BookingService struct {
	slots     slotLookup
	bookings  bookingStore
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs a BookingService. cache and metrics may be nil.
func NewBookingService(slots slotLookup, bookings bookingStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{slots: slots, bookings: bookings, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Book claims a slot for a visitor. Two concurrent calls for the same slot
// never both succeed; the loser gets ErrSlotUnavailable.
func (s *BookingService) Book(ctx context.Context, req dto.BookSlotRequest) (*dto.BookSlotResponse, error) {
	req = normaliseBooking(req)
	if err := validation.Struct(s.validator, req); err != nil {
		s.metrics.RecordBooking(BookingOutcomeInvalid)
		return nil, err
	}

	slot, err := s.slots.FindByID(ctx, req.TimeSlotID)
	if err != nil {
		if err == sql.ErrNoRows {
			s.metrics.RecordBooking(BookingOutcomeInvalid)
			return nil, appErrors.FieldError("time_slot_id", "The selected time slot id is invalid.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}

	booking := &models.Booking{
		TimeSlotID:   slot.ID,
		VisitorName:  req.VisitorName,
		VisitorEmail: req.VisitorEmail,
		Notes:        req.Notes,
	}
	if err := s.bookings.CreateIfAvailable(ctx, booking); err != nil {
		if err == sql.ErrNoRows {
			s.metrics.RecordBooking(BookingOutcomeConflict)
			s.logger.Info("booking rejected, slot taken", zap.Int64("time_slot_id", slot.ID))
			return nil, appErrors.ErrSlotUnavailable
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	s.cache.Invalidate(ctx, AvailableSlotsKey(slot.Date))
	s.metrics.RecordBooking(BookingOutcomeConfirmed)
	s.logger.Info("booking confirmed", zap.Int64("booking_id", booking.ID), zap.Int64("time_slot_id", slot.ID), zap.String("date", slot.Date))
	return &dto.BookSlotResponse{Message: "Booking confirmed!", Booking: booking}, nil
}

// ListByDate returns the bookings whose slot is on the requested date.
func (s *BookingService) ListByDate(ctx context.Context, query dto.DateQuery) (*dto.BookingsResponse, error) {
	if err := validation.Struct(s.validator, query); err != nil {
		return nil, err
	}
	records, err := s.bookings.ListByDate(ctx, query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
	}
	return &dto.BookingsResponse{Date: query.Date, Bookings: records}, nil
}

// Get returns one booking with its slot.
func (s *BookingService) Get(ctx context.Context, id int64) (*models.BookingRecord, error) {
	record, err := s.bookings.FindRecordByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return record, nil
}

// Cancel deletes a booking so its slot can be booked again.
func (s *BookingService) Cancel(ctx context.Context, id int64) (*dto.CancelBookingResponse, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	deleted, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking")
	}
	if !deleted {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Booking not found")
	}

	s.cache.Invalidate(ctx, AvailableSlotsKey(record.Date))
	s.metrics.RecordCancellation()
	s.logger.Info("booking cancelled", zap.Int64("booking_id", id), zap.String("date", record.Date))
	return &dto.CancelBookingResponse{Message: "Booking cancelled", Booking: record}, nil
}

// normaliseBooking trims text input and treats blank notes as absent.
func normaliseBooking(req dto.BookSlotRequest) dto.BookSlotRequest {
	req.VisitorName = strings.TrimSpace(req.VisitorName)
	req.VisitorEmail = strings.TrimSpace(req.VisitorEmail)
	if req.Notes != nil {
		notes := strings.TrimSpace(*req.Notes)
		if notes == "" {
			req.Notes = nil
		} else {
			req.Notes = &notes
		}
	}
	return req
}
