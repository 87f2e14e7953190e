package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/internal/models"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
	"github.com/noah-isme/slot-booking-api/pkg/validation"
)

type timeSlotStore interface {
	ListAvailableByDate(ctx context.Context, date string) ([]models.AvailableSlot, error)
	FindByID(ctx context.Context, id int64) (*models.TimeSlot, error)
	CreateBatch(ctx context.Context, slots []models.TimeSlot) error
}

// SlotService answers availability queries and creates slots.
type SlotService struct {
	slots     timeSlotStore
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSlotService constructs a SlotService. cache and metrics may be nil.
func NewSlotService(slots timeSlotStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SlotService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotService{slots: slots, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// ListAvailable returns the slots on date that can still be booked.
func (s *SlotService) ListAvailable(ctx context.Context, query dto.DateQuery) (*dto.AvailableSlotsResponse, error) {
	if err := validation.Struct(s.validator, query); err != nil {
		return nil, err
	}

	key, cacheable := s.cache.Versioned(ctx, AvailableSlotsKey(query.Date))
	var cached []models.AvailableSlot
	if cacheable && s.cache.Get(ctx, key, &cached) {
		return &dto.AvailableSlotsResponse{Date: query.Date, Slots: cached}, nil
	}

	slots, err := s.slots.ListAvailableByDate(ctx, query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load available slots")
	}
	if cacheable {
		s.cache.Set(ctx, key, slots, 0)
	}
	return &dto.AvailableSlotsResponse{Date: query.Date, Slots: slots}, nil
}

// CreateSlots persists every window of req for ownerID. Either all rows are
// written or none are.
func (s *SlotService) CreateSlots(ctx context.Context, ownerID string, req dto.CreateSlotsRequest) (*dto.CreateSlotsResponse, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "caller identity is required to create slots")
	}
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}

	slots := make([]models.TimeSlot, len(req.Slots))
	for i, window := range req.Slots {
		slots[i] = models.TimeSlot{
			OwnerID:     ownerID,
			Date:        req.Date,
			StartTime:   window.StartTime,
			EndTime:     window.EndTime,
			IsAvailable: true,
		}
	}
	if err := s.slots.CreateBatch(ctx, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slots")
	}

	s.cache.Invalidate(ctx, AvailableSlotsKey(req.Date))
	s.metrics.RecordSlotsCreated(len(slots))
	s.logger.Info("time slots created", zap.String("owner_id", ownerID), zap.String("date", req.Date), zap.Int("count", len(slots)))
	return &dto.CreateSlotsResponse{Message: "Time slots created successfully", Slots: slots}, nil
}
