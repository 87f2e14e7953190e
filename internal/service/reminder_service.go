package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/internal/models"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
	"github.com/noah-isme/slot-booking-api/pkg/jobs"
)

// ReminderJobType tags reminder jobs on the queue.
const ReminderJobType = "booking_reminder"

type reminderStore interface {
	Create(ctx context.Context, reminder *models.BookingReminder) error
	FindByID(ctx context.Context, id int64) (*models.BookingReminder, error)
	MarkDispatched(ctx context.Context, id int64, at time.Time) error
	MarkAttemptFailed(ctx context.Context, id int64, reason string, final bool) error
	ListQueued(ctx context.Context, limit int) ([]models.BookingReminder, error)
}

type bookingFinder interface {
	FindRecordByID(ctx context.Context, id int64) (*models.BookingRecord, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// Notifier delivers a reminder to the visitor of a booking.
type Notifier interface {
	Notify(ctx context.Context, reminder models.BookingReminder, booking models.BookingRecord) error
}

// LogNotifier records reminders in the structured log instead of delivering them.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, reminder models.BookingReminder, booking models.BookingRecord) error {
	n.logger.Info("booking reminder",
		zap.Int64("reminder_id", reminder.ID),
		zap.Int64("booking_id", booking.ID),
		zap.String("to", booking.VisitorEmail),
		zap.String("visitor_name", booking.VisitorName),
		zap.String("date", booking.Date),
		zap.String("start_time", booking.StartTime),
		zap.String("end_time", booking.EndTime),
	)
	return nil
}

// ReminderService records reminder requests and feeds them to the queue.
type ReminderService struct {
	reminders reminderStore
	bookings  bookingFinder
	queue     jobDispatcher
	logger    *zap.Logger
}

// NewReminderService constructs a ReminderService.
func NewReminderService(reminders reminderStore, bookings bookingFinder, queue jobDispatcher, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{reminders: reminders, bookings: bookings, queue: queue, logger: logger}
}

// Request queues a reminder for bookingID on behalf of requestedBy, which may be empty.
func (s *ReminderService) Request(ctx context.Context, bookingID int64, requestedBy string) (*dto.ReminderResponse, error) {
	if _, err := s.bookings.FindRecordByID(ctx, bookingID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	reminder := &models.BookingReminder{BookingID: bookingID, Status: models.ReminderStatusQueued}
	if requestedBy != "" {
		reminder.RequestedBy = &requestedBy
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record reminder")
	}

	if err := s.queue.Enqueue(reminderJob(reminder.ID)); err != nil {
		if markErr := s.reminders.MarkAttemptFailed(ctx, reminder.ID, "failed to enqueue reminder", true); markErr != nil {
			s.logger.Warn("failed to mark reminder failed", zap.Int64("reminder_id", reminder.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue reminder")
	}
	return &dto.ReminderResponse{Message: "Reminder queued", Reminder: reminder}, nil
}

// RecoverPending re-enqueues reminders left queued by a previous process.
func (s *ReminderService) RecoverPending(ctx context.Context) (int, error) {
	pending, err := s.reminders.ListQueued(ctx, 500)
	if err != nil {
		return 0, err
	}
	recovered := 0
	for _, reminder := range pending {
		if err := s.queue.Enqueue(reminderJob(reminder.ID)); err != nil {
			s.logger.Warn("failed to requeue reminder", zap.Int64("reminder_id", reminder.ID), zap.Error(err))
			continue
		}
		recovered++
	}
	return recovered, nil
}

func reminderJob(id int64) jobs.Job {
	return jobs.Job{ID: strconv.FormatInt(id, 10), Type: ReminderJobType}
}

// ReminderWorker bridges queue jobs to the Notifier.
type ReminderWorker struct {
	reminders  reminderStore
	bookings   bookingFinder
	notifier   Notifier
	metrics    *MetricsService
	logger     *zap.Logger
	maxRetries int
	now        func() time.Time
}

// NewReminderWorker constructs a worker. maxRetries must match the queue's.
func NewReminderWorker(reminders reminderStore, bookings bookingFinder, notifier Notifier, metrics *MetricsService, maxRetries int, logger *zap.Logger) *ReminderWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ReminderWorker{
		reminders:  reminders,
		bookings:   bookings,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Handle processes one reminder job. A returned error asks the queue to retry.
func (w *ReminderWorker) Handle(ctx context.Context, job jobs.Job) error {
	id, err := strconv.ParseInt(job.ID, 10, 64)
	if err != nil {
		w.logger.Error("discarding malformed reminder job", zap.String("job_id", job.ID))
		return nil
	}
	reminder, err := w.reminders.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return w.retry(ctx, id, job, fmt.Errorf("load reminder %d: %w", id, err))
	}
	if reminder.Status != models.ReminderStatusQueued {
		return nil
	}

	booking, err := w.bookings.FindRecordByID(ctx, reminder.BookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			w.fail(ctx, id, "booking no longer exists", true)
			return nil
		}
		return w.retry(ctx, id, job, fmt.Errorf("load booking %d: %w", reminder.BookingID, err))
	}

	if err := w.notifier.Notify(ctx, *reminder, *booking); err != nil {
		final := job.Attempt+1 >= w.maxRetries
		w.fail(ctx, id, err.Error(), final)
		return fmt.Errorf("notify reminder %d: %w", id, err)
	}

	if err := w.reminders.MarkDispatched(ctx, id, w.now().UTC()); err != nil {
		w.logger.Warn("failed to mark reminder dispatched", zap.Int64("reminder_id", id), zap.Error(err))
		return err
	}
	w.metrics.RecordReminder(string(models.ReminderStatusDispatched))
	return nil
}

// retry hands err back to the queue, marking the reminder failed when this was
// the last attempt so it does not stay queued.
func (w *ReminderWorker) retry(ctx context.Context, id int64, job jobs.Job, err error) error {
	if job.Attempt+1 >= w.maxRetries {
		w.fail(ctx, id, err.Error(), true)
	}
	return err
}

func (w *ReminderWorker) fail(ctx context.Context, id int64, reason string, final bool) {
	if err := w.reminders.MarkAttemptFailed(ctx, id, reason, final); err != nil {
		w.logger.Warn("failed to record reminder failure", zap.Int64("reminder_id", id), zap.Error(err))
	}
	if final {
		w.metrics.RecordReminder(string(models.ReminderStatusFailed))
	}
}
