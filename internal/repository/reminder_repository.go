package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/slot-booking-api/internal/models"
)

const reminderColumns = `id, booking_id, status, requested_by, attempts, last_error, requested_at, dispatched_at`

// ReminderRepository persists booking reminder requests.
type ReminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository constructs the repository.
func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create inserts a queued reminder and fills in its id and timestamps.
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.BookingReminder) error {
	if reminder.Status == "" {
		reminder.Status = models.ReminderStatusQueued
	}
	const query = `INSERT INTO booking_reminders (booking_id, status, requested_by)
VALUES ($1, $2, $3) RETURNING id, attempts, requested_at`
	if err := r.db.QueryRowxContext(ctx, query, reminder.BookingID, reminder.Status, reminder.RequestedBy).
		Scan(&reminder.ID, &reminder.Attempts, &reminder.RequestedAt); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// FindByID returns a reminder or sql.ErrNoRows.
func (r *ReminderRepository) FindByID(ctx context.Context, id int64) (*models.BookingReminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM booking_reminders WHERE id = $1`
	var reminder models.BookingReminder
	if err := r.db.GetContext(ctx, &reminder, query, id); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// MarkDispatched records a successful hand-off to the notifier.
func (r *ReminderRepository) MarkDispatched(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE booking_reminders SET status = $1, attempts = attempts + 1, last_error = NULL, dispatched_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, models.ReminderStatusDispatched, at, id); err != nil {
		return fmt.Errorf("mark reminder dispatched: %w", err)
	}
	return nil
}

// MarkAttemptFailed bumps the attempt counter. final moves the reminder to failed.
func (r *ReminderRepository) MarkAttemptFailed(ctx context.Context, id int64, reason string, final bool) error {
	status := models.ReminderStatusQueued
	if final {
		status = models.ReminderStatusFailed
	}
	const query = `UPDATE booking_reminders SET status = $1, attempts = attempts + 1, last_error = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, status, reason, id); err != nil {
		return fmt.Errorf("mark reminder failed: %w", err)
	}
	return nil
}

// ListQueued returns reminders still waiting for the worker, oldest first.
func (r *ReminderRepository) ListQueued(ctx context.Context, limit int) ([]models.BookingReminder, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + reminderColumns + ` FROM booking_reminders WHERE status = 'queued' ORDER BY requested_at ASC LIMIT $1`
	reminders := make([]models.BookingReminder, 0)
	if err := r.db.SelectContext(ctx, &reminders, query, limit); err != nil {
		return nil, fmt.Errorf("list queued reminders: %w", err)
	}
	return reminders, nil
}
