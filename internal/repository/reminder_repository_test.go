package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/slot-booking-api/internal/models"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
)

func TestReminderRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	now := time.Now()
	requestedBy := "admin-1"
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO booking_reminders (booking_id, status, requested_by) VALUES ($1, $2, $3) RETURNING id, attempts, requested_at")).
		WithArgs(int64(4), models.ReminderStatusQueued, requestedBy).
		WillReturnRows(sqlmock.NewRows([]string{"id", "attempts", "requested_at"}).AddRow(9, 0, now))

	reminder := &models.BookingReminder{BookingID: 4, RequestedBy: &requestedBy}
	require.NoError(t, repo.Create(context.Background(), reminder))
	assert.Equal(t, int64(9), reminder.ID)
	assert.Equal(t, models.ReminderStatusQueued, reminder.Status)
	assert.Equal(t, now, reminder.RequestedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositoryMarkDispatched(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE booking_reminders SET status = $1, attempts = attempts + 1, last_error = NULL, dispatched_at = $2 WHERE id = $3")).
		WithArgs(models.ReminderStatusDispatched, at, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkDispatched(context.Background(), 9, at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositoryMarkAttemptFailed(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	query := regexp.QuoteMeta("UPDATE booking_reminders SET status = $1, attempts = attempts + 1, last_error = $2 WHERE id = $3")
	mock.ExpectExec(query).
		WithArgs(models.ReminderStatusQueued, "timeout", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).
		WithArgs(models.ReminderStatusFailed, "timeout", int64(9)).
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, repo.MarkAttemptFailed(context.Background(), 9, "timeout", false))
	require.Error(t, repo.MarkAttemptFailed(context.Background(), 9, "timeout", true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	rows := sqlmock.NewRows([]string{"id", "booking_id", "status", "requested_by", "attempts", "last_error", "requested_at", "dispatched_at"}).
		AddRow(1, 4, "queued", nil, 0, nil, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM booking_reminders WHERE status = 'queued' ORDER BY requested_at ASC LIMIT $1")).
		WithArgs(100).
		WillReturnRows(rows)

	reminders, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, int64(4), reminders[0].BookingID)
	assert.Nil(t, reminders[0].DispatchedAt)
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	var dest []models.AvailableSlot

	err := repo.Get(context.Background(), "slots:available:2025-03-01", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", dest, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "k"))

	gen, err := repo.BumpGeneration(context.Background(), "k")
	assert.NoError(t, err)
	assert.Zero(t, gen)
	gen, err = repo.Generation(context.Background(), "k")
	assert.NoError(t, err)
	assert.Zero(t, gen)
}
