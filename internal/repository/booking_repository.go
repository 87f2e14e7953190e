package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/slot-booking-api/internal/models"
)

const bookingRecordQuery = `SELECT b.id, b.time_slot_id, b.visitor_name, b.visitor_email, b.notes,
to_char(ts.date, 'YYYY-MM-DD') AS date, to_char(ts.start_time, 'HH24:MI') AS start_time,
to_char(ts.end_time, 'HH24:MI') AS end_time, to_char(b.created_at, 'YYYY-MM-DD HH24:MI:SS') AS booked_at
FROM bookings b
JOIN time_slots ts ON ts.id = b.time_slot_id`

// BookingRepository persists bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateIfAvailable inserts the booking only while its slot is flagged available
// and unbooked. The check and the insert are one statement and the unique
// constraint on time_slot_id settles concurrent attempts, so at most one caller
// wins. A lost race returns sql.ErrNoRows.
func (r *BookingRepository) CreateIfAvailable(ctx context.Context, booking *models.Booking) error {
	const query = `INSERT INTO bookings (time_slot_id, visitor_name, visitor_email, notes)
SELECT ts.id, $2, $3, $4 FROM time_slots ts
WHERE ts.id = $1 AND ts.is_available = TRUE
AND NOT EXISTS (SELECT 1 FROM bookings b WHERE b.time_slot_id = ts.id)
ON CONFLICT (time_slot_id) DO NOTHING
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, booking.TimeSlotID, booking.VisitorName, booking.VisitorEmail, booking.Notes)
	if err := row.Scan(&booking.ID, &booking.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return sql.ErrNoRows
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ListByDate returns bookings whose slot falls on date, ordered by booking id.
func (r *BookingRepository) ListByDate(ctx context.Context, date string) ([]models.BookingRecord, error) {
	query := bookingRecordQuery + ` WHERE ts.date = $1 ORDER BY b.id ASC`
	records := make([]models.BookingRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, date); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return records, nil
}

// FindRecordByID returns one flattened booking or sql.ErrNoRows.
func (r *BookingRepository) FindRecordByID(ctx context.Context, id int64) (*models.BookingRecord, error) {
	query := bookingRecordQuery + ` WHERE b.id = $1`
	var record models.BookingRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a booking, freeing its slot. It returns false when nothing matched.
func (r *BookingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete booking rows affected: %w", err)
	}
	return affected > 0, nil
}
