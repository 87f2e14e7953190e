package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/slot-booking-api/internal/models"
)

const slotColumns = `id, owner_id, to_char(date, 'YYYY-MM-DD') AS date, to_char(start_time, 'HH24:MI') AS start_time,
to_char(end_time, 'HH24:MI') AS end_time, is_available, created_at`

// TimeSlotRepository persists time slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository constructs the repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// ListAvailableByDate returns slots on date that are flagged available and carry
// no booking, ordered by id.
func (r *TimeSlotRepository) ListAvailableByDate(ctx context.Context, date string) ([]models.AvailableSlot, error) {
	const query = `SELECT ts.id, to_char(ts.start_time, 'HH24:MI') AS start_time, to_char(ts.end_time, 'HH24:MI') AS end_time
FROM time_slots ts
WHERE ts.date = $1 AND ts.is_available = TRUE
AND NOT EXISTS (SELECT 1 FROM bookings b WHERE b.time_slot_id = ts.id)
ORDER BY ts.id ASC`
	slots := make([]models.AvailableSlot, 0)
	if err := r.db.SelectContext(ctx, &slots, query, date); err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	return slots, nil
}

// FindByID returns a slot or sql.ErrNoRows.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id int64) (*models.TimeSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM time_slots WHERE id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// CreateBatch inserts all slots in a single transaction. On success ID and
// CreatedAt are populated on every element.
func (r *TimeSlotRepository) CreateBatch(ctx context.Context, slots []models.TimeSlot) (err error) {
	if len(slots) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin slot batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO time_slots (owner_id, date, start_time, end_time, is_available)
VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	for i := range slots {
		s := &slots[i]
		if err = tx.QueryRowxContext(ctx, query, s.OwnerID, s.Date, s.StartTime, s.EndTime, s.IsAvailable).
			Scan(&s.ID, &s.CreatedAt); err != nil {
			return fmt.Errorf("insert slot %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit slot batch: %w", err)
	}
	return nil
}
