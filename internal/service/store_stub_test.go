package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/slot-booking-api/internal/models"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
	"github.com/noah-isme/slot-booking-api/pkg/jobs"
)

// memStore mimics the Postgres repositories closely enough to exercise the
// services end to end.
type memStore struct {
	mu        sync.Mutex
	slots     map[int64]*models.TimeSlot
	bookings  map[int64]*models.Booking
	nextSlot  int64
	nextBook  int64
	failBatch bool
	// afterList runs once a listing has been read, before it is returned.
	afterList func()
}

func newMemStore() *memStore {
	return &memStore{
		slots:    map[int64]*models.TimeSlot{},
		bookings: map[int64]*models.Booking{},
	}
}

func (m *memStore) ListAvailableByDate(_ context.Context, date string) ([]models.AvailableSlot, error) {
	m.mu.Lock()
	out := make([]models.AvailableSlot, 0)
	for _, id := range m.sortedSlotIDs() {
		s := m.slots[id]
		if s.Date == date && s.IsAvailable && !m.slotBooked(id) {
			out = append(out, models.AvailableSlot{ID: s.ID, StartTime: s.StartTime, EndTime: s.EndTime})
		}
	}
	hook := m.afterList
	m.afterList = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (*models.TimeSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (m *memStore) CreateBatch(_ context.Context, slots []models.TimeSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failBatch {
		return errors.New("insert failed")
	}
	for i := range slots {
		m.nextSlot++
		slots[i].ID = m.nextSlot
		slots[i].CreatedAt = time.Now()
		s := slots[i]
		m.slots[s.ID] = &s
	}
	return nil
}

func (m *memStore) CreateIfAvailable(_ context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[booking.TimeSlotID]
	if !ok || !s.IsAvailable || m.slotBooked(s.ID) {
		return sql.ErrNoRows
	}
	m.nextBook++
	booking.ID = m.nextBook
	booking.CreatedAt = time.Now()
	b := *booking
	m.bookings[b.ID] = &b
	return nil
}

func (m *memStore) ListByDate(_ context.Context, date string) ([]models.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.bookings))
	for id := range m.bookings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.BookingRecord, 0)
	for _, id := range ids {
		rec := m.record(id)
		if rec.Date == date {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) FindRecordByID(_ context.Context, id int64) (*models.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return nil, sql.ErrNoRows
	}
	rec := m.record(id)
	return &rec, nil
}

func (m *memStore) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return false, nil
	}
	delete(m.bookings, id)
	return true, nil
}

func (m *memStore) record(id int64) models.BookingRecord {
	b := m.bookings[id]
	s := m.slots[b.TimeSlotID]
	return models.BookingRecord{
		ID:           b.ID,
		TimeSlotID:   b.TimeSlotID,
		VisitorName:  b.VisitorName,
		VisitorEmail: b.VisitorEmail,
		Notes:        b.Notes,
		Date:         s.Date,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		BookedAt:     b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func (m *memStore) slotBooked(slotID int64) bool {
	for _, b := range m.bookings {
		if b.TimeSlotID == slotID {
			return true
		}
	}
	return false
}

func (m *memStore) sortedSlotIDs() []int64 {
	ids := make([]int64, 0, len(m.slots))
	for id := range m.slots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// reminderMem implements reminderStore.
type reminderMem struct {
	mu        sync.Mutex
	reminders map[int64]*models.BookingReminder
	next      int64
}

func newReminderMem() *reminderMem {
	return &reminderMem{reminders: map[int64]*models.BookingReminder{}}
}

func (r *reminderMem) Create(_ context.Context, reminder *models.BookingReminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	reminder.ID = r.next
	reminder.RequestedAt = time.Now()
	clone := *reminder
	r.reminders[clone.ID] = &clone
	return nil
}

func (r *reminderMem) FindByID(_ context.Context, id int64) (*models.BookingReminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *rem
	return &clone, nil
}

func (r *reminderMem) MarkDispatched(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem := r.reminders[id]
	rem.Status = models.ReminderStatusDispatched
	rem.Attempts++
	rem.DispatchedAt = &at
	rem.LastError = nil
	return nil
}

func (r *reminderMem) MarkAttemptFailed(_ context.Context, id int64, reason string, final bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem := r.reminders[id]
	rem.Attempts++
	rem.LastError = &reason
	if final {
		rem.Status = models.ReminderStatusFailed
	}
	return nil
}

func (r *reminderMem) ListQueued(_ context.Context, _ int) ([]models.BookingReminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BookingReminder
	for id := int64(1); id <= r.next; id++ {
		if rem, ok := r.reminders[id]; ok && rem.Status == models.ReminderStatusQueued {
			out = append(out, *rem)
		}
	}
	return out, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// cacheRepoStub is a map-backed CacheRepository.
type cacheRepoStub struct {
	values  map[string][]models.AvailableSlot
	gens    map[string]int64
	deleted []string
	bumped  []string
	gets    int
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{values: map[string][]models.AvailableSlot{}, gens: map[string]int64{}}
}

func (c *cacheRepoStub) Generation(_ context.Context, key string) (int64, error) {
	return c.gens[key], nil
}

func (c *cacheRepoStub) BumpGeneration(_ context.Context, key string) (int64, error) {
	c.gens[key]++
	c.bumped = append(c.bumped, key)
	return c.gens[key], nil
}

func (c *cacheRepoStub) Get(_ context.Context, key string, dest interface{}) error {
	c.gets++
	v, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.AvailableSlot)) = v
	return nil
}

func (c *cacheRepoStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.values[key] = value.([]models.AvailableSlot)
	return nil
}

func (c *cacheRepoStub) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}
