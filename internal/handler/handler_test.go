package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/internal/middleware"
	"github.com/noah-isme/slot-booking-api/internal/models"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
	"github.com/noah-isme/slot-booking-api/pkg/export"
)

type slotServiceMock struct {
	lastQuery dto.DateQuery
	lastOwner string
	lastReq   dto.CreateSlotsRequest
	listErr   error
	createErr error
}

func (m *slotServiceMock) ListAvailable(_ context.Context, query dto.DateQuery) (*dto.AvailableSlotsResponse, error) {
	m.lastQuery = query
	if m.listErr != nil {
		return nil, m.listErr
	}
	return &dto.AvailableSlotsResponse{Date: query.Date, Slots: []models.AvailableSlot{{ID: 1, StartTime: "09:00", EndTime: "09:30"}}}, nil
}

func (m *slotServiceMock) CreateSlots(_ context.Context, ownerID string, req dto.CreateSlotsRequest) (*dto.CreateSlotsResponse, error) {
	m.lastOwner = ownerID
	m.lastReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	if ownerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	slots := make([]models.TimeSlot, len(req.Slots))
	for i, w := range req.Slots {
		slots[i] = models.TimeSlot{ID: int64(i + 1), OwnerID: ownerID, Date: req.Date, StartTime: w.StartTime, EndTime: w.EndTime, IsAvailable: true}
	}
	return &dto.CreateSlotsResponse{Message: "Time slots created successfully", Slots: slots}, nil
}

type bookingServiceMock struct {
	lastBook  dto.BookSlotRequest
	bookErr   error
	cancelErr error
}

func (m *bookingServiceMock) Book(_ context.Context, req dto.BookSlotRequest) (*dto.BookSlotResponse, error) {
	m.lastBook = req
	if m.bookErr != nil {
		return nil, m.bookErr
	}
	return &dto.BookSlotResponse{Message: "Booking confirmed!", Booking: &models.Booking{ID: 1, TimeSlotID: req.TimeSlotID, VisitorName: req.VisitorName, VisitorEmail: req.VisitorEmail, CreatedAt: time.Now()}}, nil
}

func (m *bookingServiceMock) ListByDate(_ context.Context, query dto.DateQuery) (*dto.BookingsResponse, error) {
	return &dto.BookingsResponse{Date: query.Date, Bookings: []models.BookingRecord{
		{ID: 1, VisitorName: "Ann", VisitorEmail: "ann@x.com", Date: query.Date, StartTime: "09:00", EndTime: "09:30", BookedAt: "2025-02-27 10:00:00"},
	}}, nil
}

func (m *bookingServiceMock) Cancel(_ context.Context, id int64) (*dto.CancelBookingResponse, error) {
	if m.cancelErr != nil {
		return nil, m.cancelErr
	}
	return &dto.CancelBookingResponse{Message: "Booking cancelled", Booking: &models.BookingRecord{ID: id}}, nil
}

type reminderServiceMock struct {
	lastBooking int64
	lastCaller  string
}

func (m *reminderServiceMock) Request(_ context.Context, bookingID int64, requestedBy string) (*dto.ReminderResponse, error) {
	m.lastBooking = bookingID
	m.lastCaller = requestedBy
	return &dto.ReminderResponse{Message: "Reminder queued", Reminder: &models.BookingReminder{ID: 3, BookingID: bookingID, Status: models.ReminderStatusQueued}}, nil
}

type exportServiceMock struct{}

func (exportServiceMock) Export(_ context.Context, query dto.ExportQuery) (*export.Document, error) {
	if query.Format == "xlsx" {
		return nil, appErrors.FieldError("format", "The selected format is invalid.")
	}
	return &export.Document{Filename: "bookings-" + query.Date + ".csv", ContentType: "text/csv; charset=utf-8", Body: []byte("ID\n")}, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSlotHandlerAvailableSlots(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &slotServiceMock{}
	h := NewSlotHandler(svc)

	c, w := newGinContext(http.MethodGet, "/v1/available-slots?date=2025-03-01", nil)
	h.AvailableSlots(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-01", svc.lastQuery.Date)
	assert.JSONEq(t, `{"date":"2025-03-01","slots":[{"id":1,"start_time":"09:00","end_time":"09:30"}]}`, w.Body.String())
}

func TestSlotHandlerAvailableSlotsValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSlotHandler(&slotServiceMock{listErr: appErrors.FieldError("date", "The date field is required.")})

	c, w := newGinContext(http.MethodGet, "/v1/available-slots", nil)
	h.AvailableSlots(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"message":"The given data was invalid.","errors":{"date":["The date field is required."]}}`, w.Body.String())
}

func TestSlotHandlerCreateSlotsUsesCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &slotServiceMock{}
	h := NewSlotHandler(svc)

	payload := []byte(`{"date":"2025-03-01","slots":[{"start_time":"09:00","end_time":"09:30"},{"start_time":"10:00","end_time":"10:30"}]}`)
	c, w := newGinContext(http.MethodPost, "/v1/create-slots", payload)
	c.Set(middleware.ContextCallerKey, &models.CallerClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1"}})
	h.CreateSlots(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "admin-1", svc.lastOwner)
	require.Len(t, svc.lastReq.Slots, 2)
	body := decodeBody(t, w)
	assert.Equal(t, "Time slots created successfully", body["message"])
	assert.Len(t, body["slots"], 2)
}

func TestSlotHandlerCreateSlotsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSlotHandler(&slotServiceMock{})

	c, w := newGinContext(http.MethodPost, "/v1/create-slots", []byte(`{"date":"2025-03-01","slots":[]}`))
	h.CreateSlots(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decodeBody(t, w)["error"])
}

func TestSlotHandlerCreateSlotsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &slotServiceMock{}
	h := NewSlotHandler(svc)

	c, w := newGinContext(http.MethodPost, "/v1/create-slots", []byte(`{"date":`))
	h.CreateSlots(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "The request body is not valid JSON.", decodeBody(t, w)["message"])
	assert.Empty(t, svc.lastReq.Date)
}

func TestBookingHandlerBook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &bookingServiceMock{}
	h := NewBookingHandler(svc, &reminderServiceMock{}, exportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/v1/book-slot", []byte(`{"time_slot_id":1,"visitor_name":"Ann","visitor_email":"ann@x.com"}`))
	h.Book(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(1), svc.lastBook.TimeSlotID)
	body := decodeBody(t, w)
	assert.Equal(t, "Booking confirmed!", body["message"])
	booking := body["booking"].(map[string]interface{})
	assert.Equal(t, "ann@x.com", booking["visitor_email"])
	assert.Nil(t, booking["notes"])
}

func TestBookingHandlerBookConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(&bookingServiceMock{bookErr: appErrors.ErrSlotUnavailable}, &reminderServiceMock{}, exportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/v1/book-slot", []byte(`{"time_slot_id":1,"visitor_name":"Ann","visitor_email":"ann@x.com"}`))
	h.Book(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "This time slot is no longer available", decodeBody(t, w)["error"])
}

func TestBookingHandlerBookTypeMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(&bookingServiceMock{}, &reminderServiceMock{}, exportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/v1/book-slot", []byte(`{"time_slot_id":"abc"}`))
	h.Book(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "time_slot_id")
}

func TestBookingHandlerBookEmptyBodyReachesValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &bookingServiceMock{bookErr: appErrors.FieldError("visitor_name", "The visitor name field is required.")}
	h := NewBookingHandler(svc, &reminderServiceMock{}, exportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/v1/book-slot", nil)
	h.Book(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.BookSlotRequest{}, svc.lastBook)
}

func TestBookingHandlerCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(&bookingServiceMock{}, &reminderServiceMock{}, exportServiceMock{})

	c, w := newGinContext(http.MethodDelete, "/v1/bookings/7", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	h.Cancel(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Booking cancelled", decodeBody(t, w)["message"])

	c, w = newGinContext(http.MethodDelete, "/v1/bookings/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Cancel(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBookingHandlerCancelNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(&bookingServiceMock{cancelErr: appErrors.Clone(appErrors.ErrNotFound, "Booking not found")}, &reminderServiceMock{}, exportServiceMock{})

	c, w := newGinContext(http.MethodDelete, "/v1/bookings/9", nil)
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	h.Cancel(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Booking not found", decodeBody(t, w)["error"])
}

func TestBookingHandlerRequestReminder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reminders := &reminderServiceMock{}
	h := NewBookingHandler(&bookingServiceMock{}, reminders, exportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/v1/bookings/4/reminders", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	c.Set(middleware.ContextCallerKey, &models.CallerClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1"}})
	h.RequestReminder(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, int64(4), reminders.lastBooking)
	assert.Equal(t, "admin-1", reminders.lastCaller)
}

func TestBookingHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(&bookingServiceMock{}, &reminderServiceMock{}, exportServiceMock{})

	c, w := newGinContext(http.MethodGet, "/v1/bookings/export?date=2025-03-01", nil)
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="bookings-2025-03-01.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))

	c, w = newGinContext(http.MethodGet, "/v1/bookings/export?date=2025-03-01&format=xlsx", nil)
	h.Export(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

type pingerStub struct{ err error }

func (p pingerStub) PingContext(context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newGinContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{}).Ready(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{err: context.DeadlineExceeded}).Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
