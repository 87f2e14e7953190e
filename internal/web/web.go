// Package web serves the visitor booking page and the admin console. All state
// lives in the query string and form fields; data comes from the booking API.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/slot-booking-api/internal/client"
	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/internal/models"
	"github.com/noah-isme/slot-booking-api/pkg/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	msgBookFailed   = "Failed to book appointment. Please try again."
	msgAdminFailed  = "Could not reach the booking service. Please try again."
	msgNoRows       = "Add at least one time slot."
	tabManage       = "manage"
	tabBookings     = "bookings"
	actionAddRow    = "add_row"
	actionRemoveRow = "remove_row:"
)

// VisitorAPI is the subset of the API used by the public booking page.
type VisitorAPI interface {
	AvailableSlots(ctx context.Context, date string) (*dto.AvailableSlotsResponse, error)
	BookSlot(ctx context.Context, req dto.BookSlotRequest) (*dto.BookSlotResponse, error)
}

// AdminAPI is the subset of the API used by the admin console.
type AdminAPI interface {
	CreateSlots(ctx context.Context, req dto.CreateSlotsRequest) (*dto.CreateSlotsResponse, error)
	Bookings(ctx context.Context, date string) (*dto.BookingsResponse, error)
	CancelBooking(ctx context.Context, id int64) (*dto.CancelBookingResponse, error)
	RequestReminder(ctx context.Context, id int64) (*dto.ReminderResponse, error)
	ExportURL(date, format string) string
}

// Server renders the booking UI.
type Server struct {
	visitor VisitorAPI
	admin   AdminAPI
	logger  *zap.Logger
	now     func() time.Time
}

// NewServer wires the UI to its API clients.
func NewServer(visitor VisitorAPI, admin AdminAPI, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{visitor: visitor, admin: admin, logger: logger, now: time.Now}
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"clock":     ClockLabel,
		"dateLabel": DateLabel,
		"deref":     deref,
	}).ParseFS(templateFS, "templates/*.html"))
}

// Register mounts the UI routes on r.
func (s *Server) Register(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())

	r.GET("/", s.visitorPage)
	r.POST("/book", s.book)

	admin := r.Group("/admin")
	admin.GET("", s.adminPage)
	admin.POST("/slots", s.createSlots)
	admin.POST("/bookings/:id/remind", s.remind)
	admin.GET("/bookings/:id/cancel", s.confirmCancel)
	admin.POST("/bookings/:id/cancel", s.cancel)
}

type alert struct {
	Kind       string
	Message    string
	Details    []string
	DismissURL string
}

type visitorView struct {
	Date             string
	MinDate          string
	Slots            []models.AvailableSlot
	SlotsUnreachable bool
	Selected         *models.AvailableSlot
	Form             dto.BookSlotRequest
	NotesText        string
	Alert            *alert
	Confirmed        *models.Booking
	ConfirmedSlot    *models.AvailableSlot
}

type adminView struct {
	Tab       string
	Date      string
	Rows      []dto.SlotWindow
	Created   []models.TimeSlot
	Bookings  []models.BookingRecord
	Alert     *alert
	ExportCSV string
	ExportPDF string
}

type confirmView struct {
	Date    string
	Booking models.BookingRecord
}

// apiContext tags API calls with the address of the browser being served.
func (s *Server) apiContext(c *gin.Context) context.Context {
	return client.WithForwardedFor(c.Request.Context(), c.ClientIP())
}

func (s *Server) today() string {
	return s.now().Format(validation.DateLayout)
}

// visitorDate keeps visitors on today or later.
func (s *Server) visitorDate(raw string) string {
	today := s.today()
	if !validation.IsDate(raw) || raw < today {
		return today
	}
	return raw
}

func (s *Server) adminDate(raw string) string {
	if !validation.IsDate(raw) {
		return s.today()
	}
	return raw
}

func (s *Server) visitorPage(c *gin.Context) {
	view := &visitorView{Date: s.visitorDate(c.Query("date")), MinDate: s.today()}
	s.loadSlots(s.apiContext(c), view)
	if id, err := strconv.ParseInt(c.Query("slot"), 10, 64); err == nil {
		view.Selected = findSlot(view.Slots, id)
	}
	view.Form.TimeSlotID = selectedID(view.Selected)
	c.HTML(http.StatusOK, "visitor.html", view)
}

func (s *Server) book(c *gin.Context) {
	ctx := s.apiContext(c)
	view := &visitorView{Date: s.visitorDate(c.PostForm("date")), MinDate: s.today()}

	id, _ := strconv.ParseInt(c.PostForm("time_slot_id"), 10, 64)
	view.NotesText = c.PostForm("notes")
	view.Form = dto.BookSlotRequest{
		TimeSlotID:   id,
		VisitorName:  c.PostForm("visitor_name"),
		VisitorEmail: c.PostForm("visitor_email"),
	}
	if strings.TrimSpace(view.NotesText) != "" {
		notes := view.NotesText
		view.Form.Notes = &notes
	}

	s.loadSlots(ctx, view)
	view.Selected = findSlot(view.Slots, id)

	resp, err := s.visitor.BookSlot(ctx, view.Form)
	if err != nil {
		view.Alert = s.alertFor(err, msgBookFailed)
		view.Alert.DismissURL = visitorURL(view.Date, selectedID(view.Selected))
		c.HTML(http.StatusOK, "visitor.html", view)
		return
	}

	view.Confirmed = resp.Booking
	view.ConfirmedSlot = view.Selected
	view.Selected = nil
	view.Form = dto.BookSlotRequest{}
	view.NotesText = ""
	view.Alert = &alert{Kind: "success", Message: resp.Message, DismissURL: visitorURL(view.Date, 0)}
	s.loadSlots(ctx, view)
	c.HTML(http.StatusOK, "visitor.html", view)
}

func (s *Server) loadSlots(ctx context.Context, view *visitorView) {
	resp, err := s.visitor.AvailableSlots(ctx, view.Date)
	if err != nil {
		s.logger.Warn("load available slots", zap.String("date", view.Date), zap.Error(err))
		view.Slots = nil
		view.SlotsUnreachable = true
		return
	}
	view.Slots = resp.Slots
	view.SlotsUnreachable = false
}

func (s *Server) adminPage(c *gin.Context) {
	view := s.newAdminView(c.Query("tab"), c.Query("date"))
	if view.Tab == tabBookings {
		s.loadBookings(s.apiContext(c), view)
	}
	s.renderAdmin(c, view)
}

func (s *Server) newAdminView(tab, date string) *adminView {
	if tab != tabBookings {
		tab = tabManage
	}
	view := &adminView{Tab: tab, Date: s.adminDate(date)}
	view.Rows = defaultRows()
	view.ExportCSV = s.admin.ExportURL(view.Date, "csv")
	view.ExportPDF = s.admin.ExportURL(view.Date, "pdf")
	return view
}

func defaultRows() []dto.SlotWindow {
	return []dto.SlotWindow{
		{StartTime: "09:00", EndTime: "09:30"},
		{StartTime: "10:00", EndTime: "10:30"},
	}
}

func (s *Server) createSlots(c *gin.Context) {
	view := s.newAdminView(tabManage, c.PostForm("date"))
	view.Rows = formRows(c.PostFormArray("start_time"), c.PostFormArray("end_time"))

	action := c.PostForm("action")
	switch {
	case action == actionAddRow:
		view.Rows = append(view.Rows, dto.SlotWindow{})
		s.renderAdmin(c, view)
		return
	case strings.HasPrefix(action, actionRemoveRow):
		idx, err := strconv.Atoi(strings.TrimPrefix(action, actionRemoveRow))
		if err == nil && idx >= 0 && idx < len(view.Rows) && len(view.Rows) > 1 {
			view.Rows = append(view.Rows[:idx], view.Rows[idx+1:]...)
		}
		s.renderAdmin(c, view)
		return
	}

	windows := nonBlank(view.Rows)
	if len(windows) == 0 {
		view.Alert = &alert{Kind: "error", Message: msgNoRows}
		s.renderAdmin(c, view)
		return
	}

	resp, err := s.admin.CreateSlots(s.apiContext(c), dto.CreateSlotsRequest{Date: view.Date, Slots: windows})
	if err != nil {
		view.Alert = s.alertFor(err, msgAdminFailed)
		s.renderAdmin(c, view)
		return
	}
	view.Created = resp.Slots
	view.Rows = defaultRows()
	view.Alert = &alert{Kind: "success", Message: resp.Message}
	s.renderAdmin(c, view)
}

func (s *Server) remind(c *gin.Context) {
	view := s.newAdminView(tabBookings, c.PostForm("date"))
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		view.Alert = &alert{Kind: "error", Message: "Booking not found"}
	} else if resp, err := s.admin.RequestReminder(s.apiContext(c), id); err != nil {
		view.Alert = s.alertFor(err, msgAdminFailed)
	} else {
		view.Alert = &alert{Kind: "success", Message: resp.Message}
	}
	s.loadBookings(s.apiContext(c), view)
	s.renderAdmin(c, view)
}

func (s *Server) confirmCancel(c *gin.Context) {
	view := s.newAdminView(tabBookings, c.Query("date"))
	s.loadBookings(s.apiContext(c), view)
	if view.Alert != nil {
		s.renderAdmin(c, view)
		return
	}

	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	for _, b := range view.Bookings {
		if b.ID == id {
			c.HTML(http.StatusOK, "confirm_cancel.html", confirmView{Date: view.Date, Booking: b})
			return
		}
	}
	view.Alert = &alert{Kind: "error", Message: "Booking not found"}
	s.renderAdmin(c, view)
}

func (s *Server) cancel(c *gin.Context) {
	view := s.newAdminView(tabBookings, c.PostForm("date"))
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		view.Alert = &alert{Kind: "error", Message: "Booking not found"}
	} else if resp, err := s.admin.CancelBooking(s.apiContext(c), id); err != nil {
		view.Alert = s.alertFor(err, msgAdminFailed)
	} else {
		view.Alert = &alert{Kind: "success", Message: resp.Message}
	}
	s.loadBookings(s.apiContext(c), view)
	s.renderAdmin(c, view)
}

// loadBookings fills the bookings table; a failure only sets an alert when
// none is already shown.
func (s *Server) loadBookings(ctx context.Context, view *adminView) {
	resp, err := s.admin.Bookings(ctx, view.Date)
	if err != nil {
		if view.Alert == nil {
			view.Alert = s.alertFor(err, msgAdminFailed)
		}
		return
	}
	view.Bookings = resp.Bookings
}

func (s *Server) alertFor(err error, unreachable string) *alert {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return &alert{Kind: "error", Message: apiErr.Message, Details: apiErr.FieldMessages()}
	}
	s.logger.Warn("booking api unreachable", zap.Error(err))
	return &alert{Kind: "error", Message: unreachable}
}

func formRows(starts, ends []string) []dto.SlotWindow {
	n := len(starts)
	if len(ends) > n {
		n = len(ends)
	}
	rows := make([]dto.SlotWindow, n)
	for i := range rows {
		if i < len(starts) {
			rows[i].StartTime = strings.TrimSpace(starts[i])
		}
		if i < len(ends) {
			rows[i].EndTime = strings.TrimSpace(ends[i])
		}
	}
	if len(rows) == 0 {
		rows = append(rows, dto.SlotWindow{})
	}
	return rows
}

// nonBlank drops rows where both times are empty.
func nonBlank(rows []dto.SlotWindow) []dto.SlotWindow {
	out := make([]dto.SlotWindow, 0, len(rows))
	for _, r := range rows {
		if r.StartTime == "" && r.EndTime == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func findSlot(slots []models.AvailableSlot, id int64) *models.AvailableSlot {
	for i := range slots {
		if slots[i].ID == id {
			return &slots[i]
		}
	}
	return nil
}

func selectedID(slot *models.AvailableSlot) int64 {
	if slot == nil {
		return 0
	}
	return slot.ID
}

func visitorURL(date string, slot int64) string {
	u := "/?date=" + date
	if slot > 0 {
		u += "&slot=" + strconv.FormatInt(slot, 10)
	}
	return u
}

func (s *Server) renderAdmin(c *gin.Context, view *adminView) {
	if view.Alert != nil && view.Alert.DismissURL == "" {
		view.Alert.DismissURL = "/admin?tab=" + view.Tab + "&date=" + view.Date
	}
	c.HTML(http.StatusOK, "admin.html", view)
}
