package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/internal/models"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
	"github.com/noah-isme/slot-booking-api/pkg/export"
	"github.com/noah-isme/slot-booking-api/pkg/validation"
)

type bookingLister interface {
	ListByDate(ctx context.Context, date string) ([]models.BookingRecord, error)
}

var exportHeaders = []string{"ID", "Date", "Start", "End", "Visitor", "Email", "Notes", "Booked At"}

// ExportService renders the bookings of a date as a downloadable document.
type ExportService struct {
	bookings  bookingLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(bookings bookingLister, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{bookings: bookings, validator: validate, logger: logger}
}

// Export renders bookings for query.Date in query.Format (csv when empty).
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*export.Document, error) {
	if err := validation.Struct(s.validator, query); err != nil {
		return nil, err
	}
	format := export.Format(query.Format)
	if format == "" {
		format = export.FormatCSV
	}

	records, err := s.bookings.ListByDate(ctx, query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
	}

	doc, err := export.Render(BookingsDataset(query.Date, records), format, "bookings-"+query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("bookings exported", zap.String("date", query.Date), zap.String("format", string(format)), zap.Int("rows", len(records)))
	return doc, nil
}

// BookingsDataset tabulates booking records.
func BookingsDataset(date string, records []models.BookingRecord) export.Dataset {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		notes := ""
		if r.Notes != nil {
			notes = *r.Notes
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.Date,
			r.StartTime,
			r.EndTime,
			r.VisitorName,
			r.VisitorEmail,
			notes,
			r.BookedAt,
		})
	}
	return export.Dataset{
		Title:   "Bookings for " + date,
		Headers: exportHeaders,
		Rows:    rows,
	}
}
