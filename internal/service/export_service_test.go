package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/internal/models"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
)

type bookingListerStub struct {
	records []models.BookingRecord
}

func (b bookingListerStub) ListByDate(context.Context, string) ([]models.BookingRecord, error) {
	return b.records, nil
}

func exportFixture() bookingListerStub {
	notes := "needs parking"
	return bookingListerStub{records: []models.BookingRecord{
		{ID: 1, VisitorName: "Ann", VisitorEmail: "ann@x.com", Date: "2025-03-01", StartTime: "09:00", EndTime: "09:30", BookedAt: "2025-02-27 10:00:00"},
		{ID: 2, VisitorName: "Bob", VisitorEmail: "bob@x.com", Notes: &notes, Date: "2025-03-01", StartTime: "10:00", EndTime: "10:30", BookedAt: "2025-02-27 11:00:00"},
	}}
}

func TestExportServiceCSVDefault(t *testing.T) {
	svc := NewExportService(exportFixture(), nil, zap.NewNop())

	doc, err := svc.Export(context.Background(), dto.ExportQuery{Date: "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "bookings-2025-03-01.csv", doc.Filename)
	lines := strings.Split(strings.TrimSpace(string(doc.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Date,Start,End,Visitor,Email,Notes,Booked At", lines[0])
	assert.Equal(t, "2,2025-03-01,10:00,10:30,Bob,bob@x.com,needs parking,2025-02-27 11:00:00", lines[2])
}

func TestExportServicePDF(t *testing.T) {
	svc := NewExportService(exportFixture(), nil, zap.NewNop())

	doc, err := svc.Export(context.Background(), dto.ExportQuery{Date: "2025-03-01", Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(exportFixture(), nil, zap.NewNop())

	_, err := svc.Export(context.Background(), dto.ExportQuery{Date: "2025-03-01", Format: "xlsx"})
	require.Error(t, err)
	assert.Equal(t, []string{"The selected format is invalid."}, appErrors.FromError(err).Fields["format"])
}
