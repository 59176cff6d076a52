package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
	appErrors "github.com/abhinaba-ghosh/sarodwala/pkg/errors"
	"github.com/abhinaba-ghosh/sarodwala/pkg/export"
)

// ExportFormat names a supported booking export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

var exportHeaders = []string{"Date", "Time Slot", "Student", "Phone", "WhatsApp Opt-In", "Confirmed At"}

type bookingLister interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error)
}

// ExportService renders the teacher's booking list for download from the
// dashboard.
type ExportService struct {
	bookings  bookingLister
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	teacherID string
	loc       *time.Location
	logger    *zap.Logger
}

// NewExportService builds the service.
func NewExportService(bookings bookingLister, teacherID string, loc *time.Location, logger *zap.Logger) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		bookings:  bookings,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		teacherID: teacherID,
		loc:       loc,
		logger:    logger,
	}
}

// Bookings renders all bookings in the requested format and returns the
// payload with its content type and a download filename.
func (s *ExportService) Bookings(ctx context.Context, format ExportFormat) ([]byte, string, string, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	bookings, err := s.bookings.ListByTeacher(ctx, s.teacherID)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(bookings))}
	for _, b := range bookings {
		optIn := "no"
		if b.WhatsAppOptIn {
			optIn = "yes"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":            b.Date.In(s.loc).Format("Mon, 02 Jan 2006"),
			"Time Slot":       b.TimeSlot,
			"Student":         b.StudentName,
			"Phone":           b.PhoneNumber,
			"WhatsApp Opt-In": optIn,
			"Confirmed At":    b.CreatedAt.In(s.loc).Format(time.RFC3339),
		})
	}

	stamp := time.Now().In(s.loc).Format("2006-01-02")
	switch format {
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Class Bookings")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return payload, "application/pdf", fmt.Sprintf("bookings-%s.pdf", stamp), nil
	default:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return payload, "text/csv", fmt.Sprintf("bookings-%s.csv", stamp), nil
	}
}
