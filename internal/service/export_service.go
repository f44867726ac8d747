package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/crid-api/internal/models"
	appErrors "github.com/noah-isme/crid-api/pkg/errors"
	"github.com/noah-isme/crid-api/pkg/export"
)

type periodReader interface {
	GetByPeriod(ctx context.Context, studentID, period string) ([]models.Enrollment, error)
}

// ExportResult carries rendered export bytes with response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders a student's period registrations as CSV or PDF.
type ExportService struct {
	reader periodReader
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(reader periodReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reader: reader,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Render produces the transcript for (student, period) in the requested
// format ("csv" or "pdf").
func (s *ExportService) Render(ctx context.Context, studentID, period, format string) (*ExportResult, error) {
	enrollments, err := s.reader.GetByPeriod(ctx, studentID, period)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Course Code", "Course Name", "Instructor", "Status", "Enrolled At"},
		Rows:    make([]map[string]string, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Course Code": e.CourseCode,
			"Course Name": e.CourseName,
			"Instructor":  e.InstructorName,
			"Status":      e.Status,
			"Enrolled At": e.EnrolledAt.Format(time.RFC3339),
		})
	}

	switch format {
	case "", "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    exportFilename(studentID, period, "csv"),
		}, nil
	case "pdf":
		title := fmt.Sprintf("Registrations %s %s", studentID, period)
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    exportFilename(studentID, period, "pdf"),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func exportFilename(studentID, period, ext string) string {
	if period == "" {
		period = "current"
	}
	return fmt.Sprintf("registrations_%s_%s.%s", studentID, period, ext)
}
