package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/crid-api/internal/models"
	appErrors "github.com/noah-isme/crid-api/pkg/errors"
)

type stubPeriodReader struct {
	enrollments []models.Enrollment
	err         error
}

func (s *stubPeriodReader) GetByPeriod(_ context.Context, _, _ string) ([]models.Enrollment, error) {
	return s.enrollments, s.err
}

func TestExportCSV(t *testing.T) {
	reader := &stubPeriodReader{enrollments: []models.Enrollment{
		{CourseName: "Calc 1", CourseCode: "C1", InstructorName: "ProfX", Status: "Normal", EnrolledAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		{CourseName: "Calc 2", CourseCode: "C2", InstructorName: "ProfY", Status: "Pending", EnrolledAt: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)},
	}}
	svc := NewExportService(reader, nil)

	result, err := svc.Render(context.Background(), "stu-1", "2025.1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "registrations_stu-1_2025.1.csv", result.Filename)

	body := string(result.Content)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Course Code")
	assert.Contains(t, body, "C1")
	assert.Contains(t, body, "ProfY")
	assert.Contains(t, body, "Pending")
}

func TestExportDefaultsToCSV(t *testing.T) {
	svc := NewExportService(&stubPeriodReader{}, nil)

	result, err := svc.Render(context.Background(), "stu-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "registrations_stu-1_current.csv", result.Filename)
}

func TestExportPDF(t *testing.T) {
	reader := &stubPeriodReader{enrollments: []models.Enrollment{
		{CourseName: "Calc 1", CourseCode: "C1", InstructorName: "ProfX", Status: "Normal", EnrolledAt: time.Now()},
	}}
	svc := NewExportService(reader, nil)

	result, err := svc.Render(context.Background(), "stu-1", "2025.1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "registrations_stu-1_2025.1.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&stubPeriodReader{}, nil)

	_, err := svc.Render(context.Background(), "stu-1", "2025.1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportPropagatesReadError(t *testing.T) {
	svc := NewExportService(&stubPeriodReader{err: appErrors.Clone(appErrors.ErrValidation, "student id is required")}, nil)

	_, err := svc.Render(context.Background(), "", "2025.1", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
