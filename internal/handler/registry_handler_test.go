package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/crid-api/internal/middleware"
	"github.com/noah-isme/crid-api/internal/models"
	"github.com/noah-isme/crid-api/internal/service"
	appErrors "github.com/noah-isme/crid-api/pkg/errors"
)

type registryServiceMock struct {
	infoResp      *models.RegistryInfo
	setResp       *models.RegistryInfo
	setErr        error
	enrollResp    *models.Enrollment
	enrollErr     error
	statusResp    *models.Enrollment
	statusErr     error
	removeErr     error
	listResp      []models.Enrollment
	listErr       error
	lastEnroll    service.EnrollRequest
	lastStudentID string
	lastPeriod    string
	enrollCaller  *models.JWTClaims
}

func (m *registryServiceMock) Info(ctx context.Context) *models.RegistryInfo {
	return m.infoResp
}

func (m *registryServiceMock) SetCurrentPeriod(ctx context.Context, claims *models.JWTClaims, req service.SetPeriodRequest) (*models.RegistryInfo, error) {
	return m.setResp, m.setErr
}

func (m *registryServiceMock) Enroll(ctx context.Context, claims *models.JWTClaims, req service.EnrollRequest) (*models.Enrollment, error) {
	m.lastEnroll = req
	m.enrollCaller = claims
	return m.enrollResp, m.enrollErr
}

func (m *registryServiceMock) ChangeStatus(ctx context.Context, claims *models.JWTClaims, req service.ChangeStatusRequest) (*models.Enrollment, error) {
	return m.statusResp, m.statusErr
}

func (m *registryServiceMock) Remove(ctx context.Context, claims *models.JWTClaims, req service.RemoveRequest) error {
	return m.removeErr
}

func (m *registryServiceMock) GetByPeriod(ctx context.Context, studentID, period string) ([]models.Enrollment, error) {
	m.lastStudentID = studentID
	m.lastPeriod = period
	return m.listResp, m.listErr
}

type exportServiceMock struct {
	result *service.ExportResult
	err    error
}

func (m *exportServiceMock) Render(ctx context.Context, studentID, period, format string) (*service.ExportResult, error) {
	return m.result, m.err
}

func newTestContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "secretary-1", Role: models.RoleSecretary})
	return c, w
}

func TestRegistryHandlerInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registryServiceMock{infoResp: &models.RegistryInfo{Administrator: "secretary-1", CurrentPeriod: "2025.1"}}
	handler := NewRegistryHandler(mockSvc, nil)

	c, w := newTestContext(t, http.MethodGet, "/registry", "")
	handler.Info(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.RegistryInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "2025.1", envelope.Data.CurrentPeriod)
}

func TestRegistryHandlerEnroll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registryServiceMock{enrollResp: &models.Enrollment{CourseCode: "C1", Status: "Normal"}}
	handler := NewRegistryHandler(mockSvc, nil)

	c, w := newTestContext(t, http.MethodPost, "/registrations",
		`{"student_id":"stu-1","course_name":"Calc 1","course_code":"C1","instructor_name":"ProfX","initial_status":"Normal"}`)
	handler.Enroll(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "stu-1", mockSvc.lastEnroll.StudentID)
	require.NotNil(t, mockSvc.enrollCaller)
	assert.Equal(t, "secretary-1", mockSvc.enrollCaller.UserID)
}

func TestRegistryHandlerEnrollInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRegistryHandler(&registryServiceMock{}, nil)

	c, w := newTestContext(t, http.MethodPost, "/registrations", `{"student_id":`)
	handler.Enroll(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistryHandlerEnrollConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registryServiceMock{enrollErr: appErrors.ErrAlreadyEnrolled}
	handler := NewRegistryHandler(mockSvc, nil)

	c, w := newTestContext(t, http.MethodPost, "/registrations",
		`{"student_id":"stu-1","course_name":"Calc 1","course_code":"C1","instructor_name":"ProfX","initial_status":"Normal"}`)
	handler.Enroll(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_ENROLLED")
}

func TestRegistryHandlerSetPeriod(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registryServiceMock{setResp: &models.RegistryInfo{Administrator: "secretary-1", CurrentPeriod: "2025.2"}}
	handler := NewRegistryHandler(mockSvc, nil)

	c, w := newTestContext(t, http.MethodPut, "/registry/period", `{"period":"2025.2"}`)
	handler.SetPeriod(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2025.2")
}

func TestRegistryHandlerSetPeriodForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registryServiceMock{setErr: appErrors.ErrNotAuthorized}
	handler := NewRegistryHandler(mockSvc, nil)

	c, w := newTestContext(t, http.MethodPut, "/registry/period", `{"period":"2025.2"}`)
	handler.SetPeriod(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_AUTHORIZED")
}

func TestRegistryHandlerChangeStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registryServiceMock{statusErr: appErrors.ErrEnrollmentNotFound}
	handler := NewRegistryHandler(mockSvc, nil)

	c, w := newTestContext(t, http.MethodPatch, "/registrations/status",
		`{"student_id":"stu-1","course_code":"C9","status":"Pending"}`)
	handler.ChangeStatus(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ENROLLMENT_NOT_FOUND")
}

func TestRegistryHandlerRemove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRegistryHandler(&registryServiceMock{}, nil)

	c, w := newTestContext(t, http.MethodDelete, "/registrations", `{"student_id":"stu-1","course_code":"C1"}`)
	handler.Remove(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRegistryHandlerListByPeriod(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registryServiceMock{listResp: []models.Enrollment{{CourseCode: "C1"}}}
	handler := NewRegistryHandler(mockSvc, nil)

	c, w := newTestContext(t, http.MethodGet, "/students/stu-1/registrations?period=2025.1", "")
	c.Params = gin.Params{{Key: "studentId", Value: "stu-1"}}
	handler.ListByPeriod(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stu-1", mockSvc.lastStudentID)
	assert.Equal(t, "2025.1", mockSvc.lastPeriod)
	assert.Contains(t, w.Body.String(), "C1")
}

func TestRegistryHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockExport := &exportServiceMock{result: &service.ExportResult{
		Content:     []byte("Course Code,Course Name\n"),
		ContentType: "text/csv",
		Filename:    "registrations_stu-1_2025.1.csv",
	}}
	handler := NewRegistryHandler(&registryServiceMock{}, mockExport)

	c, w := newTestContext(t, http.MethodGet, "/students/stu-1/registrations/export?format=csv", "")
	c.Params = gin.Params{{Key: "studentId", Value: "stu-1"}}
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "registrations_stu-1_2025.1.csv")
}

func TestRegistryHandlerExportDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRegistryHandler(&registryServiceMock{}, nil)

	c, w := newTestContext(t, http.MethodGet, "/students/stu-1/registrations/export", "")
	c.Params = gin.Params{{Key: "studentId", Value: "stu-1"}}
	handler.Export(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
