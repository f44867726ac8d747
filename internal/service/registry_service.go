package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/crid-api/internal/models"
	"github.com/noah-isme/crid-api/internal/registry"
	appErrors "github.com/noah-isme/crid-api/pkg/errors"
)

type enrollmentRegistry interface {
	Administrator() string
	CurrentPeriod() string
	SetCurrentPeriod(ctx context.Context, caller, newPeriod string) error
	Enroll(ctx context.Context, caller string, input registry.EnrollInput) (models.Enrollment, error)
	ChangeStatus(ctx context.Context, caller, student, courseCode, newStatus string) (models.Enrollment, error)
	Remove(ctx context.Context, caller, student, courseCode string) error
	GetByPeriod(student, period string) []models.Enrollment
}

type journalWriter interface {
	Append(ctx context.Context, entry *models.JournalEntry) error
}

// EnrollRequest describes a registration creation payload.
type EnrollRequest struct {
	StudentID      string `json:"student_id" validate:"required"`
	CourseName     string `json:"course_name" validate:"required"`
	CourseCode     string `json:"course_code" validate:"required"`
	InstructorName string `json:"instructor_name" validate:"required"`
	InitialStatus  string `json:"initial_status" validate:"required"`
}

// ChangeStatusRequest overwrites the status of one registration.
type ChangeStatusRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseCode string `json:"course_code" validate:"required"`
	Status     string `json:"status" validate:"required"`
}

// RemoveRequest identifies the registration to delete.
type RemoveRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseCode string `json:"course_code" validate:"required"`
}

// SetPeriodRequest replaces the period mutations target.
type SetPeriodRequest struct {
	Period string `json:"period" validate:"required"`
}

// RegistryService orchestrates registry operations: payload validation,
// caller identity, the mutation itself, the durable journal write, and
// read-side cache maintenance.
type RegistryService struct {
	registry  enrollmentRegistry
	journal   journalWriter
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistryService constructs a RegistryService.
func NewRegistryService(reg enrollmentRegistry, journal journalWriter, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryService{registry: reg, journal: journal, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Info returns the registry owner and the current period.
func (s *RegistryService) Info(ctx context.Context) *models.RegistryInfo {
	return &models.RegistryInfo{
		Administrator: s.registry.Administrator(),
		CurrentPeriod: s.registry.CurrentPeriod(),
	}
}

// SetCurrentPeriod replaces the period mutating operations target.
func (s *RegistryService) SetCurrentPeriod(ctx context.Context, claims *models.JWTClaims, req SetPeriodRequest) (*models.RegistryInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}

	old := s.registry.CurrentPeriod()
	if err := s.registry.SetCurrentPeriod(ctx, callerID(claims), req.Period); err != nil {
		s.observe("set_period", err)
		return nil, err
	}
	s.observe("set_period", nil)

	s.appendJournal(ctx, &models.JournalEntry{
		Action: models.AuditActionSetPeriod,
		Period: req.Period,
		Actor:  callerID(claims),
	}, map[string]string{"old_period": old, "new_period": req.Period})

	return s.Info(ctx), nil
}

// Enroll registers a student into a course for the current period.
func (s *RegistryService) Enroll(ctx context.Context, claims *models.JWTClaims, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	enrollment, err := s.registry.Enroll(ctx, callerID(claims), registry.EnrollInput{
		Student:        req.StudentID,
		CourseName:     req.CourseName,
		CourseCode:     req.CourseCode,
		InstructorName: req.InstructorName,
		InitialStatus:  req.InitialStatus,
	})
	if err != nil {
		s.observe("enroll", err)
		return nil, err
	}
	s.observe("enroll", nil)

	s.appendJournal(ctx, &models.JournalEntry{
		Action:     models.AuditActionEnroll,
		StudentID:  req.StudentID,
		CourseCode: req.CourseCode,
		Period:     s.registry.CurrentPeriod(),
		Actor:      callerID(claims),
	}, enrollment)
	s.invalidate(ctx, req.StudentID)

	return &enrollment, nil
}

// ChangeStatus overwrites the status of an existing registration.
func (s *RegistryService) ChangeStatus(ctx context.Context, claims *models.JWTClaims, req ChangeStatusRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	enrollment, err := s.registry.ChangeStatus(ctx, callerID(claims), req.StudentID, req.CourseCode, req.Status)
	if err != nil {
		s.observe("change_status", err)
		return nil, err
	}
	s.observe("change_status", nil)

	s.appendJournal(ctx, &models.JournalEntry{
		Action:     models.AuditActionChangeStatus,
		StudentID:  req.StudentID,
		CourseCode: req.CourseCode,
		Period:     s.registry.CurrentPeriod(),
		Actor:      callerID(claims),
	}, enrollment)
	s.invalidate(ctx, req.StudentID)

	return &enrollment, nil
}

// Remove deletes a registration from the current period.
func (s *RegistryService) Remove(ctx context.Context, claims *models.JWTClaims, req RemoveRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid removal payload")
	}

	if err := s.registry.Remove(ctx, callerID(claims), req.StudentID, req.CourseCode); err != nil {
		s.observe("remove", err)
		return err
	}
	s.observe("remove", nil)

	s.appendJournal(ctx, &models.JournalEntry{
		Action:     models.AuditActionRemove,
		StudentID:  req.StudentID,
		CourseCode: req.CourseCode,
		Period:     s.registry.CurrentPeriod(),
		Actor:      callerID(claims),
	}, nil)
	s.invalidate(ctx, req.StudentID)

	return nil
}

// GetByPeriod returns the registrations stored for (student, period). An
// empty period defaults to the current one. Reads are public and cached.
func (s *RegistryService) GetByPeriod(ctx context.Context, studentID, period string) ([]models.Enrollment, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if period == "" {
		period = s.registry.CurrentPeriod()
	}

	key := cacheKey(studentID, period)
	var cached []models.Enrollment
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	enrollments := s.registry.GetByPeriod(studentID, period)
	if err := s.cache.Set(ctx, key, enrollments, 0); err != nil {
		s.logger.Warn("failed to cache period query", zap.String("key", key), zap.Error(err))
	}
	return enrollments, nil
}

func (s *RegistryService) appendJournal(ctx context.Context, entry *models.JournalEntry, payload interface{}) {
	if s.journal == nil {
		return
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			entry.Payload = raw
		}
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to journal registry mutation",
			zap.String("action", entry.Action),
			zap.String("student_id", entry.StudentID),
			zap.Error(err),
		)
	}
}

func (s *RegistryService) invalidate(ctx context.Context, studentID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("registrations:%s:*", studentID)); err != nil {
		s.logger.Warn("failed to invalidate cached registrations", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *RegistryService) observe(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	s.metrics.ObserveRegistryOperation(operation, outcome)
}

func callerID(claims *models.JWTClaims) string {
	if claims == nil {
		return ""
	}
	return claims.UserID
}

func cacheKey(studentID, period string) string {
	return fmt.Sprintf("registrations:%s:%s", studentID, period)
}
