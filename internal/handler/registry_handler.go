package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/crid-api/internal/middleware"
	"github.com/noah-isme/crid-api/internal/models"
	"github.com/noah-isme/crid-api/internal/service"
	appErrors "github.com/noah-isme/crid-api/pkg/errors"
	"github.com/noah-isme/crid-api/pkg/response"
)

type registryService interface {
	Info(ctx context.Context) *models.RegistryInfo
	SetCurrentPeriod(ctx context.Context, claims *models.JWTClaims, req service.SetPeriodRequest) (*models.RegistryInfo, error)
	Enroll(ctx context.Context, claims *models.JWTClaims, req service.EnrollRequest) (*models.Enrollment, error)
	ChangeStatus(ctx context.Context, claims *models.JWTClaims, req service.ChangeStatusRequest) (*models.Enrollment, error)
	Remove(ctx context.Context, claims *models.JWTClaims, req service.RemoveRequest) error
	GetByPeriod(ctx context.Context, studentID, period string) ([]models.Enrollment, error)
}

type exportService interface {
	Render(ctx context.Context, studentID, period, format string) (*service.ExportResult, error)
}

// RegistryHandler exposes the registration endpoints.
type RegistryHandler struct {
	service registryService
	exports exportService
}

// NewRegistryHandler constructs a registry handler. The export service is
// optional; a nil value disables the export endpoint.
func NewRegistryHandler(svc registryService, exports exportService) *RegistryHandler {
	return &RegistryHandler{service: svc, exports: exports}
}

// Info godoc
// @Summary Registry ownership and current period
// @Tags Registry
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /registry [get]
func (h *RegistryHandler) Info(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Info(c.Request.Context()))
}

// SetPeriod godoc
// @Summary Replace the period mutations target
// @Tags Registry
// @Accept json
// @Produce json
// @Param payload body service.SetPeriodRequest true "Period payload"
// @Success 200 {object} response.Envelope
// @Router /registry/period [put]
func (h *RegistryHandler) SetPeriod(c *gin.Context) {
	var req service.SetPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	info, err := h.service.SetCurrentPeriod(c.Request.Context(), middleware.Claims(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// Enroll godoc
// @Summary Register a student into a course for the current period
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistryHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.service.Enroll(c.Request.Context(), middleware.Claims(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// ChangeStatus godoc
// @Summary Overwrite the status of a registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.ChangeStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /registrations/status [patch]
func (h *RegistryHandler) ChangeStatus(c *gin.Context) {
	var req service.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.service.ChangeStatus(c.Request.Context(), middleware.Claims(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Remove godoc
// @Summary Delete a registration from the current period
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RemoveRequest true "Removal payload"
// @Success 204
// @Router /registrations [delete]
func (h *RegistryHandler) Remove(c *gin.Context) {
	var req service.RemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Remove(c.Request.Context(), middleware.Claims(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByPeriod godoc
// @Summary List a student's registrations for a period
// @Tags Registrations
// @Produce json
// @Param studentId path string true "Student ID"
// @Param period query string false "Period token (defaults to current)"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/registrations [get]
func (h *RegistryHandler) ListByPeriod(c *gin.Context) {
	enrollments, err := h.service.GetByPeriod(c.Request.Context(), c.Param("studentId"), c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

// Export godoc
// @Summary Export a student's period registrations as CSV or PDF
// @Tags Registrations
// @Produce text/csv
// @Produce application/pdf
// @Param studentId path string true "Student ID"
// @Param period query string false "Period token (defaults to current)"
// @Param format query string false "csv or pdf"
// @Success 200
// @Router /students/{studentId}/registrations/export [get]
func (h *RegistryHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	result, err := h.exports.Render(c.Request.Context(), c.Param("studentId"), c.Query("period"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
