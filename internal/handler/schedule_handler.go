package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teach-app/teach-api/internal/service"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
	"github.com/teach-app/teach-api/pkg/export"
	"github.com/teach-app/teach-api/pkg/response"
)

// ScheduleHandler exposes weekly plan endpoints for tutors.
type ScheduleHandler struct {
	service  *service.ScheduleService
	users    *service.UserService
	exporter *export.SchedulePDFExporter
	metrics  *service.MetricsService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService, users *service.UserService, exporter *export.SchedulePDFExporter, metrics *service.MetricsService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, users: users, exporter: exporter, metrics: metrics}
}

// Get godoc
// @Summary Get a tutor's weekly plan
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutors/{id}/schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	plan, err := h.service.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// AddSlot godoc
// @Summary Add a weekly time slot
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AddSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tutors/me/schedule/slots [post]
func (h *ScheduleHandler) AddSlot(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		return
	}

	var req service.AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	slot, err := h.service.AddSlot(c.Request.Context(), claims.UserID, req)
	h.metrics.RecordSlotMutation("add", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// UpdateSlot godoc
// @Summary Update a weekly time slot
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slotId path string true "Slot ID"
// @Param payload body service.UpdateSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tutors/me/schedule/slots/{slotId} [put]
func (h *ScheduleHandler) UpdateSlot(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		return
	}

	var req service.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	slot, err := h.service.UpdateSlot(c.Request.Context(), claims.UserID, c.Param("slotId"), req)
	h.metrics.RecordSlotMutation("update", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// RemoveSlot godoc
// @Summary Remove a weekly time slot
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param slotId path string true "Slot ID"
// @Success 204 "No Content"
// @Router /tutors/me/schedule/slots/{slotId} [delete]
func (h *ScheduleHandler) RemoveSlot(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		return
	}

	err := h.service.RemoveSlot(c.Request.Context(), claims.UserID, c.Param("slotId"))
	h.metrics.RecordSlotMutation("remove", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a tutor's weekly plan as PDF
// @Tags Schedule
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Tutor ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /tutors/{id}/schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	pdf, err := h.exporter.Render(user.UserName, &user.WeeklyPlan)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to render schedule"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=schedule-%s.pdf", user.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
