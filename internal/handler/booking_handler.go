package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teach-app/teach-api/internal/service"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
	"github.com/teach-app/teach-api/pkg/response"
)

// BookingHandler exposes availability lookups and session booking.
type BookingHandler struct {
	bookings     *service.BookingService
	availability *service.AvailabilityService
	metrics      *service.MetricsService
}

// NewBookingHandler constructs a booking handler.
func NewBookingHandler(bookings *service.BookingService, availability *service.AvailabilityService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{bookings: bookings, availability: availability, metrics: metrics}
}

// Availability godoc
// @Summary Get a tutor's projected availability
// @Description Returns the rolling availability window, or a single day when date is given
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutor ID"
// @Param date query string false "Day to inspect (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutors/{id}/availability [get]
func (h *BookingHandler) Availability(c *gin.Context) {
	teacherID := c.Param("id")

	if date := c.Query("date"); date != "" {
		slots, err := h.availability.DaySlots(c.Request.Context(), teacherID, date)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, slots, nil)
		return
	}

	window, err := h.availability.Window(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Candidates godoc
// @Summary List bookable start times
// @Description Enumerates start times that fit the requested duration within a day's availability
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutor ID"
// @Param date query string true "Day to inspect (YYYY-MM-DD)"
// @Param duration query int true "Session length in minutes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tutors/{id}/availability/candidates [get]
func (h *BookingHandler) Candidates(c *gin.Context) {
	duration, err := strconv.Atoi(c.Query("duration"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "duration must be an integer"))
		return
	}

	candidates, err := h.bookings.Candidates(c.Request.Context(), c.Param("id"), c.Query("date"), duration)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}

// Book godoc
// @Summary Book a live session
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.BookSessionRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Book(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		return
	}

	var req service.BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	liveClass, err := h.bookings.Book(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordBooking()
	response.Created(c, liveClass)
}

// Teaching godoc
// @Summary List sessions the caller teaches
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /bookings/teaching [get]
func (h *BookingHandler) Teaching(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		return
	}

	liveClasses, err := h.bookings.ListTeaching(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, liveClasses, nil)
}

// Learning godoc
// @Summary List sessions the caller attends
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /bookings/learning [get]
func (h *BookingHandler) Learning(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		return
	}

	liveClasses, err := h.bookings.ListLearning(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, liveClasses, nil)
}
