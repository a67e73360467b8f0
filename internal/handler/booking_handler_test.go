package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teach-app/teach-api/internal/models"
	"github.com/teach-app/teach-api/internal/service"
)

type daySlotsMock struct {
	slots []models.ConcreteTimeSlot
}

func (m *daySlotsMock) DaySlots(ctx context.Context, teacherID, date string) ([]models.ConcreteTimeSlot, error) {
	return m.slots, nil
}

func newBookingHandler(slots []models.ConcreteTimeSlot) *BookingHandler {
	bookings := service.NewBookingService(nil, nil, nil, &daySlotsMock{slots: slots}, nil, nil)
	return NewBookingHandler(bookings, nil, service.NewMetricsService())
}

func TestBookingHandlerCandidates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandler([]models.ConcreteTimeSlot{
		{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 10}},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tutors/tutor-1/availability/candidates?date=2026-03-02&duration=20", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tutor-1"}}

	handler.Candidates(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.TimeOfDay `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 9)
	assert.Equal(t, models.TimeOfDay{Hour: 9}, envelope.Data[0])
	assert.Equal(t, models.TimeOfDay{Hour: 9, Minute: 40}, envelope.Data[8])
}

func TestBookingHandlerCandidatesMissingDuration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tutors/tutor-1/availability/candidates?date=2026-03-02", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tutor-1"}}

	handler.Candidates(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerCandidatesEmptyDay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tutors/tutor-1/availability/candidates?date=2026-03-02&duration=20", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tutor-1"}}

	handler.Candidates(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.TimeOfDay `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
}

func TestBookingHandlerBookUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBookingHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/bookings", nil)
	c.Request = req

	handler.Book(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
