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

	"github.com/teach-app/teach-api/internal/middleware"
	"github.com/teach-app/teach-api/internal/models"
	"github.com/teach-app/teach-api/internal/service"
	"github.com/teach-app/teach-api/pkg/export"
	"github.com/teach-app/teach-api/pkg/response"
)

type scheduleUserRepoMock struct {
	user *models.User
}

func (m *scheduleUserRepoMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.user, nil
}

func (m *scheduleUserRepoMock) Update(ctx context.Context, user *models.User) error {
	m.user = user
	return nil
}

func newScheduleHandler(user *models.User) (*ScheduleHandler, *scheduleUserRepoMock) {
	repo := &scheduleUserRepoMock{user: user}
	svc := service.NewScheduleService(repo, nil, nil, nil, nil)
	return NewScheduleHandler(svc, nil, export.NewSchedulePDFExporter(), service.NewMetricsService()), repo
}

func postJSON(t *testing.T, c *gin.Context, path string, payload interface{}) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
}

func TestScheduleHandlerAddSlot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newScheduleHandler(&models.User{ID: "tutor-1", IsTeacher: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(t, c, "/tutors/me/schedule/slots", service.AddSlotRequest{
		Day:       "Monday",
		StartTime: models.TimeOfDay{Hour: 9},
		EndTime:   models.TimeOfDay{Hour: 11},
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "tutor-1", IsTeacher: true})

	handler.AddSlot(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.user.WeeklyPlan.Slots, 1)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestScheduleHandlerAddSlotInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newScheduleHandler(&models.User{ID: "tutor-1", IsTeacher: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/tutors/me/schedule/slots", bytes.NewReader([]byte("{not json")))
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "tutor-1", IsTeacher: true})

	handler.AddSlot(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerAddSlotOverlapConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tutor := &models.User{ID: "tutor-1", IsTeacher: true}
	tutor.WeeklyPlan.AddSlot(models.Monday, models.TimeOfDay{Hour: 9}, models.TimeOfDay{Hour: 11})
	handler, _ := newScheduleHandler(tutor)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(t, c, "/tutors/me/schedule/slots", service.AddSlotRequest{
		Day:       "Monday",
		StartTime: models.TimeOfDay{Hour: 10},
		EndTime:   models.TimeOfDay{Hour: 12},
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "tutor-1", IsTeacher: true})

	handler.AddSlot(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "SLOT_OVERLAP", envelope.Error.Code)
}

func TestScheduleHandlerAddSlotUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newScheduleHandler(&models.User{ID: "tutor-1", IsTeacher: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(t, c, "/tutors/me/schedule/slots", service.AddSlotRequest{Day: "Monday"})

	handler.AddSlot(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScheduleHandlerRemoveSlotNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newScheduleHandler(&models.User{ID: "tutor-1", IsTeacher: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/tutors/me/schedule/slots/unknown", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "slotId", Value: "unknown"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "tutor-1", IsTeacher: true})

	handler.RemoveSlot(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestScheduleHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tutor := &models.User{ID: "tutor-1", IsTeacher: true}
	tutor.WeeklyPlan.AddSlot(models.Friday, models.TimeOfDay{Hour: 9}, models.TimeOfDay{Hour: 10})
	handler, _ := newScheduleHandler(tutor)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tutors/tutor-1/schedule", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tutor-1"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.WeeklyPlan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Slots, 1)
}
