package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teach-app/teach-api/internal/models"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
)

type mockAvailabilityRepo struct {
	user    *models.User
	findErr error
	calls   int
}

func (m *mockAvailabilityRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.calls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

type mockCache struct {
	entries map[string][]byte
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.entries, key)
	return nil
}

func weeklyPlanWithSlot(day models.DayOfWeek, start, end models.TimeOfDay) models.WeeklyPlan {
	var plan models.WeeklyPlan
	plan.AddSlot(day, start, end)
	return plan
}

func TestAvailabilityProjectorProjectsFullWindow(t *testing.T) {
	plan := weeklyPlanWithSlot(models.Monday, models.TimeOfDay{Hour: 9}, models.TimeOfDay{Hour: 11})
	projector := NewAvailabilityProjector(7)

	// Sunday 2026-03-01 anchors the window; Monday falls on day two.
	anchor := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	window := projector.Project(&plan, anchor)

	require.Len(t, window, 7)
	for _, date := range []string{"2026-03-01", "2026-03-03", "2026-03-07"} {
		slots, ok := window[date]
		require.True(t, ok, date)
		assert.Empty(t, slots)
		assert.NotNil(t, slots)
	}

	monday := window["2026-03-02"]
	require.Len(t, monday, 1)
	assert.Equal(t, models.TimeOfDay{Hour: 9}, monday[0].StartTime)
	assert.Equal(t, models.TimeOfDay{Hour: 11}, monday[0].EndTime)
}

func TestAvailabilityProjectorWindowCrossesMonth(t *testing.T) {
	var plan models.WeeklyPlan
	projector := NewAvailabilityProjector(7)

	window := projector.Project(&plan, time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC))

	_, hasFeb := window["2026-02-28"]
	_, hasMar := window["2026-03-04"]
	assert.True(t, hasFeb)
	assert.True(t, hasMar)
}

func TestAvailabilityProjectorRefreshLeavesStaleKeys(t *testing.T) {
	plan := weeklyPlanWithSlot(models.Monday, models.TimeOfDay{Hour: 9}, models.TimeOfDay{Hour: 11})
	projector := NewAvailabilityProjector(7)

	stale := []models.ConcreteTimeSlot{{StartTime: models.TimeOfDay{Hour: 7}, EndTime: models.TimeOfDay{Hour: 8}}}
	existing := models.AvailabilityMap{
		"2025-12-25": stale,
		"2026-03-02": stale,
	}

	got := projector.Refresh(existing, &plan, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	// The key outside the window keeps its old value, the one inside is
	// overwritten wholesale.
	assert.Equal(t, stale, got["2025-12-25"])
	monday := got["2026-03-02"]
	require.Len(t, monday, 1)
	assert.Equal(t, models.TimeOfDay{Hour: 9}, monday[0].StartTime)
	assert.Len(t, got, 8)
}

func TestAvailabilityProjectorRefreshNilMap(t *testing.T) {
	var plan models.WeeklyPlan
	projector := NewAvailabilityProjector(7)

	got := projector.Refresh(nil, &plan, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Len(t, got, 7)
}

func TestAvailabilityServiceWindowCaches(t *testing.T) {
	repo := &mockAvailabilityRepo{user: &models.User{
		ID: "tutor-1",
		Availability: models.AvailabilityMap{
			"2026-03-02": {{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 11}}},
		},
	}}
	cache := newMockCache()
	svc := NewAvailabilityService(repo, cache, time.Minute, nil)

	first, err := svc.Window(context.Background(), "tutor-1")
	require.NoError(t, err)
	second, err := svc.Window(context.Background(), "tutor-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
}

func TestAvailabilityServiceWindowTutorNotFound(t *testing.T) {
	svc := NewAvailabilityService(&mockAvailabilityRepo{findErr: sql.ErrNoRows}, nil, 0, nil)

	_, err := svc.Window(context.Background(), "missing")
	assertErrCode(t, err, appErrors.ErrNotFound.Code)
}

func TestAvailabilityServiceDaySlots(t *testing.T) {
	repo := &mockAvailabilityRepo{user: &models.User{
		ID: "tutor-1",
		Availability: models.AvailabilityMap{
			"2026-03-02": {{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 11}}},
		},
	}}
	svc := NewAvailabilityService(repo, nil, 0, nil)

	slots, err := svc.DaySlots(context.Background(), "tutor-1", "2026-03-02")
	require.NoError(t, err)
	assert.Len(t, slots, 1)

	// A date inside the user's record but never published is empty, not nil.
	slots, err = svc.DaySlots(context.Background(), "tutor-1", "2026-03-09")
	require.NoError(t, err)
	require.NotNil(t, slots)
	assert.Empty(t, slots)

	_, err = svc.DaySlots(context.Background(), "tutor-1", "02-03-2026")
	assertErrCode(t, err, appErrors.ErrValidation.Code)
}

func TestAvailabilityServiceInvalidate(t *testing.T) {
	cache := newMockCache()
	cache.entries["availability:tutor-1"] = []byte("{}")
	svc := NewAvailabilityService(&mockAvailabilityRepo{}, cache, 0, nil)

	svc.Invalidate(context.Background(), "tutor-1")
	assert.Equal(t, []string{"availability:tutor-1"}, cache.deleted)
	assert.Empty(t, cache.entries)
}
