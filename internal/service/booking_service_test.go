package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teach-app/teach-api/internal/models"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
)

type mockBookingUserRepo struct {
	users map[string]*models.User
}

func (m *mockBookingUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockBookingUserRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

type mockBookingClassRepo struct {
	class *models.BaseClass
	err   error
}

func (m *mockBookingClassRepo) GetByID(ctx context.Context, id string) (*models.BaseClass, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.class, nil
}

type mockLiveClassRepo struct {
	created  []*models.LiveClass
	teaching []models.LiveClass
	learning []models.LiveClass
}

func (m *mockLiveClassRepo) Create(ctx context.Context, liveClass *models.LiveClass) error {
	m.created = append(m.created, liveClass)
	return nil
}

func (m *mockLiveClassRepo) ListTeaching(ctx context.Context, teacherID string) ([]models.LiveClass, error) {
	return m.teaching, nil
}

func (m *mockLiveClassRepo) ListLearning(ctx context.Context, studentID string) ([]models.LiveClass, error) {
	return m.learning, nil
}

type mockCandidateSource struct {
	slots map[string][]models.ConcreteTimeSlot
}

func (m *mockCandidateSource) DaySlots(ctx context.Context, teacherID, date string) ([]models.ConcreteTimeSlot, error) {
	return m.slots[date], nil
}

func TestGenerateCandidatesStepsThroughWindow(t *testing.T) {
	daySlots := []models.ConcreteTimeSlot{
		{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 10}},
	}

	got := GenerateCandidates(daySlots, 20)

	// 09:00 through 09:40 inclusive, five minutes apart.
	require.Len(t, got, 9)
	assert.Equal(t, models.TimeOfDay{Hour: 9, Minute: 0}, got[0])
	assert.Equal(t, models.TimeOfDay{Hour: 9, Minute: 40}, got[8])
	for i, candidate := range got {
		assert.Equal(t, 540+i*5, candidate.MinutesSinceMidnight())
	}
}

func TestGenerateCandidatesExactFit(t *testing.T) {
	daySlots := []models.ConcreteTimeSlot{
		{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 9, Minute: 30}},
	}

	// A session that fills the window exactly is still offered.
	got := GenerateCandidates(daySlots, 30)
	require.Len(t, got, 1)
	assert.Equal(t, models.TimeOfDay{Hour: 9}, got[0])
}

func TestGenerateCandidatesDurationTooLong(t *testing.T) {
	daySlots := []models.ConcreteTimeSlot{
		{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 9, Minute: 30}},
	}

	got := GenerateCandidates(daySlots, 31)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerateCandidatesConcatenatesWindowsInOrder(t *testing.T) {
	daySlots := []models.ConcreteTimeSlot{
		{StartTime: models.TimeOfDay{Hour: 14}, EndTime: models.TimeOfDay{Hour: 14, Minute: 25}},
		{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 9, Minute: 25}},
	}

	// Later windows listed first stay first; the output follows window order,
	// not wall-clock order.
	got := GenerateCandidates(daySlots, 20)
	require.Len(t, got, 4)
	assert.Equal(t, models.TimeOfDay{Hour: 14}, got[0])
	assert.Equal(t, models.TimeOfDay{Hour: 9}, got[2])
}

func TestGenerateCandidatesEmptyInput(t *testing.T) {
	assert.Empty(t, GenerateCandidates(nil, 20))
	assert.Empty(t, GenerateCandidates([]models.ConcreteTimeSlot{
		{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 10}},
	}, 0))
}

func newBookingService(users *mockBookingUserRepo, classes *mockBookingClassRepo, live *mockLiveClassRepo, source *mockCandidateSource) *BookingService {
	return NewBookingService(users, classes, live, source, nil, nil)
}

func TestBookingServiceBook(t *testing.T) {
	users := &mockBookingUserRepo{users: map[string]*models.User{
		"student-1": {ID: "student-1"},
		"tutor-1":   {ID: "tutor-1", IsTeacher: true},
	}}
	classes := &mockBookingClassRepo{class: &models.BaseClass{ID: "class-1", Name: "Calculus", TeacherID: "tutor-1"}}
	live := &mockLiveClassRepo{}
	source := &mockCandidateSource{slots: map[string][]models.ConcreteTimeSlot{
		"2026-03-02": {{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 10}}},
	}}
	svc := newBookingService(users, classes, live, source)

	liveClass, err := svc.Book(context.Background(), "student-1", BookSessionRequest{
		ClassID:   "class-1",
		Date:      "2026-03-02",
		StartTime: models.TimeOfDay{Hour: 9, Minute: 15},
		Duration:  30,
		Note:      "limits and continuity",
	})
	require.NoError(t, err)
	assert.Equal(t, "Calculus", liveClass.Name)
	assert.Equal(t, "tutor-1", liveClass.TeacherID)
	assert.Equal(t, "student-1", liveClass.StudentID)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC), liveClass.Date)
	assert.Equal(t, 30, liveClass.Duration)
	require.Len(t, live.created, 1)
	assert.Equal(t, 1, users.users["student-1"].EnrolledCourseNumber)
}

func TestBookingServiceBookRejectsNonCandidateStart(t *testing.T) {
	users := &mockBookingUserRepo{users: map[string]*models.User{"student-1": {ID: "student-1"}}}
	classes := &mockBookingClassRepo{class: &models.BaseClass{ID: "class-1", TeacherID: "tutor-1"}}
	live := &mockLiveClassRepo{}
	source := &mockCandidateSource{slots: map[string][]models.ConcreteTimeSlot{
		"2026-03-02": {{StartTime: models.TimeOfDay{Hour: 9}, EndTime: models.TimeOfDay{Hour: 10}}},
	}}
	svc := newBookingService(users, classes, live, source)

	// 09:32 is not on the five minute grid.
	_, err := svc.Book(context.Background(), "student-1", BookSessionRequest{
		ClassID:   "class-1",
		Date:      "2026-03-02",
		StartTime: models.TimeOfDay{Hour: 9, Minute: 32},
		Duration:  20,
	})
	assertErrCode(t, err, appErrors.ErrConflict.Code)

	// 09:45 ends past the window for a 20 minute session.
	_, err = svc.Book(context.Background(), "student-1", BookSessionRequest{
		ClassID:   "class-1",
		Date:      "2026-03-02",
		StartTime: models.TimeOfDay{Hour: 9, Minute: 45},
		Duration:  20,
	})
	assertErrCode(t, err, appErrors.ErrConflict.Code)
	assert.Empty(t, live.created)
}

func TestBookingServiceBookValidation(t *testing.T) {
	svc := newBookingService(&mockBookingUserRepo{}, &mockBookingClassRepo{}, &mockLiveClassRepo{}, &mockCandidateSource{})

	_, err := svc.Book(context.Background(), "student-1", BookSessionRequest{
		ClassID:   "class-1",
		Date:      "2026-03-02",
		StartTime: models.TimeOfDay{Hour: 9},
		Duration:  15,
	})
	assertErrCode(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Book(context.Background(), "student-1", BookSessionRequest{
		ClassID:   "class-1",
		Date:      "March 2nd",
		StartTime: models.TimeOfDay{Hour: 9},
		Duration:  20,
	})
	assertErrCode(t, err, appErrors.ErrValidation.Code)
}

func TestBookingServiceBookClassNotFound(t *testing.T) {
	svc := newBookingService(&mockBookingUserRepo{}, &mockBookingClassRepo{err: sql.ErrNoRows}, &mockLiveClassRepo{}, &mockCandidateSource{})

	_, err := svc.Book(context.Background(), "student-1", BookSessionRequest{
		ClassID:   "missing",
		Date:      "2026-03-02",
		StartTime: models.TimeOfDay{Hour: 9},
		Duration:  20,
	})
	assertErrCode(t, err, appErrors.ErrNotFound.Code)
}

func TestBookingServiceCandidatesRequiresPositiveDuration(t *testing.T) {
	svc := newBookingService(&mockBookingUserRepo{}, &mockBookingClassRepo{}, &mockLiveClassRepo{}, &mockCandidateSource{})

	_, err := svc.Candidates(context.Background(), "tutor-1", "2026-03-02", 0)
	assertErrCode(t, err, appErrors.ErrValidation.Code)
}

func TestBookingServiceListings(t *testing.T) {
	live := &mockLiveClassRepo{
		teaching: []models.LiveClass{{ID: "lc-1"}},
		learning: []models.LiveClass{{ID: "lc-2"}, {ID: "lc-3"}},
	}
	svc := newBookingService(&mockBookingUserRepo{}, &mockBookingClassRepo{}, live, &mockCandidateSource{})

	teaching, err := svc.ListTeaching(context.Background(), "tutor-1")
	require.NoError(t, err)
	assert.Len(t, teaching, 1)

	learning, err := svc.ListLearning(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Len(t, learning, 2)
}
