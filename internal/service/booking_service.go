package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/teach-app/teach-api/internal/models"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
)

// CandidateStepMinutes is the spacing between offered start times.
const CandidateStepMinutes = 5

// GenerateCandidates walks the day's availability windows and emits every
// start time from which a session of the given duration still ends inside
// the window. Windows are processed in their stored order and the results
// concatenated; candidates are neither sorted nor deduplicated, so windows
// that somehow overlap (possible only when the plan invariant was bypassed
// upstream) can yield repeated start times.
func GenerateCandidates(daySlots []models.ConcreteTimeSlot, durationMinutes int) []models.TimeOfDay {
	candidates := []models.TimeOfDay{}
	if durationMinutes <= 0 {
		return candidates
	}

	for _, slot := range daySlots {
		end := slot.EndTime.MinutesSinceMidnight()
		cursor := slot.StartTime
		for cursor.MinutesSinceMidnight()+durationMinutes <= end {
			candidates = append(candidates, cursor)
			cursor = cursor.AddMinutes(CandidateStepMinutes)
		}
	}
	return candidates
}

type bookingUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type bookingClassRepository interface {
	GetByID(ctx context.Context, id string) (*models.BaseClass, error)
}

type liveClassRepository interface {
	Create(ctx context.Context, liveClass *models.LiveClass) error
	ListTeaching(ctx context.Context, teacherID string) ([]models.LiveClass, error)
	ListLearning(ctx context.Context, studentID string) ([]models.LiveClass, error)
}

type candidateSource interface {
	DaySlots(ctx context.Context, teacherID, date string) ([]models.ConcreteTimeSlot, error)
}

// BookSessionRequest asks for a live class on a concrete date and start time.
type BookSessionRequest struct {
	ClassID   string           `json:"class_id" validate:"required"`
	Date      string           `json:"date" validate:"required"`
	StartTime models.TimeOfDay `json:"start_time"`
	Duration  int              `json:"duration" validate:"required,min=20"`
	Note      string           `json:"note" validate:"max=500"`
}

// BookingService turns published availability into booked live classes.
type BookingService struct {
	users        bookingUserRepository
	classes      bookingClassRepository
	liveClasses  liveClassRepository
	availability candidateSource
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBookingService builds the service.
func NewBookingService(users bookingUserRepository, classes bookingClassRepository, liveClasses liveClassRepository, availability candidateSource, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		users:        users,
		classes:      classes,
		liveClasses:  liveClasses,
		availability: availability,
		validator:    validate,
		logger:       logger,
	}
}

// Candidates lists the start times a student may pick for a tutor on one
// date, for the requested session length in minutes.
func (s *BookingService) Candidates(ctx context.Context, teacherID, date string, durationMinutes int) ([]models.TimeOfDay, error) {
	if durationMinutes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be positive")
	}

	daySlots, err := s.availability.DaySlots(ctx, teacherID, date)
	if err != nil {
		return nil, err
	}
	return GenerateCandidates(daySlots, durationMinutes), nil
}

// Book confirms a candidate start time and creates the live class. The
// chosen start must be one of the currently offered candidates.
func (s *BookingService) Book(ctx context.Context, studentID string, req BookSessionRequest) (*models.LiveClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	date, err := time.Parse(models.DateKeyLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}

	class, err := s.classes.GetByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	candidates, err := s.Candidates(ctx, class.TeacherID, req.Date, req.Duration)
	if err != nil {
		return nil, err
	}
	if !containsCandidate(candidates, req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "requested start time is not available")
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), req.StartTime.Hour, req.StartTime.Minute, 0, 0, time.UTC)
	liveClass := &models.LiveClass{
		Name:      class.Name,
		ClassID:   class.ID,
		TeacherID: class.TeacherID,
		StudentID: studentID,
		Date:      start,
		Duration:  req.Duration,
		Note:      req.Note,
	}

	if err := s.liveClasses.Create(ctx, liveClass); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create live class")
	}

	if student, err := s.users.FindByID(ctx, studentID); err == nil {
		student.EnrolledCourseNumber++
		if err := s.users.Update(ctx, student); err != nil {
			s.logger.Warn("failed to bump enrolled course count", zap.Error(err))
		}
	} else {
		s.logger.Warn("failed to load student after booking", zap.Error(err))
	}

	return liveClass, nil
}

// ListTeaching returns a tutor's booked sessions.
func (s *BookingService) ListTeaching(ctx context.Context, teacherID string) ([]models.LiveClass, error) {
	liveClasses, err := s.liveClasses.ListTeaching(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching sessions")
	}
	return liveClasses, nil
}

// ListLearning returns a student's booked sessions.
func (s *BookingService) ListLearning(ctx context.Context, studentID string) ([]models.LiveClass, error) {
	liveClasses, err := s.liveClasses.ListLearning(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list learning sessions")
	}
	return liveClasses, nil
}

func containsCandidate(candidates []models.TimeOfDay, start models.TimeOfDay) bool {
	for _, candidate := range candidates {
		if candidate == start {
			return true
		}
	}
	return false
}
