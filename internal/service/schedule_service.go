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

// MinSlotMinutes is the shortest weekly slot a tutor may offer.
const MinSlotMinutes = 20

type scheduleUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type availabilityInvalidator interface {
	Invalidate(ctx context.Context, teacherID string)
}

// AddSlotRequest creates a new weekly slot.
type AddSlotRequest struct {
	Day       string           `json:"day" validate:"required"`
	StartTime models.TimeOfDay `json:"start_time"`
	EndTime   models.TimeOfDay `json:"end_time"`
}

// UpdateSlotRequest rewrites the time range of an existing slot.
type UpdateSlotRequest struct {
	StartTime models.TimeOfDay `json:"start_time"`
	EndTime   models.TimeOfDay `json:"end_time"`
}

// ScheduleService owns a tutor's weekly plan. Each mutation loads the user
// record, applies the change in memory, reprojects the availability window
// and writes the whole record back. The save replaces the stored plan and
// window unconditionally; concurrent editors race and the last write wins.
type ScheduleService struct {
	users     scheduleUserRepository
	projector *AvailabilityProjector
	cache     availabilityInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService builds the service. The cache invalidator may be nil.
func NewScheduleService(users scheduleUserRepository, projector *AvailabilityProjector, cache availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if projector == nil {
		projector = NewAvailabilityProjector(0)
	}
	return &ScheduleService{
		users:     users,
		projector: projector,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// GetSchedule returns a tutor's weekly plan.
func (s *ScheduleService) GetSchedule(ctx context.Context, userID string) (*models.WeeklyPlan, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.WeeklyPlan, nil
}

// AddSlot appends a new weekly slot and saves the user record.
func (s *ScheduleService) AddSlot(ctx context.Context, userID string, req AddSlotRequest) (*models.WeeklyTimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	day := models.DayOfWeek(req.Day)
	if !day.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day of week")
	}
	if err := validateSlotRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	user, err := s.loadTeacher(ctx, userID)
	if err != nil {
		return nil, err
	}

	slot, ok := user.WeeklyPlan.AddSlot(day, req.StartTime, req.EndTime)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrSlotOverlap, "")
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return &slot, nil
}

// UpdateSlot rewrites an existing slot's range in place and saves. The slot's
// day and id never change.
func (s *ScheduleService) UpdateSlot(ctx context.Context, userID, slotID string, req UpdateSlotRequest) (*models.WeeklyTimeSlot, error) {
	if err := validateSlotRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	user, err := s.loadTeacher(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, found := user.WeeklyPlan.FindSlot(slotID); !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
	}
	if !user.WeeklyPlan.UpdateSlot(slotID, req.StartTime, req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrSlotOverlap, "")
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	slot, _ := user.WeeklyPlan.FindSlot(slotID)
	return &slot, nil
}

// RemoveSlot deletes a slot and saves. Removing an unknown slot id is a
// no-op that still succeeds.
func (s *ScheduleService) RemoveSlot(ctx context.Context, userID, slotID string) error {
	user, err := s.loadTeacher(ctx, userID)
	if err != nil {
		return err
	}

	user.WeeklyPlan.RemoveSlot(slotID)
	return s.save(ctx, user)
}

// validateSlotRange rejects malformed ranges before the overlap check ever
// runs, so callers can distinguish the three failure reasons.
func validateSlotRange(start, end models.TimeOfDay) error {
	if !start.Valid() || !end.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "times must be within 00:00-23:59")
	}
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrInvalidTimeRange, "")
	}
	if end.MinutesSinceMidnight()-start.MinutesSinceMidnight() < MinSlotMinutes {
		return appErrors.Clone(appErrors.ErrSlotTooShort, "")
	}
	return nil
}

func (s *ScheduleService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (s *ScheduleService) loadTeacher(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only tutors manage a weekly schedule")
	}
	return user, nil
}

func (s *ScheduleService) save(ctx context.Context, user *models.User) error {
	user.Availability = s.projector.Refresh(user.Availability, &user.WeeklyPlan, s.now())

	if err := s.users.Update(ctx, user); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, user.ID)
	}
	return nil
}
