package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teach-app/teach-api/internal/models"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
)

// AvailabilityProjector expands a recurring weekly plan onto concrete
// calendar dates. It only ever reads the plan; the derived map is written
// back onto the user record by the schedule save flow.
type AvailabilityProjector struct {
	windowDays int
}

// NewAvailabilityProjector constructs a projector for the given rolling
// window length (defaults to 7 days).
func NewAvailabilityProjector(windowDays int) *AvailabilityProjector {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &AvailabilityProjector{windowDays: windowDays}
}

// WindowDays returns the configured window length.
func (p *AvailabilityProjector) WindowDays() int {
	return p.windowDays
}

// Project derives per-date slot lists for each date in [anchor,
// anchor+windowDays). Every date in the window gets a key, even when its
// weekday has no slots. Weekday resolution follows time.Weekday
// (see models.DayOfWeekFromWeekday).
func (p *AvailabilityProjector) Project(plan *models.WeeklyPlan, anchor time.Time) models.AvailabilityMap {
	result := make(models.AvailabilityMap, p.windowDays)

	for i := 0; i < p.windowDays; i++ {
		date := anchor.AddDate(0, 0, i)
		day := models.DayOfWeekFromWeekday(date.Weekday())

		slots := []models.ConcreteTimeSlot{}
		for _, weekly := range plan.SlotsForDay(day) {
			slots = append(slots, models.ConcreteTimeSlot{
				StartTime: weekly.StartTime,
				EndTime:   weekly.EndTime,
			})
		}
		result[date.Format(models.DateKeyLayout)] = slots
	}

	return result
}

// Refresh merges a freshly projected window into the persisted availability
// map. Each projected date replaces its previous value unconditionally;
// dates outside the window are left as they were. Stale leftover keys are
// intentional: only the rolling window is refreshed per save.
func (p *AvailabilityProjector) Refresh(existing models.AvailabilityMap, plan *models.WeeklyPlan, anchor time.Time) models.AvailabilityMap {
	if existing == nil {
		existing = models.AvailabilityMap{}
	}
	for date, slots := range p.Project(plan, anchor) {
		existing[date] = slots
	}
	return existing
}

type availabilityUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AvailabilityService serves the persisted per-date availability of a tutor.
type AvailabilityService struct {
	users    availabilityUserRepository
	cache    availabilityCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAvailabilityService constructs the service. The cache may be nil.
func NewAvailabilityService(users availabilityUserRepository, cache availabilityCache, cacheTTL time.Duration, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{users: users, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func availabilityCacheKey(teacherID string) string {
	return fmt.Sprintf("availability:%s", teacherID)
}

// Window returns the tutor's whole persisted availability map.
func (s *AvailabilityService) Window(ctx context.Context, teacherID string) (models.AvailabilityMap, error) {
	if s.cache != nil {
		var cached models.AvailabilityMap
		if err := s.cache.Get(ctx, availabilityCacheKey(teacherID), &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.Error(err))
		}
	}

	user, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}

	availability := user.Availability
	if availability == nil {
		availability = models.AvailabilityMap{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, availabilityCacheKey(teacherID), availability, s.cacheTTL); err != nil {
			s.logger.Warn("availability cache write failed", zap.Error(err))
		}
	}
	return availability, nil
}

// DaySlots returns the persisted slot list for one ISO date. Dates the tutor
// never published resolve to an empty list.
func (s *AvailabilityService) DaySlots(ctx context.Context, teacherID, date string) ([]models.ConcreteTimeSlot, error) {
	if _, err := time.Parse(models.DateKeyLayout, date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}

	window, err := s.Window(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	slots := window[date]
	if slots == nil {
		slots = []models.ConcreteTimeSlot{}
	}
	return slots, nil
}

// Invalidate drops the cached availability of a tutor after a schedule save.
func (s *AvailabilityService) Invalidate(ctx context.Context, teacherID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, availabilityCacheKey(teacherID)); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}
