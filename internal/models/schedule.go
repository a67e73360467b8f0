package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DayOfWeek names a weekday in a tutor's recurring plan.
type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

// AllDays lists the weekdays in display order.
var AllDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// DayOfWeekFromWeekday converts Go's calendar weekday (Sunday=0 .. Saturday=6)
// into the plan's day name. This is the single weekday convention used when
// projecting the plan onto calendar dates.
func DayOfWeekFromWeekday(w time.Weekday) DayOfWeek {
	switch w {
	case time.Sunday:
		return Sunday
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	default:
		return Saturday
	}
}

// Valid reports whether the value is one of the seven day names.
func (d DayOfWeek) Valid() bool {
	for _, day := range AllDays {
		if day == d {
			return true
		}
	}
	return false
}

// TimeOfDay is a wall-clock time with no date or timezone attached.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// MinutesSinceMidnight flattens the time for ordering and arithmetic.
func (t TimeOfDay) MinutesSinceMidnight() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.MinutesSinceMidnight() < other.MinutesSinceMidnight()
}

// AddMinutes returns the time n minutes later. The caller is responsible for
// keeping the result within the same day.
func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	total := t.MinutesSinceMidnight() + n
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

// Valid reports whether the time is a well-formed wall-clock value.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// String renders the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// WeeklyTimeSlot is one recurring availability window on a weekday.
// StartTime must be strictly before EndTime; a slot never crosses midnight.
type WeeklyTimeSlot struct {
	ID        string    `json:"id"`
	Day       DayOfWeek `json:"day"`
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
}

// WeeklyPlan holds a tutor's recurring availability. The invariant it
// maintains is that no two slots on the same day overlap; every mutation
// re-checks it before applying.
type WeeklyPlan struct {
	Slots []WeeklyTimeSlot `json:"slots"`
}

// SlotsForDay returns the day's slots in insertion order.
func (p *WeeklyPlan) SlotsForDay(day DayOfWeek) []WeeklyTimeSlot {
	var result []WeeklyTimeSlot
	for _, slot := range p.Slots {
		if slot.Day == day {
			result = append(result, slot)
		}
	}
	return result
}

// IsOverlapping reports whether the candidate range collides with any slot on
// the given day, skipping excludeID (used when editing a slot in place).
//
// The three clauses are checked separately rather than collapsed into a
// single interval test so that boundary equality behaves exactly as the
// booking flow expects: a new slot that starts where an existing one ends
// (or vice versa) does not overlap.
func (p *WeeklyPlan) IsOverlapping(day DayOfWeek, startTime, endTime TimeOfDay, excludeID string) bool {
	a := startTime.MinutesSinceMidnight()
	b := endTime.MinutesSinceMidnight()

	for _, slot := range p.SlotsForDay(day) {
		if slot.ID == excludeID {
			continue
		}
		c := slot.StartTime.MinutesSinceMidnight()
		d := slot.EndTime.MinutesSinceMidnight()
		if (a >= c && a < d) ||
			(b > c && b <= d) ||
			(a <= c && b >= d) {
			return true
		}
	}
	return false
}

// AddSlot appends a new slot with a fresh id. It returns false and leaves the
// plan untouched when the range overlaps an existing slot on that day.
func (p *WeeklyPlan) AddSlot(day DayOfWeek, startTime, endTime TimeOfDay) (WeeklyTimeSlot, bool) {
	if p.IsOverlapping(day, startTime, endTime, "") {
		return WeeklyTimeSlot{}, false
	}
	slot := WeeklyTimeSlot{
		ID:        uuid.NewString(),
		Day:       day,
		StartTime: startTime,
		EndTime:   endTime,
	}
	p.Slots = append(p.Slots, slot)
	return slot, true
}

// UpdateSlot changes the start and end of an existing slot in place. The
// day and id never change. It returns false and mutates nothing when the new
// range overlaps another slot on the same day.
func (p *WeeklyPlan) UpdateSlot(id string, startTime, endTime TimeOfDay) bool {
	for i := range p.Slots {
		if p.Slots[i].ID != id {
			continue
		}
		if p.IsOverlapping(p.Slots[i].Day, startTime, endTime, id) {
			return false
		}
		p.Slots[i].StartTime = startTime
		p.Slots[i].EndTime = endTime
		return true
	}
	// Unknown id: nothing to update, nothing overlaps.
	return true
}

// RemoveSlot deletes the slot with the given id. Removing an id that is not
// present is a no-op.
func (p *WeeklyPlan) RemoveSlot(id string) {
	kept := p.Slots[:0]
	for _, slot := range p.Slots {
		if slot.ID != id {
			kept = append(kept, slot)
		}
	}
	p.Slots = kept
}

// FindSlot returns the slot with the given id.
func (p *WeeklyPlan) FindSlot(id string) (WeeklyTimeSlot, bool) {
	for _, slot := range p.Slots {
		if slot.ID == id {
			return slot, true
		}
	}
	return WeeklyTimeSlot{}, false
}

// ConcreteTimeSlot is one calendar-dated instantiation of a weekly slot.
type ConcreteTimeSlot struct {
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
}

// DateKeyLayout is the key format of AvailabilityMap.
const DateKeyLayout = "2006-01-02"

// AvailabilityMap maps an ISO date string to the bookable windows derived
// from the weekly plan for that date. It is persisted on the user record as
// a denormalised cache and rebuilt for the rolling window on every save;
// dates outside the refreshed window keep their previous value.
type AvailabilityMap map[string][]ConcreteTimeSlot
