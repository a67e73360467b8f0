package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOfDayMinutesSinceMidnight(t *testing.T) {
	assert.Equal(t, 0, TimeOfDay{}.MinutesSinceMidnight())
	assert.Equal(t, 570, TimeOfDay{Hour: 9, Minute: 30}.MinutesSinceMidnight())
	assert.Equal(t, 1439, TimeOfDay{Hour: 23, Minute: 59}.MinutesSinceMidnight())
}

func TestTimeOfDayAddMinutes(t *testing.T) {
	got := TimeOfDay{Hour: 9, Minute: 45}.AddMinutes(20)
	assert.Equal(t, TimeOfDay{Hour: 10, Minute: 5}, got)
}

func TestTimeOfDayValid(t *testing.T) {
	assert.True(t, TimeOfDay{Hour: 0, Minute: 0}.Valid())
	assert.True(t, TimeOfDay{Hour: 23, Minute: 59}.Valid())
	assert.False(t, TimeOfDay{Hour: 24, Minute: 0}.Valid())
	assert.False(t, TimeOfDay{Hour: 10, Minute: 60}.Valid())
	assert.False(t, TimeOfDay{Hour: -1, Minute: 0}.Valid())
}

func TestDayOfWeekFromWeekday(t *testing.T) {
	assert.Equal(t, Sunday, DayOfWeekFromWeekday(time.Sunday))
	assert.Equal(t, Monday, DayOfWeekFromWeekday(time.Monday))
	assert.Equal(t, Saturday, DayOfWeekFromWeekday(time.Saturday))
}

func TestWeeklyPlanAddSlotRejectsOverlap(t *testing.T) {
	plan := &WeeklyPlan{}

	_, ok := plan.AddSlot(Monday, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11})
	require.True(t, ok)

	cases := []struct {
		name  string
		start TimeOfDay
		end   TimeOfDay
	}{
		{"starts inside", TimeOfDay{Hour: 10}, TimeOfDay{Hour: 12}},
		{"ends inside", TimeOfDay{Hour: 8}, TimeOfDay{Hour: 10}},
		{"contains existing", TimeOfDay{Hour: 8}, TimeOfDay{Hour: 12}},
		{"contained by existing", TimeOfDay{Hour: 9, Minute: 30}, TimeOfDay{Hour: 10, Minute: 30}},
		{"identical", TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := plan.AddSlot(Monday, tc.start, tc.end)
			assert.False(t, ok)
		})
	}

	assert.Len(t, plan.Slots, 1)
}

func TestWeeklyPlanAddSlotAllowsTouchingBoundaries(t *testing.T) {
	plan := &WeeklyPlan{}

	_, ok := plan.AddSlot(Monday, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11})
	require.True(t, ok)

	// A slot ending exactly where the existing one starts, and one starting
	// exactly where it ends, both fit.
	_, ok = plan.AddSlot(Monday, TimeOfDay{Hour: 8}, TimeOfDay{Hour: 9})
	assert.True(t, ok)
	_, ok = plan.AddSlot(Monday, TimeOfDay{Hour: 11}, TimeOfDay{Hour: 12})
	assert.True(t, ok)
}

func TestWeeklyPlanAddSlotIgnoresOtherDays(t *testing.T) {
	plan := &WeeklyPlan{}

	_, ok := plan.AddSlot(Monday, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11})
	require.True(t, ok)
	_, ok = plan.AddSlot(Tuesday, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11})
	assert.True(t, ok)
}

func TestWeeklyPlanSlotsForDayKeepsInsertionOrder(t *testing.T) {
	plan := &WeeklyPlan{}

	// Later wall-clock time added first stays first.
	plan.AddSlot(Friday, TimeOfDay{Hour: 14}, TimeOfDay{Hour: 16})
	plan.AddSlot(Friday, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11})
	plan.AddSlot(Monday, TimeOfDay{Hour: 8}, TimeOfDay{Hour: 10})

	slots := plan.SlotsForDay(Friday)
	require.Len(t, slots, 2)
	assert.Equal(t, TimeOfDay{Hour: 14}, slots[0].StartTime)
	assert.Equal(t, TimeOfDay{Hour: 9}, slots[1].StartTime)
}

func TestWeeklyPlanUpdateSlot(t *testing.T) {
	plan := &WeeklyPlan{}
	first, _ := plan.AddSlot(Monday, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11})
	plan.AddSlot(Monday, TimeOfDay{Hour: 12}, TimeOfDay{Hour: 13})

	// Growing into the neighbour fails and mutates nothing.
	ok := plan.UpdateSlot(first.ID, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 12, Minute: 30})
	assert.False(t, ok)
	got, found := plan.FindSlot(first.ID)
	require.True(t, found)
	assert.Equal(t, TimeOfDay{Hour: 11}, got.EndTime)

	// A range that only overlaps the slot's own previous range succeeds.
	ok = plan.UpdateSlot(first.ID, TimeOfDay{Hour: 10}, TimeOfDay{Hour: 12})
	assert.True(t, ok)
	got, _ = plan.FindSlot(first.ID)
	assert.Equal(t, TimeOfDay{Hour: 10}, got.StartTime)
	assert.Equal(t, TimeOfDay{Hour: 12}, got.EndTime)
	assert.Equal(t, Monday, got.Day)
}

func TestWeeklyPlanUpdateSlotUnknownIDSucceeds(t *testing.T) {
	plan := &WeeklyPlan{}
	plan.AddSlot(Monday, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11})

	assert.True(t, plan.UpdateSlot("missing", TimeOfDay{Hour: 9}, TimeOfDay{Hour: 10}))
	assert.Len(t, plan.Slots, 1)
}

func TestWeeklyPlanRemoveSlotIdempotent(t *testing.T) {
	plan := &WeeklyPlan{}
	slot, _ := plan.AddSlot(Monday, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11})
	keep, _ := plan.AddSlot(Tuesday, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 11})

	plan.RemoveSlot(slot.ID)
	require.Len(t, plan.Slots, 1)
	assert.Equal(t, keep.ID, plan.Slots[0].ID)

	plan.RemoveSlot(slot.ID)
	plan.RemoveSlot("never-existed")
	assert.Len(t, plan.Slots, 1)
}

func TestWeeklyPlanJSONRoundTrip(t *testing.T) {
	plan := &WeeklyPlan{}
	plan.AddSlot(Wednesday, TimeOfDay{Hour: 9, Minute: 30}, TimeOfDay{Hour: 10, Minute: 15})

	raw, err := json.Marshal(plan)
	require.NoError(t, err)

	var decoded WeeklyPlan
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, plan.Slots, decoded.Slots)
}
