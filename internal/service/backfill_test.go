package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitpact/internal/dateutil"
	"habitpact/internal/model"
)

type stubClock struct {
	now time.Time
}

func (c stubClock) Now() time.Time {
	return c.now
}

func day(s string) time.Time {
	t, err := dateutil.ParseKey(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPlanBackfill_HabitCreatedTodayUntouched(t *testing.T) {
	clock := stubClock{now: day("2025-06-01").Add(10 * time.Hour)}
	h := &model.Habit{ID: 1, CreatedAt: day("2025-06-01")}

	plan, err := planBackfill(h, clock)
	require.NoError(t, err)
	assert.False(t, plan.changed)
}

func TestPlanBackfill_UpToDateHabitUntouched(t *testing.T) {
	clock := stubClock{now: day("2025-06-05")}
	h := &model.Habit{
		ID:              1,
		CreatedAt:       day("2025-06-01"),
		LastPenaltyDate: "2025-06-04",
		History:         []bool{true, false, false},
		Streak:          0,
	}

	plan, err := planBackfill(h, clock)
	require.NoError(t, err)
	assert.False(t, plan.changed)
}

func TestPlanBackfill_FourDaysAway(t *testing.T) {
	// Created on D1, next open on D1+4: exactly D1+1..D1+3 are penalized.
	clock := stubClock{now: day("2025-06-05").Add(8 * time.Hour)}
	h := &model.Habit{ID: 1, CreatedAt: day("2025-06-01"), Streak: 2, History: []bool{true, true}}

	plan, err := planBackfill(h, clock)
	require.NoError(t, err)
	assert.True(t, plan.changed)
	assert.Equal(t, []string{"2025-06-02", "2025-06-03", "2025-06-04"}, plan.missedDays)
	assert.Equal(t, []bool{true, true, false, false, false}, plan.newHistory)
	assert.Equal(t, 0, plan.newStreak)
	assert.Equal(t, "2025-06-04", plan.newLastPenaltyDate)
	assert.Equal(t, 0, plan.skippedDays)
}

func TestPlanBackfill_SkipsExplicitlyMarkedDay(t *testing.T) {
	clock := stubClock{now: day("2025-06-05")}
	h := &model.Habit{
		ID:             1,
		CreatedAt:      day("2025-06-01"),
		LastMarkedDate: "2025-06-03",
		Streak:         1,
		History:        []bool{true},
	}

	plan, err := planBackfill(h, clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-02", "2025-06-04"}, plan.missedDays)
	assert.Equal(t, 1, plan.skippedDays)
	assert.Len(t, plan.newHistory, 3)
	assert.Equal(t, 0, plan.newStreak)
}

func TestPlanBackfill_AllDaysSkippedStillAdvances(t *testing.T) {
	// The only elapsed day was explicitly marked; no penalty, but the
	// watermark still moves so the range is not rescanned forever.
	clock := stubClock{now: day("2025-06-05")}
	h := &model.Habit{
		ID:              1,
		CreatedAt:       day("2025-06-01"),
		LastPenaltyDate: "2025-06-03",
		LastMarkedDate:  "2025-06-04",
		Streak:          3,
		History:         []bool{true, true, true},
	}

	plan, err := planBackfill(h, clock)
	require.NoError(t, err)
	assert.True(t, plan.changed)
	assert.Empty(t, plan.missedDays)
	assert.Equal(t, 1, plan.skippedDays)
	assert.Equal(t, 3, plan.newStreak)
	assert.Equal(t, []bool{true, true, true}, plan.newHistory)
	assert.Equal(t, "2025-06-04", plan.newLastPenaltyDate)
}

func TestPlanBackfill_StaleLastMarkedDateInsideRange(t *testing.T) {
	// lastMarkedDate is treated as authoritative: a stored value that
	// happens to fall inside the range exempts exactly that one day,
	// and never suppresses the rest of the backfill.
	clock := stubClock{now: day("2025-06-10")}
	h := &model.Habit{
		ID:             1,
		CreatedAt:      day("2025-06-01"),
		LastMarkedDate: "2025-06-05",
		History:        []bool{},
	}

	plan, err := planBackfill(h, clock)
	require.NoError(t, err)
	assert.True(t, plan.changed)
	assert.NotContains(t, plan.missedDays, "2025-06-05")
	assert.Len(t, plan.missedDays, 7) // 06-02..06-09 minus the marked day
	assert.Equal(t, "2025-06-09", plan.newLastPenaltyDate)
}

func TestPlanBackfill_InvalidStoredKey(t *testing.T) {
	clock := stubClock{now: day("2025-06-05")}
	h := &model.Habit{ID: 1, CreatedAt: day("2025-06-01"), LastPenaltyDate: "06/02/2025"}

	_, err := planBackfill(h, clock)
	assert.ErrorIs(t, err, dateutil.ErrInvalidDateKey)
}

func TestMaskStatus(t *testing.T) {
	clock := stubClock{now: day("2025-06-05")}

	t.Run("prior day status hidden", func(t *testing.T) {
		h := &model.Habit{Status: model.HabitStatusCompleted, LastMarkedDate: "2025-06-04"}
		masked := maskStatus(h, clock)
		assert.Equal(t, model.HabitStatusUnset, masked.Status)
		// Stored state is untouched.
		assert.Equal(t, model.HabitStatusCompleted, h.Status)
	})

	t.Run("today's status visible", func(t *testing.T) {
		h := &model.Habit{Status: model.HabitStatusMissed, LastMarkedDate: "2025-06-05"}
		assert.Equal(t, model.HabitStatusMissed, maskStatus(h, clock).Status)
	})

	t.Run("never marked", func(t *testing.T) {
		h := &model.Habit{Status: model.HabitStatusUnset}
		assert.Equal(t, model.HabitStatusUnset, maskStatus(h, clock).Status)
	})
}
