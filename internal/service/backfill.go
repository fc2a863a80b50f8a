package service

import (
	"habitpact/internal/dateutil"
	"habitpact/internal/model"
)

// backfillPlan is the computed outcome of reconciling a habit's elapsed
// days, before anything is persisted.
type backfillPlan struct {
	// missedDays are the date keys to penalize, oldest first.
	missedDays []string
	// skippedDays counts days inside the range already covered by an
	// explicit mark.
	skippedDays int
	newHistory  []bool
	newStreak   int
	// newLastPenaltyDate is yesterday's key when the plan changes anything.
	newLastPenaltyDate string
	// changed is false when the habit needs no write at all.
	changed bool
}

// planBackfill computes which elapsed days a habit owes penalties for.
// Pure: reads the habit and the clock, writes nothing.
//
// Days strictly after the last processed day up to and including
// yesterday are each treated as missed unless the day matches the
// habit's last explicit mark. The current day is never touched, and a
// habit created today has an empty range.
func planBackfill(h *model.Habit, clock dateutil.Clock) (backfillPlan, error) {
	yesterday := dateutil.YesterdayKey(clock)

	lastProcessed := h.LastPenaltyDate
	if lastProcessed == "" {
		lastProcessed = dateutil.KeyOf(h.CreatedAt)
	}

	// Lexicographic order equals chronological order for date keys.
	if lastProcessed >= yesterday {
		return backfillPlan{}, nil
	}

	days, err := dateutil.KeysBetween(lastProcessed, yesterday)
	if err != nil {
		return backfillPlan{}, err
	}
	if len(days) == 0 {
		return backfillPlan{}, nil
	}

	plan := backfillPlan{
		newHistory:         append([]bool(nil), h.History...),
		newStreak:          h.Streak,
		newLastPenaltyDate: yesterday,
		changed:            true,
	}

	for _, day := range days {
		if day == h.LastMarkedDate {
			// Explicitly marked already; never double-count.
			plan.skippedDays++
			continue
		}
		plan.missedDays = append(plan.missedDays, day)
		plan.newHistory = append(plan.newHistory, false)
		plan.newStreak = 0
	}

	return plan, nil
}

// maskStatus hides a stale status at read time: the stored field keeps
// whatever was set on lastMarkedDate, but readers only see it on the day
// it was set. Returns a copy; stored state is untouched.
func maskStatus(h *model.Habit, clock dateutil.Clock) *model.Habit {
	if h.LastMarkedDate == dateutil.TodayKey(clock) {
		return h
	}
	if h.Status == model.HabitStatusUnset {
		return h
	}
	masked := *h
	masked.Status = model.HabitStatusUnset
	return &masked
}
