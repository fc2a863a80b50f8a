package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"habitpact/internal/dateutil"
	"habitpact/internal/events"
	"habitpact/internal/model"
	"habitpact/pkg/metrics"
)

// HabitStore is the persistence surface the habit engine writes through.
type HabitStore interface {
	Create(ctx context.Context, h *model.Habit) error
	ListByUser(ctx context.Context, userID int64) ([]*model.Habit, error)
	FindByIDForUser(ctx context.Context, habitID, userID int64) (*model.Habit, error)
	Delete(ctx context.Context, habitID, userID int64) error
	ApplyMark(ctx context.Context, h *model.Habit, prevMarkedDate string, entries []*model.Transaction, missEvents []events.HabitMissedPayload) error
	ApplyBackfill(ctx context.Context, h *model.Habit, prevPenaltyDate string, entries []*model.Transaction, missEvents []events.HabitMissedPayload) (bool, error)
}

// UserDirectory resolves habit owners and their partners.
type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// Locker is a best-effort once-only gate (Redis SetNX underneath). It may
// fail open; correctness rests on the store's compare-and-set.
type Locker interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
}

type HabitService struct {
	habits        HabitStore
	users         UserDirectory
	locks         Locker
	clock         dateutil.Clock
	logger        *zap.Logger
	penaltyAmount int64
}

func NewHabitService(
	habits HabitStore,
	users UserDirectory,
	locks Locker,
	clock dateutil.Clock,
	logger *zap.Logger,
	penaltyAmount int64,
) *HabitService {
	return &HabitService{
		habits:        habits,
		users:         users,
		locks:         locks,
		clock:         clock,
		logger:        logger,
		penaltyAmount: penaltyAmount,
	}
}

type CreateHabitInput struct {
	Name        string
	Description string
	Icon        string
	Color       string
}

const defaultHabitColor = "accent-blue"

// habitColors is the fixed tag set the UI knows how to render.
var habitColors = map[string]bool{
	"accent-blue":   true,
	"accent-purple": true,
	"accent-green":  true,
	"accent-red":    true,
}

// Create adds a habit for the user. Habits require an active partner, so
// every future miss has someone to mirror the penalty to. Name and
// description are trimmed; an unknown color falls back to the default.
func (s *HabitService) Create(ctx context.Context, userID int64, in CreateHabitInput) (*model.Habit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	color := in.Color
	if !habitColors[color] {
		color = defaultHabitColor
	}

	owner, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromStore(err)
	}
	if owner.PartnerID == nil {
		return nil, ErrNoPartner
	}

	h := &model.Habit{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Icon:        in.Icon,
		Color:       color,
	}
	if err := s.habits.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ListForUser returns the user's habits, reconciling elapsed days first.
// Each habit's backfill is isolated: a failure on one habit logs and
// returns that habit as stored rather than aborting the whole list.
// Returned statuses are masked to the current calendar day.
func (s *HabitService) ListForUser(ctx context.Context, userID int64) ([]*model.Habit, error) {
	habits, err := s.habits.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return []*model.Habit{}, nil
	}

	owner, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Habit, 0, len(habits))
	for _, h := range habits {
		reconciled, err := s.backfillHabit(ctx, h, owner)
		if err != nil {
			s.logger.Error("backfill failed, returning habit as stored",
				zap.Int64("habit_id", h.ID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			reconciled = h
		}
		out = append(out, maskStatus(reconciled, s.clock))
	}
	return out, nil
}

// backfillHabit reconciles one habit's elapsed days. The Redis gate
// short-circuits concurrent passes cheaply; the store's compare-and-set
// on last_penalty_date is what actually guarantees at most one penalty
// per (habit, day).
func (s *HabitService) backfillHabit(ctx context.Context, h *model.Habit, owner *model.User) (*model.Habit, error) {
	plan, err := planBackfill(h, s.clock)
	if err != nil {
		return nil, err
	}
	if !plan.changed {
		return h, nil
	}

	lockKey := fmt.Sprintf("%d:%s", h.ID, dateutil.TodayKey(s.clock))
	if !s.locks.AcquireOnce(ctx, "backfill", lockKey) {
		// Another request is reconciling this habit right now.
		return h, nil
	}

	entries := make([]*model.Transaction, 0, len(plan.missedDays)*2)
	payloads := make([]events.HabitMissedPayload, 0, len(plan.missedDays))
	now := s.clock.Now()
	for _, day := range plan.missedDays {
		miss := MissEvent{
			HabitID:   h.ID,
			HabitName: h.Name,
			OwnerID:   owner.ID,
			OwnerName: owner.Name,
			PartnerID: owner.PartnerID,
			DateKey:   day,
			Source:    events.SourceBackfill,
			Amount:    s.penaltyAmount,
		}
		entries = append(entries, miss.Expand()...)
		payloads = append(payloads, miss.Payload(now))
	}

	prev := h.LastPenaltyDate
	updated := *h
	updated.History = plan.newHistory
	updated.Streak = plan.newStreak
	updated.LastPenaltyDate = plan.newLastPenaltyDate

	ok, err := s.habits.ApplyBackfill(ctx, &updated, prev, entries, payloads)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the compare-and-set: another pass committed first. Reload
		// so the caller sees that pass's result.
		return s.habits.FindByIDForUser(ctx, h.ID, h.UserID)
	}

	metrics.BackfillDaysProcessed.Add(float64(len(plan.missedDays) + plan.skippedDays))
	for range plan.missedDays {
		metrics.IncrementPenaltiesCharged(events.SourceBackfill)
	}

	s.logger.Info("backfilled habit",
		zap.Int64("habit_id", h.ID),
		zap.Int("missed_days", len(plan.missedDays)),
		zap.Int("skipped_days", plan.skippedDays),
		zap.String("last_penalty_date", updated.LastPenaltyDate),
	)

	return &updated, nil
}

// Mark records today's outcome for a habit. One mark per calendar day,
// keyed on lastMarkedDate; a backfilled prior day never blocks today's
// own mark. The returned habit is authoritative for today, not masked.
func (s *HabitService) Mark(ctx context.Context, userID, habitID int64, status string) (*model.Habit, error) {
	if status != model.HabitStatusCompleted && status != model.HabitStatusMissed {
		return nil, ErrInvalidStatus
	}

	h, err := s.habits.FindByIDForUser(ctx, habitID, userID)
	if err != nil {
		return nil, fromStore(err)
	}

	today := dateutil.TodayKey(s.clock)
	if h.LastMarkedDate == today {
		return nil, ErrAlreadyMarked
	}
	prevMarked := h.LastMarkedDate

	var entries []*model.Transaction
	var payloads []events.HabitMissedPayload

	switch status {
	case model.HabitStatusCompleted:
		h.Streak++
		h.History = append(h.History, true)
	case model.HabitStatusMissed:
		owner, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		h.Streak = 0
		h.History = append(h.History, false)
		miss := MissEvent{
			HabitID:   h.ID,
			HabitName: h.Name,
			OwnerID:   owner.ID,
			OwnerName: owner.Name,
			PartnerID: owner.PartnerID,
			DateKey:   today,
			Source:    events.SourceMark,
			Amount:    s.penaltyAmount,
		}
		entries = miss.Expand()
		payloads = []events.HabitMissedPayload{miss.Payload(s.clock.Now())}
	}

	h.Status = status
	h.LastMarkedDate = today

	// The store re-checks last_marked_date under the transaction, so a
	// concurrent mark that landed after the read above loses cleanly.
	if err := s.habits.ApplyMark(ctx, h, prevMarked, entries, payloads); err != nil {
		return nil, fromStore(err)
	}

	if status == model.HabitStatusMissed {
		metrics.IncrementPenaltiesCharged(events.SourceMark)
	}

	return h, nil
}

// Delete removes a habit immediately. Ledger entries are untouched.
func (s *HabitService) Delete(ctx context.Context, userID, habitID int64) error {
	return fromStore(s.habits.Delete(ctx, habitID, userID))
}
