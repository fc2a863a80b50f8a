package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitpact/internal/events"
	"habitpact/internal/model"
	"habitpact/pkg/otel"
	"habitpact/pkg/outbox"
)

type HabitRepository struct {
	db     *pgxpool.Pool
	txRepo *TransactionRepository
	outbox *outbox.Repository
}

func NewHabitRepository(db *pgxpool.Pool, txRepo *TransactionRepository, outboxRepo *outbox.Repository) *HabitRepository {
	return &HabitRepository{db: db, txRepo: txRepo, outbox: outboxRepo}
}

const habitColumns = `id, user_id, name, description, icon, color, streak,
	COALESCE(status, ''), history, COALESCE(last_marked_date, ''),
	COALESCE(last_penalty_date, ''), created_at, updated_at`

func scanHabit(row pgx.Row) (*model.Habit, error) {
	var h model.Habit
	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&h.Description,
		&h.Icon,
		&h.Color,
		&h.Streak,
		&h.Status,
		&h.History,
		&h.LastMarkedDate,
		&h.LastPenaltyDate,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan habit: %w", err)
	}
	return &h, nil
}

func (r *HabitRepository) Create(ctx context.Context, h *model.Habit) error {
	query := `
		INSERT INTO habits (user_id, name, description, icon, color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, icon, color, streak, history, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		h.UserID, h.Name, h.Description, nullIfEmpty(h.Icon), nullIfEmpty(h.Color),
	).Scan(&h.ID, &h.Icon, &h.Color, &h.Streak, &h.History, &h.CreatedAt, &h.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

func (r *HabitRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 ORDER BY id`

	var habits []*model.Habit
	err := otel.WithDBSpan(ctx, "select", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, userID)
		if err != nil {
			return fmt.Errorf("failed to query habits: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			h, err := scanHabit(rows)
			if err != nil {
				return err
			}
			habits = append(habits, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return habits, nil
}

func (r *HabitRepository) FindByIDForUser(ctx context.Context, habitID, userID int64) (*model.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`
	return scanHabit(r.db.QueryRow(ctx, query, habitID, userID))
}

func (r *HabitRepository) Delete(ctx context.Context, habitID, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyMark persists an explicit mark: the habit row update, any ledger
// entries, and any miss events commit in one transaction. The update is
// guarded by a compare-and-set on last_marked_date so two concurrent
// marks for the same day cannot both commit; the loser gets
// ErrAlreadyMarked and nothing is written.
func (r *HabitRepository) ApplyMark(
	ctx context.Context,
	h *model.Habit,
	prevMarkedDate string,
	entries []*model.Transaction,
	missEvents []events.HabitMissedPayload,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE habits
		SET streak = $2, status = NULLIF($3, ''), history = $4,
		    last_marked_date = NULLIF($5, ''), updated_at = NOW()
		WHERE id = $1
		AND last_marked_date IS NOT DISTINCT FROM NULLIF($6, '')
	`
	tag, err := tx.Exec(ctx, query,
		h.ID, h.Streak, h.Status, h.History, h.LastMarkedDate, prevMarkedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost the race: a concurrent mark already landed for this day.
		return ErrAlreadyMarked
	}

	if err := r.insertEntriesAndEvents(ctx, tx, h.ID, entries, missEvents); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ApplyBackfill persists a backfill pass guarded by a compare-and-set on
// last_penalty_date: if another pass advanced it first, nothing is written
// and (false, nil) is returned. The habit update, ledger entries, and miss
// events commit in one transaction, giving at most one penalty per
// (habit, day).
func (r *HabitRepository) ApplyBackfill(
	ctx context.Context,
	h *model.Habit,
	prevPenaltyDate string,
	entries []*model.Transaction,
	missEvents []events.HabitMissedPayload,
) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE habits
		SET streak = $2, history = $3, last_penalty_date = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1
		AND last_penalty_date IS NOT DISTINCT FROM NULLIF($5, '')
	`
	tag, err := tx.Exec(ctx, query,
		h.ID, h.Streak, h.History, h.LastPenaltyDate, prevPenaltyDate,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost the race: another pass already reconciled these days.
		return false, nil
	}

	if err := r.insertEntriesAndEvents(ctx, tx, h.ID, entries, missEvents); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit backfill: %w", err)
	}
	return true, nil
}

func (r *HabitRepository) insertEntriesAndEvents(
	ctx context.Context,
	tx pgx.Tx,
	habitID int64,
	entries []*model.Transaction,
	missEvents []events.HabitMissedPayload,
) error {
	for _, entry := range entries {
		if err := r.txRepo.InsertTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	for i := range missEvents {
		err := outbox.InsertEventInTx(ctx, tx, r.outbox, "habit", &habitID, events.HabitMissedKey, missEvents[i])
		if err != nil {
			return fmt.Errorf("failed to stage miss event: %w", err)
		}
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
