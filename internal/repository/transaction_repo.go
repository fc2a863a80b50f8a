package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitpact/internal/model"
	"habitpact/pkg/otel"
)

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, type, amount, reason, from_label, to_label, status, created_at`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Type,
		&t.Amount,
		&t.Reason,
		&t.FromLabel,
		&t.ToLabel,
		&t.Status,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &t, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var txs []*model.Transaction
	err := otel.WithDBSpan(ctx, "select", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, userID)
		if err != nil {
			return fmt.Errorf("failed to query transactions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTransaction(rows)
			if err != nil {
				return err
			}
			txs = append(txs, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// InsertTx inserts a ledger entry inside the caller's transaction.
func (r *TransactionRepository) InsertTx(ctx context.Context, tx pgx.Tx, t *model.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, reason, from_label, to_label, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		t.UserID, t.Type, t.Amount, t.Reason, t.FromLabel, t.ToLabel, t.Status,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ConfirmWithTotals transitions a pending transaction to confirmed and
// bumps the owner's cumulative totals, all in one transaction. A second
// confirmation attempt fails with ErrAlreadyConfirmed.
func (r *TransactionRepository) ConfirmWithTotals(ctx context.Context, txID, userID int64) (*model.Transaction, *model.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	confirmed, err := scanTransaction(tx.QueryRow(ctx, `
		UPDATE transactions
		SET status = 'confirmed'
		WHERE id = $1 AND user_id = $2 AND status = 'pending'
		RETURNING `+transactionColumns,
		txID, userID,
	))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, nil, err
		}
		// Distinguish "gone" from "already confirmed".
		var status string
		scanErr := tx.QueryRow(ctx, `
			SELECT status FROM transactions WHERE id = $1 AND user_id = $2
		`, txID, userID).Scan(&status)
		if scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return nil, nil, ErrNotFound
			}
			return nil, nil, fmt.Errorf("failed to check transaction status: %w", scanErr)
		}
		return nil, nil, ErrAlreadyConfirmed
	}

	column := "total_spent"
	if confirmed.Type == model.TransactionTypeReward {
		column = "total_earned"
	}
	user, err := scanUser(tx.QueryRow(ctx, fmt.Sprintf(`
		UPDATE users
		SET %s = %s + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, column, column),
		userID, confirmed.Amount,
	))
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}
	return confirmed, user, nil
}
