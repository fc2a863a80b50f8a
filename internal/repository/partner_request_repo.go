package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitpact/internal/model"
)

type PartnerRequestRepository struct {
	db *pgxpool.Pool
}

func NewPartnerRequestRepository(db *pgxpool.Pool) *PartnerRequestRepository {
	return &PartnerRequestRepository{db: db}
}

func (r *PartnerRequestRepository) Create(ctx context.Context, fromUserID, toUserID int64) (*model.PartnerRequest, error) {
	query := `
		INSERT INTO partner_requests (from_user_id, to_user_id)
		VALUES ($1, $2)
		RETURNING id, from_user_id, to_user_id, status, created_at, updated_at
	`

	var req model.PartnerRequest
	err := r.db.QueryRow(ctx, query, fromUserID, toUserID).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create partner request: %w", err)
	}
	return &req, nil
}

// HasPendingBetween reports whether a pending request exists between the
// two users in either direction.
func (r *PartnerRequestRepository) HasPendingBetween(ctx context.Context, a, b int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM partner_requests
			WHERE status = 'pending'
			AND ((from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1))
		)
	`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return exists, nil
}

// FindIncoming returns one pending request, visible only to its recipient.
func (r *PartnerRequestRepository) FindIncoming(ctx context.Context, requestID, toUserID int64) (*model.PartnerRequest, error) {
	var req model.PartnerRequest
	err := r.db.QueryRow(ctx, `
		SELECT id, from_user_id, to_user_id, status, created_at, updated_at
		FROM partner_requests
		WHERE id = $1 AND to_user_id = $2 AND status = 'pending'
	`, requestID, toUserID).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find partner request: %w", err)
	}
	return &req, nil
}

// ListIncoming returns pending requests addressed to the user, with the
// sender's display fields joined in.
func (r *PartnerRequestRepository) ListIncoming(ctx context.Context, userID int64) ([]*model.PartnerRequest, error) {
	query := `
		SELECT pr.id, pr.from_user_id, pr.to_user_id, pr.status, pr.created_at, pr.updated_at,
		       u.name, u.username
		FROM partner_requests pr
		JOIN users u ON u.id = pr.from_user_id
		WHERE pr.to_user_id = $1 AND pr.status = 'pending'
		ORDER BY pr.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query partner requests: %w", err)
	}
	defer rows.Close()

	var reqs []*model.PartnerRequest
	for rows.Next() {
		var req model.PartnerRequest
		err := rows.Scan(
			&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
			&req.FromName, &req.FromUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner request: %w", err)
		}
		reqs = append(reqs, &req)
	}
	return reqs, rows.Err()
}

// Accept marks the request accepted and links both users symmetrically,
// in one transaction. Only the recipient may accept, and only while the
// request is still pending. Both user updates require an unset
// partner_id; if either side got partnered in the meantime the whole
// transaction rolls back with ErrHasPartner.
func (r *PartnerRequestRepository) Accept(ctx context.Context, requestID, toUserID int64) (*model.PartnerRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var req model.PartnerRequest
	err = tx.QueryRow(ctx, `
		UPDATE partner_requests
		SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND to_user_id = $2 AND status = 'pending'
		RETURNING id, from_user_id, to_user_id, status, created_at, updated_at
	`, requestID, toUserID).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to accept partner request: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users SET partner_id = $2, updated_at = NOW()
		WHERE id = $1 AND partner_id IS NULL
	`, req.FromUserID, req.ToUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to link requester: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrHasPartner
	}
	tag, err = tx.Exec(ctx, `
		UPDATE users SET partner_id = $2, updated_at = NOW()
		WHERE id = $1 AND partner_id IS NULL
	`, req.ToUserID, req.FromUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to link recipient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrHasPartner
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit acceptance: %w", err)
	}
	return &req, nil
}

// Reject marks the request rejected. Only the recipient may reject.
func (r *PartnerRequestRepository) Reject(ctx context.Context, requestID, toUserID int64) (*model.PartnerRequest, error) {
	var req model.PartnerRequest
	err := r.db.QueryRow(ctx, `
		UPDATE partner_requests
		SET status = 'rejected', updated_at = NOW()
		WHERE id = $1 AND to_user_id = $2 AND status = 'pending'
		RETURNING id, from_user_id, to_user_id, status, created_at, updated_at
	`, requestID, toUserID).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to reject partner request: %w", err)
	}
	return &req, nil
}
