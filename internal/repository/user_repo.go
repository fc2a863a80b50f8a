package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitpact/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, COALESCE(username, ''), email, COALESCE(password_hash, ''),
	COALESCE(avatar_seed, ''), total_earned, total_spent, partner_id, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.AvatarSeed,
		&u.TotalEarned,
		&u.TotalSpent,
		&u.PartnerID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (name, username, email, password_hash, avatar_seed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.Name, u.Username, u.Email, u.PasswordHash, u.AvatarSeed,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// FindByUsernameOrEmail resolves a user by handle, case-insensitively.
// A leading "@" is stripped so both "@alice" and "alice" work.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, handle string) (*model.User, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
	`
	return scanUser(r.db.QueryRow(ctx, query, handle))
}

// UpdateProfile updates the allow-listed profile fields only.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, username, avatarSeed string) (*model.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    username = COALESCE(NULLIF($3, ''), username),
		    avatar_seed = COALESCE(NULLIF($4, ''), avatar_seed),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(ctx, query, id, name, username, avatarSeed))
}

// PartnerID returns the user's partner id, nil if unpartnered.
func (r *UserRepository) PartnerID(ctx context.Context, userID int64) (*int64, error) {
	var partnerID *int64
	err := r.db.QueryRow(ctx, `SELECT partner_id FROM users WHERE id = $1`, userID).Scan(&partnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve partner: %w", err)
	}
	return partnerID, nil
}

// ClearPartner removes the partnership on both sides.
func (r *UserRepository) ClearPartner(ctx context.Context, userID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE users SET partner_id = NULL, updated_at = NOW()
		WHERE id = $1 OR partner_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear partner: %w", err)
	}

	return tx.Commit(ctx)
}
