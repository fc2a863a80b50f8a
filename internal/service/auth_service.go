package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"habitpact/internal/model"
	"habitpact/internal/repository"
	"habitpact/internal/util"
)

const tokenTTL = 24 * time.Hour

// AccountStore is the persistence surface for signup and login.
type AccountStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, name, username, avatarSeed string) (*model.User, error)
}

type AuthService struct {
	users     AccountStore
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(users AccountStore, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, logger: logger}
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// Register creates an account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimPrefix(strings.TrimSpace(in.Username), "@")

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		AvatarSeed:   username,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if strings.Contains(err.Error(), "users_username_key") {
			return nil, "", ErrUsernameTaken
		}
		if strings.Contains(err.Error(), "users_email_key") {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret, tokenTTL)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID))
	return u, token, nil
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !util.CheckPassword(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Profile returns the caller's own record.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	return u, fromStore(err)
}

// UpdateProfile changes the allow-listed fields: name, username, avatar
// seed. Everything else is immutable through this path.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name, username, avatarSeed string) (*model.User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	u, err := s.users.UpdateProfile(ctx, userID, strings.TrimSpace(name), username, avatarSeed)
	if err != nil {
		if strings.Contains(err.Error(), "users_username_key") {
			return nil, ErrUsernameTaken
		}
		return nil, fromStore(err)
	}
	return u, nil
}
