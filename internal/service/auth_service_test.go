package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habitpact/internal/model"
	"habitpact/internal/repository"
	"habitpact/internal/util"
)

type fakeAccountStore struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{users: make(map[int64]*model.User), nextID: 1}
}

func (f *fakeAccountStore) Create(_ context.Context, u *model.User) error {
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = u
	return nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountStore) UpdateProfile(_ context.Context, id int64, name, username, avatarSeed string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if name != "" {
		u.Name = name
	}
	if username != "" {
		u.Username = username
	}
	if avatarSeed != "" {
		u.AvatarSeed = avatarSeed
	}
	return u, nil
}

const testSecret = "test-secret"

func TestRegister(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAuthService(store, testSecret, zap.NewNop())

	u, token, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Username: "@Alice", Email: "Alice@Example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.Username) // only the @ is stripped
	assert.True(t, util.CheckPassword(u.PasswordHash, "hunter22"))
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	claims, err := util.ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAuthService(store, testSecret, zap.NewNop())

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Username: "alice", Email: "alice@example.com", Password: "pw",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterInput{
		Name: "Other", Username: "other", Email: "ALICE@example.com", Password: "pw",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAuthService(store, testSecret, zap.NewNop())

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	u, token, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile_AllowListedFieldsOnly(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAuthService(store, testSecret, zap.NewNop())

	reg, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Username: "alice", Email: "alice@example.com", Password: "pw",
	})
	require.NoError(t, err)

	u, err := svc.UpdateProfile(context.Background(), reg.ID, "Alicia", "@alicia", "seed-9")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Name)
	assert.Equal(t, "alicia", u.Username)
	assert.Equal(t, "seed-9", u.AvatarSeed)
	// Email is not reachable through this path.
	assert.Equal(t, "alice@example.com", u.Email)
}
