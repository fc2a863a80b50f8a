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
)

type fakePartnerDirectory struct {
	users map[int64]*model.User
}

func (f *fakePartnerDirectory) FindByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakePartnerDirectory) FindByUsernameOrEmail(_ context.Context, handle string) (*model.User, error) {
	handle = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
	for _, u := range f.users {
		if strings.ToLower(u.Username) == handle || strings.ToLower(u.Email) == handle {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePartnerDirectory) ClearPartner(_ context.Context, userID int64) error {
	for _, u := range f.users {
		if u.ID == userID || (u.PartnerID != nil && *u.PartnerID == userID) {
			u.PartnerID = nil
		}
	}
	return nil
}

type fakeRequestStore struct {
	reqs   map[int64]*model.PartnerRequest
	nextID int64
	dir    *fakePartnerDirectory
}

func newFakeRequestStore(dir *fakePartnerDirectory) *fakeRequestStore {
	return &fakeRequestStore{reqs: make(map[int64]*model.PartnerRequest), nextID: 1, dir: dir}
}

func (f *fakeRequestStore) Create(_ context.Context, fromUserID, toUserID int64) (*model.PartnerRequest, error) {
	req := &model.PartnerRequest{
		ID: f.nextID, FromUserID: fromUserID, ToUserID: toUserID,
		Status: model.PartnerRequestStatusPending,
	}
	f.reqs[f.nextID] = req
	f.nextID++
	return req, nil
}

func (f *fakeRequestStore) HasPendingBetween(_ context.Context, a, b int64) (bool, error) {
	for _, r := range f.reqs {
		if r.Status != model.PartnerRequestStatusPending {
			continue
		}
		if (r.FromUserID == a && r.ToUserID == b) || (r.FromUserID == b && r.ToUserID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestStore) FindIncoming(_ context.Context, requestID, toUserID int64) (*model.PartnerRequest, error) {
	r, ok := f.reqs[requestID]
	if !ok || r.ToUserID != toUserID || r.Status != model.PartnerRequestStatusPending {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRequestStore) ListIncoming(_ context.Context, userID int64) ([]*model.PartnerRequest, error) {
	var out []*model.PartnerRequest
	for _, r := range f.reqs {
		if r.ToUserID == userID && r.Status == model.PartnerRequestStatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) Accept(_ context.Context, requestID, toUserID int64) (*model.PartnerRequest, error) {
	r, ok := f.reqs[requestID]
	if !ok || r.ToUserID != toUserID || r.Status != model.PartnerRequestStatusPending {
		return nil, repository.ErrNotFound
	}
	from, to := r.FromUserID, r.ToUserID
	if f.dir.users[from].PartnerID != nil || f.dir.users[to].PartnerID != nil {
		return nil, repository.ErrHasPartner
	}
	r.Status = model.PartnerRequestStatusAccepted
	f.dir.users[from].PartnerID = &to
	f.dir.users[to].PartnerID = &from
	return r, nil
}

func (f *fakeRequestStore) Reject(_ context.Context, requestID, toUserID int64) (*model.PartnerRequest, error) {
	r, ok := f.reqs[requestID]
	if !ok || r.ToUserID != toUserID || r.Status != model.PartnerRequestStatusPending {
		return nil, repository.ErrNotFound
	}
	r.Status = model.PartnerRequestStatusRejected
	return r, nil
}

func partnerFixture() (*fakePartnerDirectory, *fakeRequestStore, *PartnerService) {
	dir := &fakePartnerDirectory{users: map[int64]*model.User{
		1: {ID: 1, Name: "Alice", Username: "alice", Email: "alice@example.com"},
		2: {ID: 2, Name: "Bob", Username: "bob", Email: "bob@example.com"},
		3: {ID: 3, Name: "Carol", Username: "carol", Email: "carol@example.com"},
	}}
	reqs := newFakeRequestStore(dir)
	return dir, reqs, NewPartnerService(dir, reqs, zap.NewNop())
}

func TestSendRequest_ByUsernameWithAtPrefix(t *testing.T) {
	_, _, svc := partnerFixture()

	req, err := svc.SendRequest(context.Background(), 1, "@Bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), req.FromUserID)
	assert.Equal(t, int64(2), req.ToUserID)
	assert.Equal(t, model.PartnerRequestStatusPending, req.Status)
}

func TestSendRequest_ByEmail(t *testing.T) {
	_, _, svc := partnerFixture()

	req, err := svc.SendRequest(context.Background(), 1, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), req.ToUserID)
}

func TestSendRequest_SelfRejected(t *testing.T) {
	_, _, svc := partnerFixture()

	_, err := svc.SendRequest(context.Background(), 1, "alice")
	assert.ErrorIs(t, err, ErrSelfPartner)
}

func TestSendRequest_UnknownHandle(t *testing.T) {
	_, _, svc := partnerFixture()

	_, err := svc.SendRequest(context.Background(), 1, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendRequest_EitherSidePartneredRejected(t *testing.T) {
	dir, _, svc := partnerFixture()
	three := int64(3)
	dir.users[2].PartnerID = &three

	_, err := svc.SendRequest(context.Background(), 1, "bob")
	assert.ErrorIs(t, err, ErrHasPartner)

	dir.users[2].PartnerID = nil
	dir.users[1].PartnerID = &three
	_, err = svc.SendRequest(context.Background(), 1, "bob")
	assert.ErrorIs(t, err, ErrHasPartner)
}

func TestSendRequest_DuplicatePendingRejected(t *testing.T) {
	_, _, svc := partnerFixture()

	_, err := svc.SendRequest(context.Background(), 1, "bob")
	require.NoError(t, err)

	_, err = svc.SendRequest(context.Background(), 1, "bob")
	assert.ErrorIs(t, err, ErrRequestPending)

	// The reverse direction counts as the same pair.
	_, err = svc.SendRequest(context.Background(), 2, "alice")
	assert.ErrorIs(t, err, ErrRequestPending)
}

func TestRespond_AcceptLinksBothSides(t *testing.T) {
	dir, _, svc := partnerFixture()

	req, err := svc.SendRequest(context.Background(), 1, "bob")
	require.NoError(t, err)

	accepted, err := svc.Respond(context.Background(), 2, req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.PartnerRequestStatusAccepted, accepted.Status)

	require.NotNil(t, dir.users[1].PartnerID)
	require.NotNil(t, dir.users[2].PartnerID)
	assert.Equal(t, int64(2), *dir.users[1].PartnerID)
	assert.Equal(t, int64(1), *dir.users[2].PartnerID)
}

func TestRespond_AcceptFailsWhenRecipientGotPartnered(t *testing.T) {
	dir, _, svc := partnerFixture()

	req, err := svc.SendRequest(context.Background(), 1, "bob")
	require.NoError(t, err)

	three := int64(3)
	dir.users[2].PartnerID = &three

	_, err = svc.Respond(context.Background(), 2, req.ID, true)
	assert.ErrorIs(t, err, ErrHasPartner)
}

func TestRespond_StaleRequestFromPartneredSenderRejected(t *testing.T) {
	dir, _, svc := partnerFixture()

	// Alice invites both Bob and Carol.
	reqBob, err := svc.SendRequest(context.Background(), 1, "bob")
	require.NoError(t, err)
	reqCarol, err := svc.SendRequest(context.Background(), 1, "carol")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), 2, reqBob.ID, true)
	require.NoError(t, err)

	// Carol's copy is now stale; accepting it must not steal Alice from
	// Bob.
	_, err = svc.Respond(context.Background(), 3, reqCarol.ID, true)
	assert.ErrorIs(t, err, ErrHasPartner)

	require.NotNil(t, dir.users[1].PartnerID)
	require.NotNil(t, dir.users[2].PartnerID)
	assert.Equal(t, int64(2), *dir.users[1].PartnerID)
	assert.Equal(t, int64(1), *dir.users[2].PartnerID)
	assert.Nil(t, dir.users[3].PartnerID)
}

func TestRespond_Reject(t *testing.T) {
	dir, _, svc := partnerFixture()

	req, err := svc.SendRequest(context.Background(), 1, "bob")
	require.NoError(t, err)

	rejected, err := svc.Respond(context.Background(), 2, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.PartnerRequestStatusRejected, rejected.Status)
	assert.Nil(t, dir.users[1].PartnerID)
	assert.Nil(t, dir.users[2].PartnerID)
}

func TestRespond_OnlyRecipientMayRespond(t *testing.T) {
	_, _, svc := partnerFixture()

	req, err := svc.SendRequest(context.Background(), 1, "bob")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), 3, req.ID, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPartner(t *testing.T) {
	dir, _, svc := partnerFixture()

	partner, err := svc.GetPartner(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, partner)

	two := int64(2)
	dir.users[1].PartnerID = &two

	partner, err = svc.GetPartner(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, partner)
	assert.Equal(t, "Bob", partner.Name)
}

func TestUnpair(t *testing.T) {
	dir, _, svc := partnerFixture()
	one, two := int64(1), int64(2)
	dir.users[1].PartnerID = &two
	dir.users[2].PartnerID = &one

	require.NoError(t, svc.Unpair(context.Background(), 1))
	assert.Nil(t, dir.users[1].PartnerID)
	assert.Nil(t, dir.users[2].PartnerID)
}
