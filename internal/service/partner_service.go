package service

import (
	"context"

	"go.uber.org/zap"

	"habitpact/internal/model"
)

// PartnerDirectory is the user lookup surface partner flows need.
type PartnerDirectory interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, handle string) (*model.User, error)
	ClearPartner(ctx context.Context, userID int64) error
}

// RequestStore is the persistence surface for partner requests.
type RequestStore interface {
	Create(ctx context.Context, fromUserID, toUserID int64) (*model.PartnerRequest, error)
	HasPendingBetween(ctx context.Context, a, b int64) (bool, error)
	FindIncoming(ctx context.Context, requestID, toUserID int64) (*model.PartnerRequest, error)
	ListIncoming(ctx context.Context, userID int64) ([]*model.PartnerRequest, error)
	Accept(ctx context.Context, requestID, toUserID int64) (*model.PartnerRequest, error)
	Reject(ctx context.Context, requestID, toUserID int64) (*model.PartnerRequest, error)
}

type PartnerService struct {
	users    PartnerDirectory
	requests RequestStore
	logger   *zap.Logger
}

func NewPartnerService(users PartnerDirectory, requests RequestStore, logger *zap.Logger) *PartnerService {
	return &PartnerService{users: users, requests: requests, logger: logger}
}

// SendRequest invites another user, addressed by username or email. At
// most one pending request may exist per pair, and neither side may
// already be partnered.
func (s *PartnerService) SendRequest(ctx context.Context, fromUserID int64, handle string) (*model.PartnerRequest, error) {
	target, err := s.users.FindByUsernameOrEmail(ctx, handle)
	if err != nil {
		return nil, fromStore(err)
	}
	if target.ID == fromUserID {
		return nil, ErrSelfPartner
	}

	sender, err := s.users.FindByID(ctx, fromUserID)
	if err != nil {
		return nil, fromStore(err)
	}
	if sender.PartnerID != nil || target.PartnerID != nil {
		return nil, ErrHasPartner
	}

	pending, err := s.requests.HasPendingBetween(ctx, fromUserID, target.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrRequestPending
	}

	req, err := s.requests.Create(ctx, fromUserID, target.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("partner request sent",
		zap.Int64("from_user_id", fromUserID),
		zap.Int64("to_user_id", target.ID),
	)
	return req, nil
}

// ListIncoming returns pending requests addressed to the user.
func (s *PartnerService) ListIncoming(ctx context.Context, userID int64) ([]*model.PartnerRequest, error) {
	reqs, err := s.requests.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []*model.PartnerRequest{}
	}
	return reqs, nil
}

// Respond accepts or rejects a request addressed to the user. Accepting
// links both users symmetrically; it fails if either side got partnered
// in the meantime.
func (s *PartnerService) Respond(ctx context.Context, userID, requestID int64, accept bool) (*model.PartnerRequest, error) {
	if !accept {
		req, err := s.requests.Reject(ctx, requestID, userID)
		return req, fromStore(err)
	}

	recipient, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromStore(err)
	}
	if recipient.PartnerID != nil {
		return nil, ErrHasPartner
	}

	// A request goes stale when its sender partners up elsewhere before
	// it is answered; accepting it anyway would leave the sender's old
	// partner pointing at a user who no longer points back.
	pending, err := s.requests.FindIncoming(ctx, requestID, userID)
	if err != nil {
		return nil, fromStore(err)
	}
	requester, err := s.users.FindByID(ctx, pending.FromUserID)
	if err != nil {
		return nil, fromStore(err)
	}
	if requester.PartnerID != nil {
		return nil, ErrHasPartner
	}

	req, err := s.requests.Accept(ctx, requestID, userID)
	if err != nil {
		return nil, fromStore(err)
	}

	s.logger.Info("partner request accepted",
		zap.Int64("request_id", req.ID),
		zap.Int64("from_user_id", req.FromUserID),
		zap.Int64("to_user_id", req.ToUserID),
	)
	return req, nil
}

// GetPartner returns the user's partner, or nil when unpartnered.
func (s *PartnerService) GetPartner(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromStore(err)
	}
	if user.PartnerID == nil {
		return nil, nil
	}
	partner, err := s.users.FindByID(ctx, *user.PartnerID)
	if err != nil {
		return nil, fromStore(err)
	}
	return partner, nil
}

// Unpair dissolves the partnership on both sides.
func (s *PartnerService) Unpair(ctx context.Context, userID int64) error {
	return s.users.ClearPartner(ctx, userID)
}
