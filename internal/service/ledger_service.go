package service

import (
	"context"

	"go.uber.org/zap"

	"habitpact/internal/model"
	"habitpact/pkg/metrics"
)

// LedgerStore is the persistence surface for ledger entries.
type LedgerStore interface {
	ListByUser(ctx context.Context, userID int64) ([]*model.Transaction, error)
	ConfirmWithTotals(ctx context.Context, txID, userID int64) (*model.Transaction, *model.User, error)
}

type LedgerService struct {
	ledger LedgerStore
	logger *zap.Logger
}

func NewLedgerService(ledger LedgerStore, logger *zap.Logger) *LedgerService {
	return &LedgerService{ledger: ledger, logger: logger}
}

// List returns the user's ledger, most recent first.
func (s *LedgerService) List(ctx context.Context, userID int64) ([]*model.Transaction, error) {
	txs, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*model.Transaction{}
	}
	return txs, nil
}

// Confirm settles a pending entry once. Confirmation is terminal: a
// confirmed entry is never re-confirmed or reverted. The owner's
// cumulative totals move in the same write.
func (s *LedgerService) Confirm(ctx context.Context, userID, txID int64) (*model.Transaction, *model.User, error) {
	confirmed, user, err := s.ledger.ConfirmWithTotals(ctx, txID, userID)
	if err != nil {
		return nil, nil, fromStore(err)
	}

	metrics.IncrementTransactionsConfirmed(confirmed.Type)
	s.logger.Info("transaction confirmed",
		zap.Int64("transaction_id", confirmed.ID),
		zap.Int64("user_id", userID),
		zap.String("type", confirmed.Type),
		zap.Int64("amount", confirmed.Amount),
	)

	return confirmed, user, nil
}
