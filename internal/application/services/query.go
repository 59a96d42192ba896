package services

import (
	"context"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/domain"
)

// QueryService answers read-only lookups against the refund ledger.
type QueryService struct {
	store application.TransactionStore
}

func NewQueryService(store application.TransactionStore) *QueryService {
	return &QueryService{store: store}
}

// RefundFor returns the refund entry recorded for an original transaction,
// or a NOT_FOUND error if no refund exists.
func (s *QueryService) RefundFor(ctx context.Context, originalID string) (*domain.Transaction, error) {
	refunds, err := s.store.FindRefundsByOriginalID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if len(refunds) == 0 {
		return nil, domain.NewNotFoundError(domain.RefundTransactionID(originalID))
	}
	return refunds[0], nil
}
