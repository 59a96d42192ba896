package services

import (
	"context"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/domain"
)

// EligibilityValidator decides whether an original transaction may be
// refunded. It has no side effects.
type EligibilityValidator struct{}

// Validate returns an INELIGIBLE error unless the transaction completed
// successfully, and ALREADY_REFUNDED if the entry carries a refunded marker
// or is itself a refund.
func (EligibilityValidator) Validate(tx *domain.Transaction) error {
	return tx.RefundEligibility()
}

// DuplicateGuard checks the ledger's secondary index for an existing refund.
// The check is advisory: the authoritative claim is the conditional insert in
// RefundLedgerWriter, which closes the gap between check and write.
type DuplicateGuard struct {
	store application.TransactionStore
}

func NewDuplicateGuard(store application.TransactionStore) *DuplicateGuard {
	return &DuplicateGuard{store: store}
}

// Check returns a DUPLICATE_REFUND error if any refund entry points at the
// given transaction.
func (g *DuplicateGuard) Check(ctx context.Context, transactionID string) error {
	refunds, err := g.store.FindRefundsByOriginalID(ctx, transactionID)
	if err != nil {
		return err
	}
	if len(refunds) > 0 {
		return domain.NewDuplicateRefundError(transactionID)
	}
	return nil
}
