package services

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// RefundLedgerWriter persists the refund as a new ledger entry. The write is
// a conditional insert keyed on the deterministic refund transaction ID and
// the original transaction ID, so two concurrent attempts for the same
// original can never both land.
type RefundLedgerWriter struct {
	store application.TransactionStore
}

func NewRefundLedgerWriter(store application.TransactionStore) *RefundLedgerWriter {
	return &RefundLedgerWriter{store: store}
}

// Write inserts the refund entry and returns it. A lost race with a
// concurrent attempt surfaces as a DUPLICATE_REFUND error.
func (w *RefundLedgerWriter) Write(ctx context.Context, original *domain.Transaction, adjustedAmount decimal.Decimal, reason, actor string) (*domain.Transaction, error) {
	entry := domain.NewRefundEntry(original, adjustedAmount, reason, actor, time.Now())

	if err := w.store.InsertIfAbsent(ctx, entry); err != nil {
		if errors.Is(err, application.ErrAlreadyExists) {
			return nil, domain.NewDuplicateRefundError(original.TransactionID)
		}
		return nil, err
	}
	return entry, nil
}
