package testhelpers

import (
	"time"

	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerEntry builds a successful original transaction with sensible
// defaults; override fields on the result as needed.
func LedgerEntry(transactionID string, amount string) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: transactionID,
		Amount:        decimal.RequireFromString(amount),
		Status:        domain.StatusSuccess,
		Fees:          decimal.Zero,
		Taxes:         decimal.Zero,
		ProcessorID:   "proc-test",
		Timestamp:     time.Now().UTC(),
	}
}

// RefundEntry builds a refund ledger entry for an original transaction.
func RefundEntry(originalID string, amount string) *domain.Transaction {
	return &domain.Transaction{
		TransactionID:         domain.RefundTransactionID(originalID),
		OriginalTransactionID: &originalID,
		Amount:                decimal.RequireFromString(amount).Neg(),
		Status:                domain.StatusRefunded,
		RefundReason:          "test refund",
		InitiatedBy:           "test-agent",
		Timestamp:             time.Now().UTC(),
	}
}
