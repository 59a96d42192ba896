// Package domain encodes the payment ledger entities and their refund rules.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the current state of a ledger entry
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "Pending"
	StatusSuccess  TransactionStatus = "Success"
	StatusFailed   TransactionStatus = "Failed"
	StatusRefunded TransactionStatus = "Refunded"
)

// Transaction is a single entry in the payment ledger. A refund entry carries
// a negative Amount and points at the entry it reverses through
// OriginalTransactionID. Original entries are never mutated; a refund is
// always a new entry.
type Transaction struct {
	TransactionID         string
	OriginalTransactionID *string
	Amount                decimal.Decimal
	Status                TransactionStatus
	Fees                  decimal.Decimal
	Taxes                 decimal.Decimal
	ProcessorID           string
	RefundReason          string
	InitiatedBy           string
	Refunded              bool
	Timestamp             time.Time
}

const refundIDSuffix = "-REFUND"

// RefundTransactionID returns the ID of the refund entry for an original
// transaction. The ID is deterministic: at most one refund entry can exist
// per original transaction, enforced by the ledger's uniqueness constraints.
func RefundTransactionID(originalID string) string {
	return originalID + refundIDSuffix
}

// IsRefund reports whether the entry is itself a refund entry.
func (t *Transaction) IsRefund() bool {
	return t.OriginalTransactionID != nil || strings.HasSuffix(t.TransactionID, refundIDSuffix)
}

// RefundEligibility checks whether this transaction may be refunded.
func (t *Transaction) RefundEligibility() error {
	if t.IsRefund() || t.Refunded || t.Status == StatusRefunded {
		return NewAlreadyRefundedError(t.TransactionID)
	}
	if t.Status != StatusSuccess {
		return NewIneligibleError(t.TransactionID, string(t.Status))
	}
	return nil
}

// NewRefundEntry builds the ledger entry reversing the original transaction.
// The adjusted amount is stored negated.
func NewRefundEntry(original *Transaction, adjustedAmount decimal.Decimal, reason, actor string, now time.Time) *Transaction {
	originalID := original.TransactionID
	return &Transaction{
		TransactionID:         RefundTransactionID(originalID),
		OriginalTransactionID: &originalID,
		Amount:                adjustedAmount.Neg(),
		Status:                StatusRefunded,
		ProcessorID:           original.ProcessorID,
		RefundReason:          reason,
		InitiatedBy:           actor,
		Timestamp:             now.UTC(),
	}
}
