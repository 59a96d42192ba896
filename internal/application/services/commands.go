package services

import (
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// RefundCommand carries the caller's refund request into the orchestrator.
type RefundCommand struct {
	TransactionID string
	RefundAmount  decimal.Decimal
	RefundReason  string
	UserID        string
}

// Validate rejects malformed requests before any store access.
func (c RefundCommand) Validate() error {
	if c.TransactionID == "" {
		return domain.NewValidationError("transaction_id", "is required")
	}
	if c.UserID == "" {
		return domain.NewValidationError("user_id", "is required")
	}
	if !c.RefundAmount.IsPositive() {
		return domain.NewValidationError("refund_amount", "must be a positive decimal")
	}
	return nil
}

// RefundResult is the uniform success outcome of one refund attempt.
type RefundResult struct {
	RefundTransactionID string
	AdjustedAmount      decimal.Decimal
	ProcessorMessage    string
}
