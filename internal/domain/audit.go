package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditAction identifies the orchestration step an audit entry records.
type AuditAction string

const (
	ActionQueryLedger    AuditAction = "QUERY_LEDGER"
	ActionValidateRefund AuditAction = "VALIDATE_REFUND"
	ActionCheckDuplicate AuditAction = "CHECK_DUPLICATE"
	ActionAdjustCharges  AuditAction = "ADJUST_CHARGES"
	ActionRequestRefund  AuditAction = "REQUEST_REFUND"
	ActionCreateLedger   AuditAction = "CREATE_LEDGER"
	ActionCreateRefund   AuditAction = "CREATE_REFUND"
)

// AuditEntry is one record in the append-only audit trail. Entries are
// created once and never updated or deleted. Response holds the raw outcome
// of the recorded action as JSON, for traceability.
type AuditEntry struct {
	AuditID       uuid.UUID
	TransactionID string
	Action        AuditAction
	Actor         string
	Timestamp     time.Time
	RefundAmount  *decimal.Decimal
	Response      []byte
}

// NewAuditEntry stamps a fresh entry with a unique ID and the current time.
func NewAuditEntry(transactionID string, refundAmount *decimal.Decimal, action AuditAction, actor string, response []byte) *AuditEntry {
	return &AuditEntry{
		AuditID:       uuid.New(),
		TransactionID: transactionID,
		Action:        action,
		Actor:         actor,
		Timestamp:     time.Now().UTC(),
		RefundAmount:  refundAmount,
		Response:      response,
	}
}
