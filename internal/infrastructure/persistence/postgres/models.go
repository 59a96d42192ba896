package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

type LedgerModel struct {
	TransactionID         string
	OriginalTransactionID *string
	Amount                decimal.Decimal
	Status                string
	Fees                  decimal.Decimal
	Taxes                 decimal.Decimal
	ProcessorID           string
	RefundReason          *string
	InitiatedBy           *string
	Refunded              bool
	Timestamp             time.Time
}

type AuditModel struct {
	AuditID       uuid.UUID
	TransactionID string
	Action        string
	Actor         string
	Timestamp     time.Time
	RefundAmount  decimal.NullDecimal
	Response      []byte
}

func toLedgerModel(tx *domain.Transaction) LedgerModel {
	m := LedgerModel{
		TransactionID:         tx.TransactionID,
		OriginalTransactionID: tx.OriginalTransactionID,
		Amount:                tx.Amount,
		Status:                string(tx.Status),
		Fees:                  tx.Fees,
		Taxes:                 tx.Taxes,
		ProcessorID:           tx.ProcessorID,
		Refunded:              tx.Refunded,
		Timestamp:             tx.Timestamp,
	}
	if tx.RefundReason != "" {
		m.RefundReason = &tx.RefundReason
	}
	if tx.InitiatedBy != "" {
		m.InitiatedBy = &tx.InitiatedBy
	}
	return m
}

func toDomainTransaction(m LedgerModel) *domain.Transaction {
	tx := &domain.Transaction{
		TransactionID:         m.TransactionID,
		OriginalTransactionID: m.OriginalTransactionID,
		Amount:                m.Amount,
		Status:                domain.TransactionStatus(m.Status),
		Fees:                  m.Fees,
		Taxes:                 m.Taxes,
		ProcessorID:           m.ProcessorID,
		Refunded:              m.Refunded,
		Timestamp:             m.Timestamp,
	}
	if m.RefundReason != nil {
		tx.RefundReason = *m.RefundReason
	}
	if m.InitiatedBy != nil {
		tx.InitiatedBy = *m.InitiatedBy
	}
	return tx
}

func toAuditModel(entry *domain.AuditEntry) AuditModel {
	m := AuditModel{
		AuditID:       entry.AuditID,
		TransactionID: entry.TransactionID,
		Action:        string(entry.Action),
		Actor:         entry.Actor,
		Timestamp:     entry.Timestamp,
		Response:      entry.Response,
	}
	if entry.RefundAmount != nil {
		m.RefundAmount = decimal.NewNullDecimal(*entry.RefundAmount)
	}
	return m
}

func toDomainAuditEntry(m AuditModel) *domain.AuditEntry {
	entry := &domain.AuditEntry{
		AuditID:       m.AuditID,
		TransactionID: m.TransactionID,
		Action:        domain.AuditAction(m.Action),
		Actor:         m.Actor,
		Timestamp:     m.Timestamp,
		Response:      m.Response,
	}
	if m.RefundAmount.Valid {
		amount := m.RefundAmount.Decimal
		entry.RefundAmount = &amount
	}
	return entry
}
