package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/ledgerpay/refund-service/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

type RefundDetails struct {
	TransactionID         string          `json:"transaction_id"`
	OriginalTransactionID string          `json:"original_transaction_id"`
	Amount                decimal.Decimal `json:"amount"`
	Status                string          `json:"status"`
	RefundReason          string          `json:"refund_reason,omitempty"`
	InitiatedBy           string          `json:"initiated_by,omitempty"`
	Timestamp             time.Time       `json:"timestamp"`
}

func (h *Handlers) GetRefund(w http.ResponseWriter, r *http.Request) {
	originalID := r.PathValue("transaction_id")
	if originalID == "" {
		rest.WriteError(w, domain.NewValidationError("transaction_id", "is required"), h.logger)
		return
	}

	refund, err := h.queryService.RefundFor(r.Context(), originalID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toRefundDetails(refund))
}

func toRefundDetails(tx *domain.Transaction) RefundDetails {
	details := RefundDetails{
		TransactionID: tx.TransactionID,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		RefundReason:  tx.RefundReason,
		InitiatedBy:   tx.InitiatedBy,
		Timestamp:     tx.Timestamp,
	}
	if tx.OriginalTransactionID != nil {
		details.OriginalTransactionID = *tx.OriginalTransactionID
	}
	return details
}
