package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ledgerpay/refund-service/internal/application/services"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/ledgerpay/refund-service/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

// RefundRequest is the POST /api/v1/refunds body. The amount is a decimal
// that accepts both a JSON string and a JSON number.
type RefundRequest struct {
	TransactionID string          `json:"transaction_id"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
	RefundReason  string          `json:"refund_reason"`
	UserID        string          `json:"user_id"`
}

type RefundResponse struct {
	Status              string `json:"status"`
	Message             string `json:"message"`
	RefundTransactionID string `json:"refund_transaction_id,omitempty"`
	ProcessorMessage    string `json:"processor_message,omitempty"`
}

func (h *Handlers) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, domain.NewValidationError("request body", "must be valid JSON"), h.logger)
		return
	}

	cmd := services.RefundCommand{
		TransactionID: req.TransactionID,
		RefundAmount:  req.RefundAmount,
		RefundReason:  req.RefundReason,
		UserID:        req.UserID,
	}

	result, err := h.refundService.ProcessRefund(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	response := RefundResponse{
		Status:              "success",
		Message:             "Refund processed successfully.",
		RefundTransactionID: result.RefundTransactionID,
		ProcessorMessage:    result.ProcessorMessage,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
