package services

import (
	"context"
	"encoding/json"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// AuditRecorder appends one audit entry per orchestration step, after the
// step completes, success or failure.
type AuditRecorder struct {
	store application.AuditStore
}

func NewAuditRecorder(store application.AuditStore) *AuditRecorder {
	return &AuditRecorder{store: store}
}

// Record marshals the step's raw outcome and appends it to the audit trail.
func (r *AuditRecorder) Record(ctx context.Context, transactionID string, refundAmount *decimal.Decimal, action domain.AuditAction, actor string, response any) error {
	payload, err := json.Marshal(response)
	if err != nil {
		payload, _ = json.Marshal(map[string]string{"marshal_error": err.Error()})
	}

	entry := domain.NewAuditEntry(transactionID, refundAmount, action, actor, payload)
	return r.store.Append(ctx, entry)
}
