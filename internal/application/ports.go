package application

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrAlreadyExists is returned by TransactionStore.InsertIfAbsent when an
// entry with a conflicting key is already present. The conditional insert is
// the atomic claim that keeps concurrent refund attempts from both
// succeeding.
var ErrAlreadyExists = errors.New("ledger entry already exists")

// TransactionStore is the port for the payment ledger.
type TransactionStore interface {
	// GetByID returns the ledger entry with the given transaction ID, or a
	// NOT_FOUND domain error.
	GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindRefundsByOriginalID queries the secondary index on
	// OriginalTransactionID, ordered by timestamp.
	FindRefundsByOriginalID(ctx context.Context, originalID string) ([]*domain.Transaction, error)

	// InsertIfAbsent inserts the entry unless one with the same transaction
	// ID or original transaction ID exists, in which case it returns
	// ErrAlreadyExists and writes nothing.
	InsertIfAbsent(ctx context.Context, tx *domain.Transaction) error
}

// AuditStore is the port for the append-only audit trail.
type AuditStore interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error

	// FindOrphanedRefundApprovals returns REQUEST_REFUND entries older than
	// cutoff whose processor approval has no matching ledger entry. The
	// reconciler replays the ledger write for these.
	FindOrphanedRefundApprovals(ctx context.Context, cutoff time.Time, limit int) ([]*domain.AuditEntry, error)
}

// ProcessorResult is the payment processor's answer to a refund request.
type ProcessorResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const ProcessorStatusSuccess = "success"

// ProcessorClient is the port for the external payment processor. A
// transport failure or non-2xx response surfaces as a PROCESSOR_CONNECTION
// domain error; an explicit decline as PROCESSOR_DECLINED. The call is
// synchronous and must honor ctx cancellation.
type ProcessorClient interface {
	RequestRefund(ctx context.Context, transactionID string, amount decimal.Decimal, idempotencyKey string) (*ProcessorResult, error)
}
