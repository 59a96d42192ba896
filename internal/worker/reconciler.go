package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/application/services"
	"github.com/ledgerpay/refund-service/internal/domain"
)

// reconcilerActor is recorded as the initiator on replayed audit entries.
const reconcilerActor = "reconciler"

// Reconciler repairs refunds that the processor approved but that never made
// it into the ledger, e.g. because the process died between the processor
// call and the ledger write. The REQUEST_REFUND audit entry carries the full
// request record, so the ledger write can be replayed; the conditional
// insert makes the replay idempotent.
type Reconciler struct {
	store       application.TransactionStore
	audits      application.AuditStore
	writer      *services.RefundLedgerWriter
	auditor     *services.AuditRecorder
	interval    time.Duration
	batchSize   int
	gracePeriod time.Duration
	logger      *slog.Logger
}

func NewReconciler(
	store application.TransactionStore,
	audits application.AuditStore,
	interval time.Duration,
	batchSize int,
	gracePeriod time.Duration,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		store:       store,
		audits:      audits,
		writer:      services.NewRefundLedgerWriter(store),
		auditor:     services.NewAuditRecorder(audits),
		interval:    interval,
		batchSize:   batchSize,
		gracePeriod: gracePeriod,
		logger:      logger,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting background reconciler",
		"interval", r.interval,
		"batch_size", r.batchSize,
		"grace_period", r.gracePeriod,
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping background reconciler")
			return
		case <-ticker.C:
			r.run(ctx)
		}
	}
}

// RunOnce executes a single reconciliation cycle.
func (r *Reconciler) RunOnce(ctx context.Context) {
	r.run(ctx)
}

func (r *Reconciler) run(ctx context.Context) {
	cutoff := time.Now().Add(-r.gracePeriod)

	orphaned, err := r.audits.FindOrphanedRefundApprovals(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("failed to fetch orphaned refund approvals", "error", err)
		return
	}

	if len(orphaned) == 0 {
		return
	}

	r.logger.Info("reconciling orphaned refund approvals", "count", len(orphaned))

	for _, entry := range orphaned {
		if err := r.replay(ctx, entry); err != nil {
			r.logger.Error("reconciliation failed for refund",
				"refund_transaction_id", entry.TransactionID,
				"error", err,
			)
		}
	}
}

// replay rebuilds the ledger entry recorded in a REQUEST_REFUND audit. A
// DUPLICATE_REFUND from the writer means another writer got there first, so
// the refund is already reconciled.
func (r *Reconciler) replay(ctx context.Context, entry *domain.AuditEntry) error {
	var record services.RefundRequestRecord
	if err := json.Unmarshal(entry.Response, &record); err != nil {
		return err
	}

	original, err := r.store.GetByID(ctx, record.OriginalTransactionID)
	if err != nil {
		return err
	}

	refund, err := r.writer.Write(ctx, original, record.RefundAmount, record.RefundReason, record.InitiatedBy)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeDuplicateRefund) {
			r.logger.Info("refund already reconciled", "refund_transaction_id", entry.TransactionID)
			return nil
		}
		return err
	}

	if err := r.auditor.Record(ctx, refund.TransactionID, &record.RefundAmount, domain.ActionCreateLedger, reconcilerActor, refund); err != nil {
		return err
	}

	r.logger.Info("successfully reconciled refund",
		"refund_transaction_id", refund.TransactionID,
		"original_transaction_id", record.OriginalTransactionID,
	)
	return nil
}
