package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerpay/refund-service/internal/domain"
)

// AuditRepository is the Postgres implementation of the AuditStore port.
// Rows are append-only: no update or delete path exists here.
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append writes one audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_trail (audit_id, transaction_id, action, actor, timestamp, refund_amount, response)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	m := toAuditModel(entry)
	_, err := r.db.Exec(ctx, query,
		m.AuditID,
		m.TransactionID,
		m.Action,
		m.Actor,
		m.Timestamp,
		m.RefundAmount,
		m.Response,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// FindOrphanedRefundApprovals returns REQUEST_REFUND entries recorded before
// cutoff whose processor approval succeeded but whose refund transaction ID
// never made it into the ledger.
func (r *AuditRepository) FindOrphanedRefundApprovals(ctx context.Context, cutoff time.Time, limit int) ([]*domain.AuditEntry, error) {
	query := `
		SELECT a.audit_id, a.transaction_id, a.action, a.actor, a.timestamp, a.refund_amount, a.response
		FROM audit_trail a
		WHERE a.action = $1
		  AND a.timestamp < $2
		  AND a.response->>'processor_status' = 'success'
		  AND NOT EXISTS (
			SELECT 1 FROM payment_ledger l WHERE l.transaction_id = a.transaction_id
		  )
		ORDER BY a.timestamp ASC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, string(domain.ActionRequestRefund), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query orphaned refund approvals: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.AuditEntry, error) {
		var m AuditModel
		err := row.Scan(
			&m.AuditID, &m.TransactionID, &m.Action, &m.Actor,
			&m.Timestamp, &m.RefundAmount, &m.Response,
		)
		return toDomainAuditEntry(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit rows: %w", err)
	}
	return results, nil
}
