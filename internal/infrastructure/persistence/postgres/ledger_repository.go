package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/domain"
)

const ledgerColumns = `transaction_id, original_transaction_id, amount, status,
	       fees, taxes, processor_id, refund_reason, initiated_by, refunded, timestamp`

// LedgerRepository is the Postgres implementation of the TransactionStore
// port. The payment_ledger table carries unique constraints on both the
// primary key and original_transaction_id, so InsertIfAbsent is a single
// atomic claim.
type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetByID retrieves a ledger entry by its transaction ID.
func (r *LedgerRepository) GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM payment_ledger WHERE transaction_id = $1`

	row := r.db.QueryRow(ctx, query, transactionID)
	return scanTransaction(row, transactionID)
}

// FindRefundsByOriginalID queries the index on original_transaction_id.
func (r *LedgerRepository) FindRefundsByOriginalID(ctx context.Context, originalID string) ([]*domain.Transaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM payment_ledger
		WHERE original_transaction_id = $1
		ORDER BY timestamp ASC`

	rows, err := r.db.Query(ctx, query, originalID)
	if err != nil {
		return nil, fmt.Errorf("query refunds by original_transaction_id: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Transaction, error) {
		var m LedgerModel
		err := row.Scan(
			&m.TransactionID, &m.OriginalTransactionID, &m.Amount, &m.Status,
			&m.Fees, &m.Taxes, &m.ProcessorID, &m.RefundReason, &m.InitiatedBy,
			&m.Refunded, &m.Timestamp,
		)
		return toDomainTransaction(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan refund rows: %w", err)
	}
	return results, nil
}

// InsertIfAbsent inserts the entry unless any uniqueness constraint is
// already claimed, in which case nothing is written and ErrAlreadyExists is
// returned.
func (r *LedgerRepository) InsertIfAbsent(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO payment_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING
	`

	m := toLedgerModel(tx)
	tag, err := r.db.Exec(ctx, query,
		m.TransactionID,
		m.OriginalTransactionID,
		m.Amount,
		m.Status,
		m.Fees,
		m.Taxes,
		m.ProcessorID,
		m.RefundReason,
		m.InitiatedBy,
		m.Refunded,
		m.Timestamp,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return application.ErrAlreadyExists
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return application.ErrAlreadyExists
	}
	return nil
}

func scanTransaction(row pgx.Row, transactionID string) (*domain.Transaction, error) {
	var m LedgerModel
	err := row.Scan(
		&m.TransactionID, &m.OriginalTransactionID, &m.Amount, &m.Status,
		&m.Fees, &m.Taxes, &m.ProcessorID, &m.RefundReason, &m.InitiatedBy,
		&m.Refunded, &m.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(transactionID)
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	return toDomainTransaction(m), nil
}
