package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// MockTransactionStore is an in-memory ledger with overridable behavior.
type MockTransactionStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.Transaction

	GetByIDFn                 func(ctx context.Context, transactionID string) (*domain.Transaction, error)
	FindRefundsByOriginalIDFn func(ctx context.Context, originalID string) ([]*domain.Transaction, error)
	InsertIfAbsentFn          func(ctx context.Context, tx *domain.Transaction) error

	insertCalls int
}

func NewMockTransactionStore() *MockTransactionStore {
	return &MockTransactionStore{entries: make(map[string]*domain.Transaction)}
}

func (m *MockTransactionStore) Seed(tx *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[tx.TransactionID] = tx
}

func (m *MockTransactionStore) GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, transactionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tx, ok := m.entries[transactionID]; ok {
		copied := *tx
		return &copied, nil
	}
	return nil, domain.NewNotFoundError(transactionID)
}

func (m *MockTransactionStore) FindRefundsByOriginalID(ctx context.Context, originalID string) ([]*domain.Transaction, error) {
	if m.FindRefundsByOriginalIDFn != nil {
		return m.FindRefundsByOriginalIDFn(ctx, originalID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var refunds []*domain.Transaction
	for _, tx := range m.entries {
		if tx.OriginalTransactionID != nil && *tx.OriginalTransactionID == originalID {
			copied := *tx
			refunds = append(refunds, &copied)
		}
	}
	return refunds, nil
}

func (m *MockTransactionStore) InsertIfAbsent(ctx context.Context, tx *domain.Transaction) error {
	m.mu.Lock()
	m.insertCalls++
	m.mu.Unlock()

	if m.InsertIfAbsentFn != nil {
		return m.InsertIfAbsentFn(ctx, tx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[tx.TransactionID]; ok {
		return application.ErrAlreadyExists
	}
	if tx.OriginalTransactionID != nil {
		for _, existing := range m.entries {
			if existing.OriginalTransactionID != nil && *existing.OriginalTransactionID == *tx.OriginalTransactionID {
				return application.ErrAlreadyExists
			}
		}
	}
	copied := *tx
	m.entries[tx.TransactionID] = &copied
	return nil
}

func (m *MockTransactionStore) InsertCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.insertCalls
}

func (m *MockTransactionStore) Get(transactionID string) *domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[transactionID]
}

func (m *MockTransactionStore) RefundCount(originalID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, tx := range m.entries {
		if tx.OriginalTransactionID != nil && *tx.OriginalTransactionID == originalID {
			count++
		}
	}
	return count
}

// MockAuditStore records appended entries in order.
type MockAuditStore struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry

	AppendFn func(ctx context.Context, entry *domain.AuditEntry) error
}

func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{}
}

func (m *MockAuditStore) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuditStore) FindOrphanedRefundApprovals(ctx context.Context, cutoff time.Time, limit int) ([]*domain.AuditEntry, error) {
	return nil, nil
}

func (m *MockAuditStore) Entries() []*domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AuditEntry(nil), m.entries...)
}

func (m *MockAuditStore) Actions() []domain.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]domain.AuditAction, 0, len(m.entries))
	for _, e := range m.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

// MockProcessorClient approves every refund unless overridden.
type MockProcessorClient struct {
	mu          sync.Mutex
	calls       int
	lastIdemKey string

	Delay           time.Duration
	RequestRefundFn func(ctx context.Context, transactionID string, amount decimal.Decimal, idempotencyKey string) (*application.ProcessorResult, error)
}

func NewMockProcessorClient() *MockProcessorClient {
	return &MockProcessorClient{}
}

func (m *MockProcessorClient) RequestRefund(ctx context.Context, transactionID string, amount decimal.Decimal, idempotencyKey string) (*application.ProcessorResult, error) {
	m.mu.Lock()
	m.calls++
	m.lastIdemKey = idempotencyKey
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, domain.NewProcessorConnectionError(ctx.Err())
		case <-time.After(m.Delay):
		}
	}

	if m.RequestRefundFn != nil {
		return m.RequestRefundFn(ctx, transactionID, amount, idempotencyKey)
	}
	return &application.ProcessorResult{
		Status:  application.ProcessorStatusSuccess,
		Message: "Refund approved by processor.",
	}, nil
}

func (m *MockProcessorClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockProcessorClient) LastIdempotencyKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastIdemKey
}
