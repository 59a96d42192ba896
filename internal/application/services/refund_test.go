package services_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/application/services"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRefundService(store *MockTransactionStore, audit *MockAuditStore, processor *MockProcessorClient) *services.RefundService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewRefundService(store, audit, processor, 5*time.Second, logger)
}

func seedSuccessfulTransaction(store *MockTransactionStore, id string) *domain.Transaction {
	tx := &domain.Transaction{
		TransactionID: id,
		Amount:        decimal.NewFromInt(100),
		Status:        domain.StatusSuccess,
		Fees:          decimal.NewFromInt(2),
		Taxes:         decimal.NewFromInt(1),
		ProcessorID:   "payroc-01",
		Timestamp:     time.Now().UTC(),
	}
	store.Seed(tx)
	return tx
}

func defaultCommand(transactionID string) services.RefundCommand {
	return services.RefundCommand{
		TransactionID: transactionID,
		RefundAmount:  decimal.NewFromInt(50),
		RefundReason:  "customer request",
		UserID:        "user-1",
	}
}

func Test_ProcessRefund_Success(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	service := newRefundService(store, audit, processor)

	seedSuccessfulTransaction(store, "TXN1")

	result, err := service.ProcessRefund(context.Background(), defaultCommand("TXN1"))

	require.NoError(t, err)
	assert.Equal(t, "TXN1-REFUND", result.RefundTransactionID)
	assert.True(t, result.AdjustedAmount.Equal(decimal.NewFromInt(47)),
		"expected adjusted amount 47, got %s", result.AdjustedAmount)
	assert.Equal(t, "Refund approved by processor.", result.ProcessorMessage)

	entry := store.Get("TXN1-REFUND")
	require.NotNil(t, entry)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(-47)), "ledger amount should be -47, got %s", entry.Amount)
	assert.Equal(t, domain.StatusRefunded, entry.Status)
	require.NotNil(t, entry.OriginalTransactionID)
	assert.Equal(t, "TXN1", *entry.OriginalTransactionID)
	assert.Equal(t, "payroc-01", entry.ProcessorID)

	assert.Equal(t, 1, processor.Calls())
	assert.Equal(t, "TXN1-REFUND", processor.LastIdempotencyKey())

	assert.Equal(t, []domain.AuditAction{
		domain.ActionQueryLedger,
		domain.ActionValidateRefund,
		domain.ActionCheckDuplicate,
		domain.ActionAdjustCharges,
		domain.ActionRequestRefund,
		domain.ActionCreateLedger,
		domain.ActionCreateRefund,
	}, audit.Actions())
}

func Test_ProcessRefund_RequestRefundAuditCarriesReplayRecord(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	service := newRefundService(store, audit, processor)

	seedSuccessfulTransaction(store, "TXN1")

	_, err := service.ProcessRefund(context.Background(), defaultCommand("TXN1"))
	require.NoError(t, err)

	var requestEntry *domain.AuditEntry
	for _, e := range audit.Entries() {
		if e.Action == domain.ActionRequestRefund {
			requestEntry = e
		}
	}
	require.NotNil(t, requestEntry)
	assert.Equal(t, "TXN1-REFUND", requestEntry.TransactionID)
	assert.Equal(t, "user-1", requestEntry.Actor)
	require.NotNil(t, requestEntry.RefundAmount)
	assert.True(t, requestEntry.RefundAmount.Equal(decimal.NewFromInt(47)))

	var record services.RefundRequestRecord
	require.NoError(t, json.Unmarshal(requestEntry.Response, &record))
	assert.Equal(t, "TXN1", record.OriginalTransactionID)
	assert.True(t, record.RefundAmount.Equal(decimal.NewFromInt(47)))
	assert.Equal(t, "customer request", record.RefundReason)
	assert.Equal(t, "user-1", record.InitiatedBy)
	assert.Equal(t, "success", record.ProcessorStatus)
}

func Test_ProcessRefund_DuplicateRequest(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	service := newRefundService(store, audit, processor)

	seedSuccessfulTransaction(store, "TXN1")

	_, err := service.ProcessRefund(context.Background(), defaultCommand("TXN1"))
	require.NoError(t, err)

	_, err = service.ProcessRefund(context.Background(), defaultCommand("TXN1"))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeDuplicateRefund))

	// The guard caught the duplicate before the processor was contacted again.
	assert.Equal(t, 1, processor.Calls())
	assert.Equal(t, 1, store.RefundCount("TXN1"))
}

func Test_ProcessRefund_ConcurrentAttemptsCreateOneEntry(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	// Slow processor widens the window between the duplicate check and the
	// ledger write; the conditional insert must still let only one through.
	processor.Delay = 50 * time.Millisecond
	service := newRefundService(store, audit, processor)

	seedSuccessfulTransaction(store, "TXN1")

	const attempts = 5
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ProcessRefund(context.Background(), defaultCommand("TXN1"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, duplicates := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case domain.IsErrorCode(err, domain.ErrCodeDuplicateRefund):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one attempt should win")
	assert.Equal(t, attempts-1, duplicates)
	assert.Equal(t, 1, store.RefundCount("TXN1"), "ledger must hold exactly one refund entry")
}

func Test_ProcessRefund_ProcessorDeclined(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	processor.RequestRefundFn = func(ctx context.Context, transactionID string, amount decimal.Decimal, idempotencyKey string) (*application.ProcessorResult, error) {
		return nil, domain.NewProcessorDeclinedError("insufficient processor balance")
	}
	service := newRefundService(store, audit, processor)

	seedSuccessfulTransaction(store, "TXN1")

	_, err := service.ProcessRefund(context.Background(), defaultCommand("TXN1"))

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeProcessorDeclined))
	assert.Contains(t, err.Error(), "insufficient processor balance")

	assert.Nil(t, store.Get("TXN1-REFUND"), "no ledger entry on decline")
	assert.NotContains(t, audit.Actions(), domain.ActionCreateRefund)
	assert.Contains(t, audit.Actions(), domain.ActionRequestRefund)
}

func Test_ProcessRefund_ProcessorConnectionError(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	processor.RequestRefundFn = func(ctx context.Context, transactionID string, amount decimal.Decimal, idempotencyKey string) (*application.ProcessorResult, error) {
		return nil, domain.NewProcessorConnectionError(context.DeadlineExceeded)
	}
	service := newRefundService(store, audit, processor)

	seedSuccessfulTransaction(store, "TXN1")

	_, err := service.ProcessRefund(context.Background(), defaultCommand("TXN1"))

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeProcessorConnection))
	assert.Nil(t, store.Get("TXN1-REFUND"))
}

func Test_ProcessRefund_IneligibleTransaction(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	service := newRefundService(store, audit, processor)

	store.Seed(&domain.Transaction{
		TransactionID: "TXN2",
		Amount:        decimal.NewFromInt(100),
		Status:        domain.StatusFailed,
	})

	_, err := service.ProcessRefund(context.Background(), defaultCommand("TXN2"))

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeIneligible))

	// Nothing was written to the ledger after the initial read.
	assert.Equal(t, 0, store.InsertCalls())
	assert.Equal(t, 0, processor.Calls())
	assert.Equal(t, []domain.AuditAction{
		domain.ActionQueryLedger,
		domain.ActionValidateRefund,
	}, audit.Actions())
}

func Test_ProcessRefund_AlreadyRefundedMarker(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	service := newRefundService(store, audit, processor)

	store.Seed(&domain.Transaction{
		TransactionID: "TXN3",
		Amount:        decimal.NewFromInt(100),
		Status:        domain.StatusSuccess,
		Refunded:      true,
	})

	_, err := service.ProcessRefund(context.Background(), defaultCommand("TXN3"))

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeAlreadyRefunded))
}

func Test_ProcessRefund_TransactionNotFound(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	service := newRefundService(store, audit, processor)

	_, err := service.ProcessRefund(context.Background(), defaultCommand("TXN-MISSING"))

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeNotFound))
	assert.Equal(t, []domain.AuditAction{domain.ActionQueryLedger}, audit.Actions())
}

func Test_ProcessRefund_RejectsMalformedCommand(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	service := newRefundService(store, audit, processor)

	tests := []struct {
		name string
		cmd  services.RefundCommand
	}{
		{"missing transaction id", services.RefundCommand{RefundAmount: decimal.NewFromInt(10), UserID: "user-1"}},
		{"missing user id", services.RefundCommand{TransactionID: "TXN1", RefundAmount: decimal.NewFromInt(10)}},
		{"zero amount", services.RefundCommand{TransactionID: "TXN1", UserID: "user-1"}},
		{"negative amount", services.RefundCommand{TransactionID: "TXN1", RefundAmount: decimal.NewFromInt(-5), UserID: "user-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ProcessRefund(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.True(t, domain.IsErrorCode(err, domain.ErrCodeValidation))
		})
	}

	assert.Empty(t, audit.Actions(), "malformed requests never reach the stores")
	assert.Equal(t, 0, processor.Calls())
}

func Test_ProcessRefund_AmountBelowCharges(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	service := newRefundService(store, audit, processor)

	seedSuccessfulTransaction(store, "TXN1")

	cmd := defaultCommand("TXN1")
	cmd.RefundAmount = decimal.NewFromInt(3) // fees 2 + taxes 1 leaves nothing

	_, err := service.ProcessRefund(context.Background(), cmd)

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeValidation))
	assert.Equal(t, 0, processor.Calls())
}

func Test_ProcessRefund_AmountExceedsRefundable(t *testing.T) {
	store := NewMockTransactionStore()
	audit := NewMockAuditStore()
	processor := NewMockProcessorClient()
	service := newRefundService(store, audit, processor)

	seedSuccessfulTransaction(store, "TXN1")

	cmd := defaultCommand("TXN1")
	cmd.RefundAmount = decimal.NewFromInt(200)

	_, err := service.ProcessRefund(context.Background(), cmd)

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeExcessiveRefund))
	assert.Equal(t, 0, processor.Calls())
	assert.Nil(t, store.Get("TXN1-REFUND"))
}
