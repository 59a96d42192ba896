package processor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/config"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// RetryProcessorClient retries connection-level failures with exponential
// backoff and jitter. Declines are never retried; the idempotency key makes
// the retried request the same attempt to the processor.
type RetryProcessorClient struct {
	inner      application.ProcessorClient
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryProcessorClient(inner application.ProcessorClient, cfg config.RetryConfig) application.ProcessorClient {
	// At least one attempt always happens, even on a zero-valued config.
	maxRetries := int(cfg.MaxRetries)
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &RetryProcessorClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: maxRetries,
	}
}

func (r *RetryProcessorClient) RequestRefund(ctx context.Context, transactionID string, amount decimal.Decimal, idempotencyKey string) (*application.ProcessorResult, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := r.inner.RequestRefund(ctx, transactionID, amount, idempotencyKey)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// Helper: to check retryable errors
func isRetryable(err error) bool {
	if !domain.IsErrorCode(err, domain.ErrCodeProcessorConnection) {
		return false
	}
	if procErr, ok := IsProcessorError(err); ok {
		return procErr.IsRetryable()
	}
	// Transport-level failure with no HTTP status: safe to retry.
	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryProcessorClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
