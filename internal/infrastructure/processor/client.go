package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/config"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// HTTPProcessorClient requests refunds from the payment processor's API.
// Transport failures and non-2xx responses surface as PROCESSOR_CONNECTION
// errors; a well-formed response with a non-success status surfaces as
// PROCESSOR_DECLINED.
type HTTPProcessorClient struct {
	apiURL     string
	apiToken   string
	httpClient *http.Client
}

func NewProcessorClient(cfg config.ProcessorConfig) application.ProcessorClient {
	return &HTTPProcessorClient{
		apiURL:   cfg.APIURL,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

type refundRequest struct {
	TransactionID string          `json:"transaction_id"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
}

func (c *HTTPProcessorClient) RequestRefund(ctx context.Context, transactionID string, amount decimal.Decimal, idempotencyKey string) (*application.ProcessorResult, error) {
	jsonData, err := json.Marshal(refundRequest{
		TransactionID: transactionID,
		RefundAmount:  amount,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewProcessorConnectionError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, domain.NewProcessorConnectionError(&ProcessorError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		})
	}

	var result application.ProcessorResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, domain.NewProcessorConnectionError(fmt.Errorf("error decoding json response: %w", err))
	}

	if result.Status != application.ProcessorStatusSuccess {
		message := result.Message
		if message == "" {
			message = "unknown error"
		}
		return nil, domain.NewProcessorDeclinedError(message)
	}

	return &result, nil
}
