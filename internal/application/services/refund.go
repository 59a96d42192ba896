package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ledgerpay/refund-service/internal/application"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// stepOutcome is the audited payload for steps without a richer response.
type stepOutcome struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// RefundRequestRecord is the payload audited under REQUEST_REFUND. It holds
// everything needed to rebuild the ledger entry if the process dies between
// processor approval and the ledger write; the reconciler decodes it.
type RefundRequestRecord struct {
	OriginalTransactionID string          `json:"original_transaction_id"`
	RefundAmount          decimal.Decimal `json:"refund_amount"`
	RefundReason          string          `json:"refund_reason"`
	InitiatedBy           string          `json:"initiated_by"`
	ProcessorStatus       string          `json:"processor_status"`
	ProcessorMessage      string          `json:"processor_message,omitempty"`
}

// RefundService sequences one refund attempt: retrieve, validate, duplicate
// check, adjust, processor call, ledger write, audit. Each invocation is
// stateless; correctness under concurrent attempts against the same original
// transaction rests on the ledger's conditional insert, not on any lock here.
type RefundService struct {
	store     application.TransactionStore
	processor application.ProcessorClient

	validator EligibilityValidator
	guard     *DuplicateGuard
	adjuster  ChargeAdjuster
	writer    *RefundLedgerWriter
	auditor   *AuditRecorder

	processorTimeout time.Duration
	logger           *slog.Logger
}

func NewRefundService(
	store application.TransactionStore,
	audit application.AuditStore,
	processor application.ProcessorClient,
	processorTimeout time.Duration,
	logger *slog.Logger,
) *RefundService {
	return &RefundService{
		store:            store,
		processor:        processor,
		guard:            NewDuplicateGuard(store),
		writer:           NewRefundLedgerWriter(store),
		auditor:          NewAuditRecorder(audit),
		processorTimeout: processorTimeout,
		logger:           logger,
	}
}

// ProcessRefund runs one refund attempt end to end and returns a uniform
// result. Every error is returned as-is to the boundary layer; no step
// retries or recovers locally.
func (s *RefundService) ProcessRefund(ctx context.Context, cmd RefundCommand) (*RefundResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	original, err := s.store.GetByID(ctx, cmd.TransactionID)
	if err != nil {
		s.auditFailure(ctx, cmd.TransactionID, nil, domain.ActionQueryLedger, cmd.UserID, err)
		return nil, err
	}
	if err := s.audit(ctx, cmd.TransactionID, nil, domain.ActionQueryLedger, cmd.UserID, original); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(original); err != nil {
		s.auditFailure(ctx, cmd.TransactionID, nil, domain.ActionValidateRefund, cmd.UserID, err)
		return nil, err
	}
	if err := s.audit(ctx, cmd.TransactionID, nil, domain.ActionValidateRefund, cmd.UserID, stepOutcome{Status: "ok"}); err != nil {
		return nil, err
	}

	if err := s.guard.Check(ctx, cmd.TransactionID); err != nil {
		s.auditFailure(ctx, cmd.TransactionID, nil, domain.ActionCheckDuplicate, cmd.UserID, err)
		return nil, err
	}
	if err := s.audit(ctx, cmd.TransactionID, nil, domain.ActionCheckDuplicate, cmd.UserID, stepOutcome{Status: "ok"}); err != nil {
		return nil, err
	}

	adjusted := s.adjuster.Adjust(original, cmd.RefundAmount)
	if !adjusted.IsPositive() {
		err := domain.NewValidationError("refund_amount", "does not cover fees and taxes")
		s.auditFailure(ctx, cmd.TransactionID, nil, domain.ActionAdjustCharges, cmd.UserID, err)
		return nil, err
	}
	// The duplicate guard passed, so nothing has been refunded yet.
	remaining := s.adjuster.Remaining(original.Amount, decimal.Zero)
	if adjusted.GreaterThan(remaining) {
		err := domain.NewExcessiveRefundError(cmd.TransactionID)
		s.auditFailure(ctx, cmd.TransactionID, &adjusted, domain.ActionAdjustCharges, cmd.UserID, err)
		return nil, err
	}
	if err := s.audit(ctx, cmd.TransactionID, &adjusted, domain.ActionAdjustCharges, cmd.UserID, stepOutcome{Status: "ok"}); err != nil {
		return nil, err
	}

	// The refund transaction ID doubles as the processor idempotency key:
	// deterministic per original transaction, so a retried attempt is the
	// same attempt to the processor.
	refundID := domain.RefundTransactionID(original.TransactionID)

	procCtx, cancel := context.WithTimeout(ctx, s.processorTimeout)
	defer cancel()

	record := RefundRequestRecord{
		OriginalTransactionID: original.TransactionID,
		RefundAmount:          adjusted,
		RefundReason:          cmd.RefundReason,
		InitiatedBy:           cmd.UserID,
	}

	procResult, err := s.processor.RequestRefund(procCtx, original.TransactionID, adjusted, refundID)
	if err != nil {
		record.ProcessorStatus = "error"
		record.ProcessorMessage = err.Error()
		s.auditFailure(ctx, refundID, &adjusted, domain.ActionRequestRefund, cmd.UserID, record)
		return nil, err
	}
	record.ProcessorStatus = procResult.Status
	record.ProcessorMessage = procResult.Message
	if err := s.audit(ctx, refundID, &adjusted, domain.ActionRequestRefund, cmd.UserID, record); err != nil {
		return nil, err
	}

	refundEntry, err := s.writer.Write(ctx, original, adjusted, cmd.RefundReason, cmd.UserID)
	if err != nil {
		s.auditFailure(ctx, refundID, &adjusted, domain.ActionCreateLedger, cmd.UserID, err)
		return nil, err
	}
	if err := s.audit(ctx, refundID, &adjusted, domain.ActionCreateLedger, cmd.UserID, refundEntry); err != nil {
		return nil, err
	}

	if err := s.audit(ctx, refundID, &adjusted, domain.ActionCreateRefund, cmd.UserID, procResult); err != nil {
		return nil, err
	}

	s.logger.Info("refund processed",
		"transaction_id", original.TransactionID,
		"refund_transaction_id", refundEntry.TransactionID,
		"adjusted_amount", adjusted.String(),
	)

	return &RefundResult{
		RefundTransactionID: refundEntry.TransactionID,
		AdjustedAmount:      adjusted,
		ProcessorMessage:    procResult.Message,
	}, nil
}

func (s *RefundService) audit(ctx context.Context, transactionID string, amount *decimal.Decimal, action domain.AuditAction, actor string, response any) error {
	if err := s.auditor.Record(ctx, transactionID, amount, action, actor, response); err != nil {
		s.logger.Error("audit write failed",
			"action", string(action),
			"transaction_id", transactionID,
			"error", err,
		)
		return application.NewInternalError(err)
	}
	return nil
}

// auditFailure records a failed step. The triggering error is what the
// caller sees; an audit write failure here is logged but never masks it.
func (s *RefundService) auditFailure(ctx context.Context, transactionID string, amount *decimal.Decimal, action domain.AuditAction, actor string, response any) {
	if stepErr, ok := response.(error); ok {
		response = stepOutcome{Status: "error", Message: stepErr.Error()}
	}
	if err := s.auditor.Record(ctx, transactionID, amount, action, actor, response); err != nil {
		s.logger.Error("audit write failed",
			"action", string(action),
			"transaction_id", transactionID,
			"error", err,
		)
	}
}
