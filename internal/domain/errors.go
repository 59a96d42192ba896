package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Refund error taxonomy
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeIneligible          = "INELIGIBLE"
	ErrCodeAlreadyRefunded     = "ALREADY_REFUNDED"
	ErrCodeDuplicateRefund     = "DUPLICATE_REFUND"
	ErrCodeProcessorConnection = "PROCESSOR_CONNECTION_ERROR"
	ErrCodeProcessorDeclined   = "PROCESSOR_DECLINED"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeExcessiveRefund     = "EXCESSIVE_REFUND"
)

func NewNotFoundError(transactionID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("transaction %s not found", transactionID),
	}
}

func NewIneligibleError(transactionID, status string) *DomainError {
	return &DomainError{
		Code:    ErrCodeIneligible,
		Message: fmt.Sprintf("transaction %s is not eligible for refund: status is %s", transactionID, status),
	}
}

func NewAlreadyRefundedError(transactionID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeAlreadyRefunded,
		Message: fmt.Sprintf("transaction %s has already been refunded", transactionID),
	}
}

func NewDuplicateRefundError(transactionID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateRefund,
		Message: fmt.Sprintf("duplicate refund detected for transaction %s", transactionID),
	}
}

func NewProcessorConnectionError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeProcessorConnection,
		Message: "failed to connect to payment processor",
		Err:     err,
	}
}

func NewProcessorDeclinedError(message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeProcessorDeclined,
		Message: fmt.Sprintf("refund declined by processor: %s", message),
	}
}

func NewValidationError(field, reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("%s %s", field, reason),
	}
}

func NewExcessiveRefundError(transactionID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeExcessiveRefund,
		Message: fmt.Sprintf("refund amount exceeds refundable balance for transaction %s", transactionID),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
