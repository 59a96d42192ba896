package processor

import (
	"errors"
	"fmt"
)

// ProcessorError carries an HTTP-level failure from the payment processor.
type ProcessorError struct {
	StatusCode int
	Message    string
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor returned status %d: %s", e.StatusCode, e.Message)
}

func (e *ProcessorError) IsRetryable() bool {
	return e.StatusCode >= 500
}

func IsProcessorError(err error) (*ProcessorError, bool) {
	var procErr *ProcessorError
	ok := errors.As(err, &procErr)
	return procErr, ok
}
