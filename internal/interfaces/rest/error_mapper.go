package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ledgerpay/refund-service/internal/application"
)

type ErrorResponse struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// WriteError maps application errors to HTTP responses
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode := application.ToHTTPStatus(err)
	errorCode := application.ToErrorCode(err)

	if statusCode >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "status", statusCode)
	}

	response := ErrorResponse{
		Status:    "error",
		ErrorCode: errorCode,
		Message:   err.Error(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
