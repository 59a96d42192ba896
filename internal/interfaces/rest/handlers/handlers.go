package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ledgerpay/refund-service/internal/application/services"
	"github.com/ledgerpay/refund-service/internal/domain"
)

// RefundProcessor runs one refund attempt end to end.
type RefundProcessor interface {
	ProcessRefund(ctx context.Context, cmd services.RefundCommand) (*services.RefundResult, error)
}

// RefundFinder looks up the refund recorded for an original transaction.
type RefundFinder interface {
	RefundFor(ctx context.Context, originalID string) (*domain.Transaction, error)
}

type Handlers struct {
	refundService RefundProcessor
	queryService  RefundFinder
	logger        *slog.Logger
}

func NewHandlers(refundService RefundProcessor, queryService RefundFinder, logger *slog.Logger) *Handlers {
	return &Handlers{
		refundService: refundService,
		queryService:  queryService,
		logger:        logger,
	}
}

// Routes registers all API routes on the given mux.
func (h *Handlers) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/refunds", h.ProcessRefund)
	mux.HandleFunc("GET /api/v1/refunds/{transaction_id}", h.GetRefund)
	mux.HandleFunc("GET /health", h.Health)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
