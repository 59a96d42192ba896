package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/ledgerpay/refund-service/internal/application/services"
	"github.com/ledgerpay/refund-service/internal/config"
	"github.com/ledgerpay/refund-service/internal/infrastructure/persistence/postgres"
	"github.com/ledgerpay/refund-service/internal/infrastructure/processor"
	"github.com/ledgerpay/refund-service/internal/interfaces/rest/handlers"
	"github.com/ledgerpay/refund-service/internal/interfaces/rest/middleware"
	"github.com/ledgerpay/refund-service/internal/worker"
)

var configPath = kingpin.Flag("config", "Path to the YAML config file.").Short('c').Default("").String()

func main() {
	kingpin.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting refund service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ledgerRepo := postgres.NewLedgerRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	processorClient := processor.NewProcessorClient(cfg.Processor)
	retryProcessorClient := processor.NewRetryProcessorClient(processorClient, cfg.Retry)

	refundService := services.NewRefundService(ledgerRepo, auditRepo, retryProcessorClient, cfg.Processor.ConnTimeout, logger)
	queryService := services.NewQueryService(ledgerRepo)

	h := handlers.NewHandlers(refundService, queryService, logger)

	mux := http.NewServeMux()
	h.Routes(mux)

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	reconciler := worker.NewReconciler(
		ledgerRepo,
		auditRepo,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		cfg.Worker.GracePeriod,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go reconciler.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
