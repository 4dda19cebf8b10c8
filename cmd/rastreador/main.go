package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rastreador/internal/amqp"
	"rastreador/internal/config"
	"rastreador/internal/core"
	apphttp "rastreador/internal/http"
	"rastreador/internal/ledger"
	applog "rastreador/internal/log"
	"rastreador/internal/services"
	"rastreador/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", applog.FieldError, err.Error(), applog.FieldPath, cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	book, err := ledger.Load(context.Background(), repo)
	if err != nil {
		logger.Error("Failed to load ledger", applog.FieldError, err.Error())
		os.Exit(1)
	}

	// A configured MONTHLY_BUDGET seeds the indicator on first run only; the
	// stored value wins afterwards.
	if cfg.MonthlyBudget != "" && book.Budget().IsZero() {
		amount, err := core.ParseAmount(cfg.MonthlyBudget)
		if err != nil {
			logger.Error("Invalid MONTHLY_BUDGET", applog.FieldError, err.Error())
			os.Exit(1)
		}
		if err := book.SetBudget(context.Background(), amount); err != nil {
			logger.Error("Failed to seed budget", applog.FieldError, err.Error())
			os.Exit(1)
		}
		logger.Info("Seeded monthly budget from environment", applog.FieldAmount, cfg.MonthlyBudget)
	}

	// AMQP is optional: without it mutations stay local and the export worker
	// has nothing to consume.
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := services.NewLedgerService(book, repo, publisher, cfg.BackupDir, logger)
	srv := apphttp.NewServer(":"+cfg.Port, svc, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting rastreador server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("Server stopped gracefully")
}
