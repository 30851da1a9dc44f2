package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"keepmoney/internal/amqp"
	"keepmoney/internal/cli"
	apphttp "keepmoney/internal/http"
	applog "keepmoney/internal/log"
	"keepmoney/internal/middleware/ratelimit"
	"keepmoney/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// Without a broker every write recomputes the user total inline.
	var publisher services.BalancePublisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		amqpClient = c
		publisher = c
		logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, recomputing totals inline")
	}

	ledger := services.NewLedgerService(repo, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		TokenSecret: []byte(cfg.JWTSecret),
		TokenTTL:    cfg.TokenTTL,
		CacheTTL:    cfg.CacheTTL,
		Logger:      logger,
		AuthLimit:   ratelimit.DefaultConfig(),
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", applog.FieldError, err)
			}
		}
		if err := ledger.Close(); err != nil {
			logger.Error("Storage close error", applog.FieldError, err)
		}
	})

	logger.Info("Starting keepmoney server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
