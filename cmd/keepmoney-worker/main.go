package main

import (
	"context"
	"os"
	"time"

	"keepmoney/internal/amqp"
	"keepmoney/internal/cli"
	applog "keepmoney/internal/log"
	"keepmoney/internal/services"
	"keepmoney/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting keepmoney-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	// The worker recomputes totals itself, so its ledger never publishes.
	ledger := services.NewLedgerService(repo, nil)
	w := worker.NewBalanceWorker(ledger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", applog.FieldError, err)
		}
		if err := ledger.Close(); err != nil {
			logger.Error("Storage close error", applog.FieldError, err)
		}
	})

	logger.Info("Worker running", "reconcile_interval", cfg.ReconcileInterval.String())
	if err := w.Run(ctx, amqpClient, cfg.ReconcileInterval); err != nil && ctx.Err() == nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		_ = amqpClient.Close()
		_ = ledger.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
