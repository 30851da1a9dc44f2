package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"keepmoney/internal/amqp"
	"keepmoney/internal/core"
	"keepmoney/internal/storage"
)

// Ledger is the part of the ledger service the worker drives.
type Ledger interface {
	RecomputeTotal(ctx context.Context, username string) (core.Balance, error)
	Usernames(ctx context.Context) ([]string, error)
}

// Consumer delivers balance recalculation messages.
type Consumer interface {
	ConsumeBalanceRecalc(ctx context.Context, handler func(context.Context, *amqp.BalanceRecalcMessage) error) error
}

// BalanceWorker keeps the stored user totals in line with the ledger.
type BalanceWorker struct {
	ledger Ledger
}

func NewBalanceWorker(ledger Ledger) *BalanceWorker {
	return &BalanceWorker{ledger: ledger}
}

// HandleMessage recomputes the total of the user named in msg. Messages for
// users that no longer exist are acknowledged and dropped.
func (w *BalanceWorker) HandleMessage(ctx context.Context, msg *amqp.BalanceRecalcMessage) error {
	b, err := w.ledger.RecomputeTotal(ctx, msg.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Dropping balance recalc for unknown user",
				"message_id", msg.ID,
				"username", msg.Username)
			return nil
		}
		return fmt.Errorf("recompute total of %s: %w", msg.Username, err)
	}

	slog.InfoContext(ctx, "User total recomputed",
		"message_id", msg.ID,
		"username", msg.Username,
		"reason", msg.Reason,
		"total_cents", b.Total.Cents)
	return nil
}

// ReconcileAll recomputes every user total. It keeps going past failures and
// returns how many users were updated along with the joined errors.
func (w *BalanceWorker) ReconcileAll(ctx context.Context) (int, error) {
	names, err := w.ledger.Usernames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	var errs []error
	updated := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if _, err := w.ledger.RecomputeTotal(ctx, name); err != nil {
			slog.ErrorContext(ctx, "Failed to reconcile user", "username", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		updated++
	}

	slog.InfoContext(ctx, "Reconciliation completed",
		"total", len(names),
		"updated", updated,
		"errors", len(errs))

	return updated, errors.Join(errs...)
}

// Run reconciles once, then consumes messages (when consumer is non-nil) and
// reconciles every interval until ctx is cancelled.
func (w *BalanceWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	if _, err := w.ReconcileAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup reconciliation failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeBalanceRecalc(gctx, w.HandleMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := w.ReconcileAll(gctx); err != nil {
					slog.ErrorContext(gctx, "Periodic reconciliation failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
