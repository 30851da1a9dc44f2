package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keepmoney/internal/amqp"
	"keepmoney/internal/core"
	"keepmoney/internal/storage"
)

type fakeLedger struct {
	mu         sync.Mutex
	users      []string
	failing    map[string]error
	recomputed []string
}

func (f *fakeLedger) RecomputeTotal(_ context.Context, username string) (core.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[username]; err != nil {
		return core.Balance{}, err
	}
	f.recomputed = append(f.recomputed, username)
	return core.NewBalance(username, core.Money{Cents: 100}, core.Money{Cents: 40}, core.Money{}), nil
}

func (f *fakeLedger) Usernames(context.Context) ([]string, error) {
	return f.users, nil
}

func (f *fakeLedger) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.recomputed...)
}

type fakeConsumer struct {
	messages []*amqp.BalanceRecalcMessage
	results  []error
}

func (c *fakeConsumer) ConsumeBalanceRecalc(ctx context.Context, handler func(context.Context, *amqp.BalanceRecalcMessage) error) error {
	for _, m := range c.messages {
		c.results = append(c.results, handler(ctx, m))
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleMessage(t *testing.T) {
	ledger := &fakeLedger{failing: map[string]error{
		"gone":   fmt.Errorf("update: %w", storage.ErrNotFound),
		"broken": errors.New("disk I/O error"),
	}}
	w := NewBalanceWorker(ledger)
	ctx := context.Background()

	require.NoError(t, w.HandleMessage(ctx, amqp.NewBalanceRecalcMessage("mario", amqp.ReasonIncome)))
	assert.Equal(t, []string{"mario"}, ledger.calls())

	// Unknown users are dropped rather than requeued forever.
	assert.NoError(t, w.HandleMessage(ctx, amqp.NewBalanceRecalcMessage("gone", amqp.ReasonIncome)))

	err := w.HandleMessage(ctx, amqp.NewBalanceRecalcMessage("broken", amqp.ReasonIncome))
	assert.Error(t, err)
}

func TestReconcileAll(t *testing.T) {
	ledger := &fakeLedger{
		users:   []string{"anna", "broken", "mario"},
		failing: map[string]error{"broken": errors.New("boom")},
	}
	w := NewBalanceWorker(ledger)

	n, err := w.ReconcileAll(context.Background())
	assert.Equal(t, 2, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"anna", "mario"}, ledger.calls())
}

func TestReconcileAllStopsOnCancel(t *testing.T) {
	ledger := &fakeLedger{users: []string{"anna", "mario"}}
	w := NewBalanceWorker(ledger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := w.ReconcileAll(ctx)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunConsumesAndStops(t *testing.T) {
	ledger := &fakeLedger{users: []string{"anna"}}
	consumer := &fakeConsumer{messages: []*amqp.BalanceRecalcMessage{
		amqp.NewBalanceRecalcMessage("mario", amqp.ReasonPurchase),
	}}
	w := NewBalanceWorker(ledger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer, time.Hour) }()

	require.Eventually(t, func() bool { return len(ledger.calls()) >= 2 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, []string{"anna", "mario"}, ledger.calls())
}
