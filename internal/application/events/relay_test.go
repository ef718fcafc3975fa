package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManoGuzman/inventory-system/internal/application/events"
	"github.com/ManoGuzman/inventory-system/internal/application/inventory"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/memory"
)

type fakePublisher struct {
	mu   sync.Mutex
	sent []*entity.OutboxMessage
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, msg *entity.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func seedMovements(t *testing.T, s *memory.Store, n int) {
	t.Helper()
	p := &entity.Product{Code: "P1", Name: "P1"}
	require.NoError(t, memory.NewProductRepository(s).Create(context.Background(), p))
	engine := inventory.NewApplyMovementUseCase(memory.NewTxRunner(s), inventory.EngineConfig{}, nil)
	for i := 0; i < n; i++ {
		_, err := engine.Apply(context.Background(), inventory.ApplyMovementInput{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 1})
		require.NoError(t, err)
	}
}

func TestRelay_PublicaYMarca(t *testing.T) {
	s := memory.NewStore()
	seedMovements(t, s, 3)
	outbox := memory.NewOutboxRepository(s)
	pub := &fakePublisher{}
	relay := events.NewRelay(outbox, pub, events.RelayConfig{BatchSize: 2}, nil)

	n, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 3, pub.count())
	assert.Zero(t, outbox.Pending())
	assert.Equal(t, entity.EventMovementApplied, pub.sent[0].EventType)
}

func TestRelay_FalloReintentaYLuegoAbandona(t *testing.T) {
	var offset time.Duration
	s := memory.NewStore(memory.WithClock(func() time.Time { return time.Now().Add(offset) }))
	seedMovements(t, s, 1)
	outbox := memory.NewOutboxRepository(s)
	pub := &fakePublisher{err: errors.New("broker caído")}
	relay := events.NewRelay(outbox, pub, events.RelayConfig{MaxAttempts: 2, BaseBackoff: time.Second, Lease: time.Minute}, nil)

	n, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, outbox.Pending(), "primer fallo: sigue pendiente")

	n, err = relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "aún en espera de reintento")

	offset = 2 * time.Second
	n, err = relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, outbox.Pending(), "segundo fallo: agotó intentos")
}

func TestRelay_RunTerminaConElContexto(t *testing.T) {
	s := memory.NewStore()
	seedMovements(t, s, 5)
	pub := &fakePublisher{}
	relay := events.NewRelay(memory.NewOutboxRepository(s), pub, events.RelayConfig{PollInterval: 5 * time.Millisecond, BatchSize: 2}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return pub.count() == 5 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
}
