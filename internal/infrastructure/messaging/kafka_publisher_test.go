package messaging_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/messaging"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_ClavePorProducto(t *testing.T) {
	w := &fakeWriter{}
	p := messaging.NewKafkaPublisher(w, "inventory.movements")
	msg := &entity.OutboxMessage{
		ID:          "c0ffee",
		AggregateID: 42,
		EventType:   entity.EventMovementApplied,
		Payload:     []byte(`{"productId":42}`),
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.Publish(context.Background(), msg))
	require.Len(t, w.msgs, 1)
	got := w.msgs[0]
	assert.Equal(t, "inventory.movements", got.Topic)
	assert.Equal(t, []byte("42"), got.Key)
	assert.JSONEq(t, `{"productId":42}`, string(got.Value))
	assert.Contains(t, got.Headers, kafka.Header{Key: "message-id", Value: []byte("c0ffee")})
}

func TestKafkaPublisher_PropagaError(t *testing.T) {
	boom := errors.New("broker caído")
	p := messaging.NewKafkaPublisher(&fakeWriter{err: boom}, "t")
	err := p.Publish(context.Background(), &entity.OutboxMessage{ID: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestNewKafkaWriter(t *testing.T) {
	w := messaging.NewKafkaWriter([]string{"localhost:9092"})
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Empty(t, w.Topic, "el topic va en cada mensaje")
}
