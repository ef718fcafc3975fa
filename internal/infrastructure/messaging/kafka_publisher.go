package messaging

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

// MessageWriter lo que el publicador necesita de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica eventos en un topic de Kafka con el ID de producto como clave,
// de modo que los eventos de un producto conservan su orden dentro de la partición.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
}

// NewKafkaWriter construye un writer síncrono que espera confirmación de todas las réplicas.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
}

// NewKafkaPublisher construye el publicador.
func NewKafkaPublisher(writer MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic}
}

// Publish escribe el mensaje.
func (p *KafkaPublisher) Publish(ctx context.Context, msg *entity.OutboxMessage) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(msg.AggregateID, 10)),
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: "message-id", Value: []byte(msg.ID)},
			{Key: "event-type", Value: []byte(msg.EventType)},
		},
		Time: msg.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
