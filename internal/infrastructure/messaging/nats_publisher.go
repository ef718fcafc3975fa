package messaging

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

// NATSPublisher publica eventos de la bandeja de salida en un subject de NATS.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// ConnectNATS abre la conexión con reconexión indefinida.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("conectar nats %s: %w", url, err)
	}
	return conn, nil
}

// NewNATSPublisher construye el publicador. El subject final es subject + "." + tipo de evento.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

// Publish envía el mensaje y espera el flush para confirmar que salió hacia el servidor.
// Nats-Msg-Id permite deduplicar en JetStream si el relay reintenta.
func (p *NATSPublisher) Publish(ctx context.Context, msg *entity.OutboxMessage) error {
	m := nats.NewMsg(p.subject + "." + msg.EventType)
	m.Data = msg.Payload
	m.Header.Set(nats.MsgIdHdr, msg.ID)
	m.Header.Set("Event-Type", msg.EventType)
	m.Header.Set("Aggregate-Id", strconv.FormatInt(msg.AggregateID, 10))
	if err := p.conn.PublishMsg(m); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

// Close drena la conexión.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
