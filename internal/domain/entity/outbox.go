package entity

import "time"

// EventMovementApplied evento emitido por cada movimiento confirmado.
const EventMovementApplied = "inventory.movement.applied"

// OutboxStatus estado de un mensaje en la bandeja de salida.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxMessage evento persistido en la misma transacción que el cambio que lo origina.
type OutboxMessage struct {
	ID          string       `db:"id"` // uuid
	AggregateID int64        `db:"aggregate_id"`
	EventType   string       `db:"event_type"`
	Payload     []byte       `db:"payload"`
	Status      OutboxStatus `db:"status"`
	RetryCount  int          `db:"retry_count"`
	LastError   *string      `db:"last_error"`
	NextRetryAt *time.Time   `db:"next_retry_at"`
	CreatedAt   time.Time    `db:"created_at"`
	PublishedAt *time.Time   `db:"published_at"`
}

// MovementAppliedEvent payload JSON de EventMovementApplied.
type MovementAppliedEvent struct {
	MovementID    int64        `json:"movementId"`
	ProductID     int64        `json:"productId"`
	ProductCode   string       `json:"productCode"`
	Type          MovementType `json:"type"`
	Quantity      int64        `json:"quantity"`
	QuantityAfter int64        `json:"quantityAfter"`
	Date          time.Time    `json:"date"`
}
