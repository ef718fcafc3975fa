package inventory

import (
	"context"

	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

// TxFunc recibe repositorios atados a una transacción. El ctx recibido debe usarse en todas las llamadas.
type TxFunc func(
	ctx context.Context,
	products repository.ProductStore,
	ledger repository.MovementLedger,
	outbox repository.OutboxWriter,
) error

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error o ctx se cancela antes del commit no queda ningún efecto y los bloqueos se liberan.
type TxRunner interface {
	Run(ctx context.Context, fn TxFunc) error
}
