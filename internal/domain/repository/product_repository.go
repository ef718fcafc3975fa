package repository

import (
	"context"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Update y Create nunca escriben Quantity fuera de la existencia inicial.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error // asigna ID; ErrDuplicate si Code existe
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id int64) error // ErrConflict si tiene movimientos
	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// ProductStore es lo único que el motor de movimientos necesita del producto.
// Solo es válido dentro de una transacción de TxRunner.
type ProductStore interface {
	// GetForUpdate toma acceso exclusivo al producto hasta el fin de la transacción.
	// ErrNotFound si no existe; ErrConflict si el bloqueo no se obtiene a tiempo.
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	// SaveQuantity escribe la nueva cantidad si la versión coincide; si no, ErrConflict.
	SaveQuantity(ctx context.Context, id, newQuantity, expectedVersion int64) error
}
