package entity

import (
	"strings"
	"time"

	"github.com/ManoGuzman/inventory-system/internal/domain"
)

// MovementType dirección del movimiento.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  MovementType = "IN"  // entrada
	MovementTypeOUT MovementType = "OUT" // salida
)

// Valid indica si el tipo es IN u OUT.
func (t MovementType) Valid() bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}

// ParseMovementType acepta "in"/"IN"/"In" (y OUT) sin importar mayúsculas.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", domain.ErrInvalidInput
	}
	return t, nil
}

// Movement registro inmutable del libro de movimientos. Quantity siempre es positiva.
type Movement struct {
	ID        int64        `db:"id"`
	ProductID int64        `db:"product_id"`
	Type      MovementType `db:"type"`
	Quantity  int64        `db:"quantity"`
	Date      time.Time    `db:"date"`
}

// MovementRecord movimiento con los datos de presentación del producto.
type MovementRecord struct {
	Movement
	ProductCode string `db:"product_code"`
	ProductName string `db:"product_name"`
}

// MovementFilter filtros combinables para consultar el libro. Nil = sin filtro.
// From y To son inclusivos. Limit 0 = sin límite.
type MovementFilter struct {
	ProductID *int64
	Type      *MovementType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// LedgerTotals sumas del libro para un producto.
type LedgerTotals struct {
	In    int64 `db:"total_in"`
	Out   int64 `db:"total_out"`
	Count int64 `db:"movement_count"`
}
