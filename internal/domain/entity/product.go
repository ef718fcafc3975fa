package entity

import "time"

// Product representa un artículo del inventario.
// Quantity solo la modifica el motor de movimientos; OpeningQuantity es la existencia
// con la que se registró el producto y no cambia.
type Product struct {
	ID               int64     `db:"id"`
	Code             string    `db:"code"` // único
	Name             string    `db:"name"`
	Category         string    `db:"category"`
	Location         string    `db:"location"`
	Quantity         int64     `db:"quantity"`
	OpeningQuantity  int64     `db:"opening_quantity"`
	Version          int64     `db:"version"` // se incrementa en cada escritura de Quantity
	RegistrationDate time.Time `db:"registration_date"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// ProductFilter criterios opcionales para listar productos.
type ProductFilter struct {
	Category string
	Location string
	Limit    int
	Offset   int
}
