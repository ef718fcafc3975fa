package dto

import "time"

// ApplyMovementRequest body para POST /api/inventory/movement.
type ApplyMovementRequest struct {
	ProductID int64  `json:"productId"`
	Type      string `json:"type"` // IN | OUT (sin importar mayúsculas)
	Quantity  int64  `json:"quantity"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"productId"`
	ProductCode string    `json:"productCode"`
	ProductName string    `json:"productName"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
}

// MovementListResponse lista de movimientos, más reciente primero.
// Total cuenta todas las coincidencias del filtro, no solo la página.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Total int                `json:"total"`
}

// ReconciliationResponse resultado de verificar existencia contra el libro.
type ReconciliationResponse struct {
	ProductID        int64  `json:"productId"`
	ProductCode      string `json:"productCode"`
	OpeningQuantity  int64  `json:"openingQuantity"`
	TotalIn          int64  `json:"totalIn"`
	TotalOut         int64  `json:"totalOut"`
	MovementCount    int64  `json:"movementCount"`
	ExpectedQuantity int64  `json:"expectedQuantity"`
	ActualQuantity   int64  `json:"actualQuantity"`
	Consistent       bool   `json:"consistent"`
}
