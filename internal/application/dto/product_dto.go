package dto

import "time"

// CreateProductRequest entrada para crear un producto. Quantity es la existencia inicial.
type CreateProductRequest struct {
	Code     string `json:"code" validate:"required,min=1,max=50"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Category string `json:"category" validate:"max=100"`
	Location string `json:"location" validate:"max=200"`
	Quantity int64  `json:"quantity" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto. La existencia no se modifica aquí.
type UpdateProductRequest struct {
	Code     *string `json:"code" validate:"omitempty,min=1,max=50"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Category *string `json:"category"`
	Location *string `json:"location"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	Location         string    `json:"location"`
	Quantity         int64     `json:"quantity"`
	OpeningQuantity  int64     `json:"openingQuantity"`
	RegistrationDate time.Time `json:"registrationDate"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
