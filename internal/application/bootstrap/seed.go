// Package bootstrap carga los datos iniciales: usuario administrador y catálogo de ejemplo.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManoGuzman/inventory-system/internal/application/auth"
	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
)

// Options datos a cargar. Products nil = SampleProducts().
type Options struct {
	AdminUsername string
	AdminPassword string
	Products      []entity.Product
}

// Result qué se creó; los registros existentes se omiten.
type Result struct {
	AdminCreated    bool
	ProductsCreated int
}

// SampleProducts catálogo de ejemplo.
func SampleProducts() []entity.Product {
	return []entity.Product{
		{Code: "ELEC001", Name: "Laptop Dell", Category: "Electronics", Location: "Warehouse A", OpeningQuantity: 10},
		{Code: "ELEC002", Name: "Monitor Samsung 24", Category: "Electronics", Location: "Warehouse A", OpeningQuantity: 15},
		{Code: "FURN001", Name: "Office Chair", Category: "Furniture", Location: "Warehouse B", OpeningQuantity: 25},
		{Code: "FURN002", Name: "Standing Desk", Category: "Furniture", Location: "Warehouse B", OpeningQuantity: 8},
		{Code: "STAT001", Name: "Printer Paper A4", Category: "Stationery", Location: "Warehouse C", OpeningQuantity: 200},
		{Code: "STAT002", Name: "Ballpoint Pens (box)", Category: "Stationery", Location: "Warehouse C", OpeningQuantity: 50},
	}
}

// Seed crea el administrador y los productos. Se puede ejecutar varias veces.
func Seed(ctx context.Context, users repository.UserRepository, products repository.ProductRepository, opts Options, log *logger.Logger) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("bootstrap")
	var res Result

	if opts.AdminUsername == "" || len(opts.AdminPassword) < 6 {
		return res, fmt.Errorf("admin: %w", domain.ErrInvalidInput)
	}
	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return res, err
	}
	err = users.Create(ctx, &entity.User{
		Username:     opts.AdminUsername,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		IsActive:     true,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		log.Info().Str("username", opts.AdminUsername).Msg("usuario admin ya existe")
	case err != nil:
		return res, fmt.Errorf("crear admin: %w", err)
	default:
		res.AdminCreated = true
		log.Info().Str("username", opts.AdminUsername).Msg("usuario admin creado")
	}

	catalogue := opts.Products
	if catalogue == nil {
		catalogue = SampleProducts()
	}
	for i := range catalogue {
		p := catalogue[i]
		err := products.Create(ctx, &p)
		if errors.Is(err, domain.ErrDuplicate) {
			log.Debug().Str("code", p.Code).Msg("producto ya existe")
			continue
		}
		if err != nil {
			return res, fmt.Errorf("crear producto %s: %w", p.Code, err)
		}
		res.ProductsCreated++
	}
	log.Info().Int("created", res.ProductsCreated).Int("total", len(catalogue)).Msg("seed completado")
	return res, nil
}
