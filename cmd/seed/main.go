// seed crea el usuario administrador (SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD, por defecto
// admin/admin123) y un catálogo de productos de ejemplo en PostgreSQL.
//
// Uso: go run ./cmd/seed [-latin1] [ruta/productos.csv]
// Sin CSV carga el catálogo de ejemplo. El CSV lleva columnas code,name,category,location,quantity
// con encabezado; -latin1 decodifica exportaciones ISO-8859-1 de hojas de cálculo.
// Los registros existentes se omiten, así que puede ejecutarse varias veces.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ManoGuzman/inventory-system/internal/application/bootstrap"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/postgres"
	"github.com/ManoGuzman/inventory-system/pkg/config"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	var products []entity.Product
	if flag.NArg() > 0 {
		products, err = readCSV(flag.Arg(0), *latin1)
		if err != nil {
			log.Fatal().Err(err).Str("file", flag.Arg(0)).Msg("leer CSV de productos")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	_, err = bootstrap.Seed(ctx, postgres.NewUserRepository(pool), postgres.NewProductRepository(pool), bootstrap.Options{
		AdminUsername: cfg.Storage.AdminUsername,
		AdminPassword: cfg.Storage.AdminPassword,
		Products:      products,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
}

func readCSV(path string, latin1 bool) ([]entity.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	return parseProducts(r)
}

// parseProducts lee code,name,category,location,quantity; la primera fila es el encabezado.
func parseProducts(r io.Reader) ([]entity.Product, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]entity.Product, 0, len(rows)-1)
	for i, row := range rows[1:] {
		qty, err := strconv.ParseInt(strings.TrimSpace(row[4]), 10, 64)
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("fila %d: cantidad inválida %q", i+2, row[4])
		}
		code, name := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if code == "" || name == "" {
			return nil, fmt.Errorf("fila %d: código y nombre son requeridos", i+2)
		}
		out = append(out, entity.Product{
			Code:            code,
			Name:            name,
			Category:        strings.TrimSpace(row[2]),
			Location:        strings.TrimSpace(row[3]),
			OpeningQuantity: qty,
		})
	}
	return out, nil
}
