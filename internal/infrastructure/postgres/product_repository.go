package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

const productsTable = "products"

var productColumns = []string{
	"id", "code", "name", "category", "location",
	"quantity", "opening_quantity", "version", "registration_date", "updated_at",
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create inserta el producto con Quantity = OpeningQuantity y versión 0.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	now := time.Now().UTC()
	if product.RegistrationDate.IsZero() {
		product.RegistrationDate = now
	}
	sql, args, err := builder().
		Insert(productsTable).
		Columns("code", "name", "category", "location", "quantity", "opening_quantity", "version", "registration_date", "updated_at").
		Values(product.Code, product.Name, product.Category, product.Location,
			product.OpeningQuantity, product.OpeningQuantity, 0, product.RegistrationDate, now).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.q, product, sql, args...); err != nil {
		return mapError("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return getProduct(ctx, r.q, squirrel.Eq{"id": id}, "")
}

// GetByCode obtiene un producto por código.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return getProduct(ctx, r.q, squirrel.Eq{"code": code}, "")
}

// Update actualiza solo los campos descriptivos; la existencia no se toca.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	sql, args, err := builder().
		Update(productsTable).
		Set("code", product.Code).
		Set("name", product.Name).
		Set("category", product.Category).
		Set("location", product.Location).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": product.ID}).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.q, product, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return domain.ErrNotFound
		}
		return mapError("update product", err)
	}
	return nil
}

// Delete elimina el producto. La FK RESTRICT de movimientos lo impide si tiene historial (ErrConflict).
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos ordenados por nombre con filtros opcionales.
// Category es coincidencia exacta; Location busca por contenido sin distinguir mayúsculas.
func (r *ProductRepo) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	q := builder().Select(productColumns...).From(productsTable).OrderBy("name", "id")
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Location != "" {
		q = q.Where(squirrel.ILike{"location": "%" + escapeLike(filter.Location) + "%"})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	list := make([]*entity.Product, 0)
	if err := pgxscan.Select(ctx, r.q, &list, sql, args...); err != nil {
		return nil, mapError("list products", err)
	}
	return list, nil
}

// Categories devuelve las categorías distintas, ordenadas.
func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	cats := make([]string, 0)
	err := pgxscan.Select(ctx, r.q, &cats,
		`SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	return cats, nil
}

var _ repository.ProductStore = (*ProductStore)(nil)

// ProductStore acceso del motor al producto dentro de una transacción.
type ProductStore struct {
	q Querier
}

// NewProductStore construye el adaptador sobre una tx.
func NewProductStore(q Querier) *ProductStore {
	return &ProductStore{q: q}
}

// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
// Si el bloqueo excede lock_timeout el error se traduce a ErrConflict.
func (s *ProductStore) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return getProduct(ctx, s.q, squirrel.Eq{"id": id}, "FOR UPDATE")
}

// SaveQuantity escribe la existencia si la versión coincide.
func (s *ProductStore) SaveQuantity(ctx context.Context, id, newQuantity, expectedVersion int64) error {
	if newQuantity < 0 {
		return domain.ErrInvalidInput
	}
	tag, err := s.q.Exec(ctx, `
		UPDATE products
		SET quantity = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		newQuantity, time.Now().UTC(), id, expectedVersion,
	)
	if err != nil {
		return mapError("save quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %d versión %d: %w", id, expectedVersion, domain.ErrConflict)
	}
	return nil
}

func getProduct(ctx context.Context, q Querier, where squirrel.Sqlizer, suffix string) (*entity.Product, error) {
	b := builder().Select(productColumns...).From(productsTable).Where(where)
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var p entity.Product
	if err := pgxscan.Get(ctx, q, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, mapError("get product", err)
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
