package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el repositorio sobre el Store.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

// Create registra el producto con Quantity = OpeningQuantity y versión 0.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	if product.OpeningQuantity < 0 {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, dup := r.s.codes[product.Code]; dup {
		return domain.ErrDuplicate
	}
	now := r.s.now().UTC()
	product.ID = r.s.productSeq.Add(1)
	product.Quantity = product.OpeningQuantity
	product.Version = 0
	if product.RegistrationDate.IsZero() {
		product.RegistrationDate = now
	}
	product.UpdatedAt = now
	cp := *product
	r.s.products[cp.ID] = &cp
	r.s.codes[cp.Code] = cp.ID
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	p, ok := r.s.product(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// GetByCode obtiene un producto por código.
func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.codes[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r.s.products[id]
	return &cp, nil
}

// Update escribe solo los campos descriptivos; Quantity y Version no se tocan.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if product.Code != stored.Code {
		if _, dup := r.s.codes[product.Code]; dup {
			return domain.ErrDuplicate
		}
		delete(r.s.codes, stored.Code)
		r.s.codes[product.Code] = stored.ID
	}
	stored.Code = product.Code
	stored.Name = product.Name
	stored.Category = product.Category
	stored.Location = product.Location
	stored.UpdatedAt = r.s.now().UTC()
	*product = *stored
	return nil
}

// Delete elimina el producto si no tiene movimientos. Espera el bloqueo del producto
// para no competir con un movimiento en curso.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.product(id); !ok {
		return domain.ErrNotFound
	}
	if err := r.s.locks.acquire(ctx, id, r.s.lockTimeout); err != nil {
		return err
	}
	defer r.s.locks.release(id)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if r.s.movementCount[id] > 0 {
		return domain.ErrConflict
	}
	delete(r.s.codes, p.Code)
	delete(r.s.products, id)
	return nil
}

// List filtra por categoría exacta y ubicación contenida (sin mayúsculas), ordenado por nombre.
func (r *ProductRepo) List(_ context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	list := make([]*entity.Product, 0, len(r.s.products))
	location := strings.ToLower(filter.Location)
	for _, p := range r.s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(p.Location), location) {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	r.s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return paginate(list, filter.Limit, filter.Offset), nil
}

// Categories categorías distintas no vacías, ordenadas.
func (r *ProductRepo) Categories(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	seen := make(map[string]struct{})
	for _, p := range r.s.products {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	r.s.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return list[:0]
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
