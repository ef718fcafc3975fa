// Package memory implementa los puertos de persistencia en memoria de proceso.
// Mantiene la misma semántica que PostgreSQL: bloqueo exclusivo por producto con tiempo
// límite, escrituras preparadas en la transacción y aplicadas de una sola vez al confirmar.
package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

// FaultPoint punto donde una transacción puede fallar a propósito (pruebas de atomicidad).
type FaultPoint string

const (
	FaultAppend FaultPoint = "append" // al agregar el movimiento, con la existencia ya preparada
	FaultCommit FaultPoint = "commit" // al confirmar, antes de aplicar cualquier cambio
)

const defaultLockTimeout = 2 * time.Second

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout espera máxima por el bloqueo de un producto.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithClock reemplaza time.Now (fechas de registro y de la bandeja de salida).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store estado compartido. mu protege solo las estructuras; la serialización de
// movimientos de un mismo producto la dan los semáforos de locks.
type Store struct {
	mu sync.RWMutex

	products      map[int64]*entity.Product
	codes         map[string]int64
	movements     map[int64]*entity.Movement
	movementCount map[int64]int64 // por producto
	users         map[int64]*entity.User
	usernames     map[string]int64
	outbox        []*entity.OutboxMessage
	outboxByID    map[string]*entity.OutboxMessage

	productSeq  atomic.Int64
	movementSeq atomic.Int64
	userSeq     atomic.Int64

	locks       *lockTable
	lockTimeout time.Duration
	now         func() time.Time

	faultMu sync.Mutex
	faults  map[FaultPoint]error
}

// NewStore crea un almacén vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{
		products:      make(map[int64]*entity.Product),
		codes:         make(map[string]int64),
		movements:     make(map[int64]*entity.Movement),
		movementCount: make(map[int64]int64),
		users:         make(map[int64]*entity.User),
		usernames:     make(map[string]int64),
		outboxByID:    make(map[string]*entity.OutboxMessage),
		locks:         newLockTable(),
		lockTimeout:   defaultLockTimeout,
		now:           time.Now,
		faults:        make(map[FaultPoint]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InjectFault hace que las transacciones fallen en point con err. err nil lo desactiva.
func (s *Store) InjectFault(point FaultPoint, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err == nil {
		delete(s.faults, point)
		return
	}
	s.faults[point] = err
}

func (s *Store) fault(point FaultPoint) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faults[point]
}

// product devuelve una copia del producto confirmado.
func (s *Store) product(id int64) (*entity.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (s *Store) record(m *entity.Movement) *entity.MovementRecord {
	rec := &entity.MovementRecord{Movement: *m}
	if p, ok := s.products[m.ProductID]; ok {
		rec.ProductCode = p.Code
		rec.ProductName = p.Name
	}
	return rec
}
