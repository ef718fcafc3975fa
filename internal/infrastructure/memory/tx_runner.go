package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManoGuzman/inventory-system/internal/application/inventory"
	"github.com/ManoGuzman/inventory-system/internal/domain"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

var (
	_ repository.ProductStore   = (*memTx)(nil)
	_ repository.MovementLedger = (*memTx)(nil)
	_ repository.OutboxWriter   = (*memTx)(nil)
)

// TxRunner ejecuta callbacks sobre una transacción en memoria.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos atados a la tx. Los cambios se aplican solo si fn termina sin
// error y ctx sigue vigente; los bloqueos se liberan siempre al salir.
func (r *TxRunner) Run(ctx context.Context, fn inventory.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{s: r.s, staged: make(map[int64]*stagedQty)}
	defer tx.releaseLocks()

	if err := fn(ctx, tx, tx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.commit(tx)
}

type stagedQty struct {
	quantity    int64
	baseVersion int64 // versión confirmada al preparar
	writes      int64
}

// memTx escrituras preparadas; nada es visible hasta commit.
type memTx struct {
	s         *Store
	held      []int64
	staged    map[int64]*stagedQty
	movements []*entity.Movement
	outbox    []*entity.OutboxMessage
}

func (t *memTx) holds(id int64) bool {
	for _, h := range t.held {
		if h == id {
			return true
		}
	}
	return false
}

func (t *memTx) releaseLocks() {
	for _, id := range t.held {
		t.s.locks.release(id)
	}
	t.held = nil
}

// GetForUpdate bloquea el producto hasta el fin de la tx y devuelve su estado visto por la tx.
func (t *memTx) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	if !t.holds(id) {
		if _, ok := t.s.product(id); !ok {
			return nil, domain.ErrNotFound
		}
		if err := t.s.locks.acquire(ctx, id, t.s.lockTimeout); err != nil {
			return nil, err
		}
		t.held = append(t.held, id)
	}
	p, ok := t.s.product(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if st, ok := t.staged[id]; ok {
		p.Quantity = st.quantity
		p.Version = st.baseVersion + st.writes
	}
	return p, nil
}

// SaveQuantity prepara la nueva existencia si expectedVersion coincide con la vista por la tx.
func (t *memTx) SaveQuantity(_ context.Context, id, newQuantity, expectedVersion int64) error {
	if newQuantity < 0 {
		return domain.ErrInvalidInput
	}
	p, ok := t.s.product(id)
	if !ok {
		return domain.ErrNotFound
	}
	st, staged := t.staged[id]
	current := p.Version
	if staged {
		current = st.baseVersion + st.writes
	}
	if current != expectedVersion {
		return fmt.Errorf("producto %d: versión %d, esperada %d: %w", id, current, expectedVersion, domain.ErrConflict)
	}
	if !staged {
		st = &stagedQty{baseVersion: p.Version}
		t.staged[id] = st
	}
	st.quantity = newQuantity
	st.writes++
	return nil
}

// Append agrega el movimiento a la tx y le asigna ID. Un rollback deja huecos en la secuencia.
func (t *memTx) Append(_ context.Context, m *entity.Movement) error {
	if err := t.s.fault(FaultAppend); err != nil {
		return domain.StorageFailure("append movement", err)
	}
	if m.Quantity <= 0 || !m.Type.Valid() {
		return domain.ErrInvalidInput
	}
	if _, ok := t.s.product(m.ProductID); !ok {
		return domain.ErrNotFound
	}
	m.ID = t.s.movementSeq.Add(1)
	cp := *m
	t.movements = append(t.movements, &cp)
	return nil
}

// Enqueue agrega el evento a la tx.
func (t *memTx) Enqueue(_ context.Context, msg *entity.OutboxMessage) error {
	if msg.ID == "" {
		return domain.ErrInvalidInput
	}
	cp := *msg
	cp.Status = entity.OutboxStatusPending
	t.outbox = append(t.outbox, &cp)
	return nil
}

// commit valida y aplica todo bajo un único bloqueo de escritura: los lectores ven
// el estado anterior completo o el nuevo completo.
func (s *Store) commit(tx *memTx) error {
	if err := s.fault(FaultCommit); err != nil {
		return domain.StorageFailure("commit", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range tx.staged {
		p, ok := s.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if p.Version != st.baseVersion {
			return fmt.Errorf("producto %d modificado durante la transacción: %w", id, domain.ErrConflict)
		}
	}
	for _, m := range tx.movements {
		if _, ok := s.products[m.ProductID]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, msg := range tx.outbox {
		if _, dup := s.outboxByID[msg.ID]; dup {
			return errors.Join(domain.ErrDuplicate, fmt.Errorf("outbox %s", msg.ID))
		}
	}

	now := s.now().UTC()
	for id, st := range tx.staged {
		p := s.products[id]
		p.Quantity = st.quantity
		p.Version = st.baseVersion + st.writes
		p.UpdatedAt = now
	}
	for _, m := range tx.movements {
		s.movements[m.ID] = m
		s.movementCount[m.ProductID]++
	}
	for _, msg := range tx.outbox {
		s.outbox = append(s.outbox, msg)
		s.outboxByID[msg.ID] = msg
	}
	return nil
}
