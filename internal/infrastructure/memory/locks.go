package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ManoGuzman/inventory-system/internal/domain"
)

// lockEntry semáforo de peso 1 y cuántos lo tienen o lo esperan.
type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// lockTable un semáforo por producto. La entrada se descarta cuando nadie la tiene ni la espera.
type lockTable struct {
	mu   sync.Mutex
	sems map[int64]*lockEntry
}

func newLockTable() *lockTable {
	return &lockTable{sems: make(map[int64]*lockEntry)}
}

func (t *lockTable) ref(id int64) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sems[id]
	if !ok {
		e = &lockEntry{sem: semaphore.NewWeighted(1)}
		t.sems[id] = e
	}
	e.refs++
	return e
}

func (t *lockTable) unref(id int64, e *lockEntry, held bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if held {
		e.sem.Release(1)
	}
	e.refs--
	if e.refs == 0 && t.sems[id] == e {
		delete(t.sems, id)
	}
}

// acquire espera el bloqueo del producto como máximo timeout.
// Devuelve el error de ctx si el llamador canceló, o domain.ErrConflict si venció la espera.
func (t *lockTable) acquire(ctx context.Context, id int64, timeout time.Duration) error {
	e := t.ref(id)
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := e.sem.Acquire(lockCtx, 1); err != nil {
		t.unref(id, e, false)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("producto %d bloqueado por más de %s: %w", id, timeout, domain.ErrConflict)
	}
	return nil
}

// release libera un bloqueo obtenido con acquire.
func (t *lockTable) release(id int64) {
	t.mu.Lock()
	e, ok := t.sems[id]
	t.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("memory: release sin bloqueo del producto %d", id))
	}
	t.unref(id, e, true)
}

// size entradas vivas en la tabla.
func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sems)
}
