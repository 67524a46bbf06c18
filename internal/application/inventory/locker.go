package inventory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/tienda-api/internal/domain"
)

// DefaultLockTimeout tiempo máximo de espera por el lock de un ítem.
const DefaultLockTimeout = 3 * time.Second

// ItemLocker serializa traslados y ventas sobre un mismo ítem.
// Cada ítem tiene un semáforo de peso 1; los que esperan se atienden en orden FIFO.
// Las lecturas no pasan por aquí.
type ItemLocker struct {
	mu      sync.Mutex
	timeout time.Duration
	locks   map[string]*itemLock
}

type itemLock struct {
	sem  *semaphore.Weighted
	refs int // holders + waiters; el lock se libera del mapa al llegar a 0
}

// NewItemLocker construye el locker. timeout <= 0 usa DefaultLockTimeout.
func NewItemLocker(timeout time.Duration) *ItemLocker {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &ItemLocker{timeout: timeout, locks: make(map[string]*itemLock)}
}

// Lock adquiere el lock del ítem. Devuelve una función para liberarlo o
// domain.ErrConcurrencyTimeout si no se obtuvo a tiempo.
func (l *ItemLocker) Lock(ctx context.Context, itemID string) (func(), error) {
	return l.LockAll(ctx, itemID)
}

// LockAll adquiere los locks de varios ítems en orden de id (sin duplicados), de modo que
// dos operaciones sobre el mismo par nunca se esperan en orden cruzado. El timeout cubre
// todas las adquisiciones; si alguna falla se liberan las ya tomadas.
func (l *ItemLocker) LockAll(ctx context.Context, itemIDs ...string) (func(), error) {
	ids := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		// La clave vive en el mapa más allá del request: no puede apuntar a un buffer reutilizable.
		ids = append(ids, strings.Clone(id))
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	acqCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	held := make([]heldLock, 0, len(ids))
	for _, id := range ids {
		lk := l.acquireRef(id)
		if err := lk.sem.Acquire(acqCtx, 1); err != nil {
			l.release(id, lk, false)
			for i := len(held) - 1; i >= 0; i-- {
				l.release(held[i].id, held[i].lk, true)
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, domain.ErrConcurrencyTimeout
			}
			return nil, err
		}
		held = append(held, heldLock{id: id, lk: lk})
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				l.release(held[i].id, held[i].lk, true)
			}
		})
	}, nil
}

type heldLock struct {
	id string
	lk *itemLock
}

func (l *ItemLocker) acquireRef(itemID string) *itemLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk, ok := l.locks[itemID]
	if !ok {
		lk = &itemLock{sem: semaphore.NewWeighted(1)}
		l.locks[itemID] = lk
	}
	lk.refs++
	return lk
}

func (l *ItemLocker) release(itemID string, lk *itemLock, held bool) {
	if held {
		lk.sem.Release(1)
	}
	l.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, itemID)
	}
	l.mu.Unlock()
}
