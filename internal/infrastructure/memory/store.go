// Package memory implementa los puertos de persistencia en memoria. Se usa en desarrollo
// (STORAGE_DRIVER=memory) y en los tests de casos de uso y handlers.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type state struct {
	items        map[string]itemRow
	movements    []movementRow
	transactions []transactionRow
	seq          int64
}

func (st *state) clone() *state {
	return &state{
		items:        maps.Clone(st.items),
		movements:    slices.Clone(st.movements),
		transactions: slices.Clone(st.transactions),
		seq:          st.seq,
	}
}

func (st *state) nextSeq() int64 {
	st.seq++
	return st.seq
}

// Store guarda ítems, traslados y ventas en mapas protegidos por un RWMutex.
// Las lecturas usan RLock; Run trabaja sobre una copia y la publica solo si fn no falla.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{st: &state{items: make(map[string]itemRow)}}
}

// Items repositorio de ítems fuera de transacción.
func (s *Store) Items() *ItemRepo { return &ItemRepo{store: s} }

// Movements repositorio de traslados fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{store: s} }

// Transactions repositorio de ventas fuera de transacción.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{store: s} }

// Run ejecuta fn en exclusión mutua sobre una copia del estado; la copia reemplaza al estado
// solo si fn termina sin error (equivalente a Commit/Rollback).
func (s *Store) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	txRepo repository.TransactionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.st.clone()
	if err := fn(
		&ItemRepo{store: s, tx: draft},
		&MovementRepo{store: s, tx: draft},
		&TransactionRepo{store: s, tx: draft},
	); err != nil {
		return err
	}
	s.st = draft
	return nil
}

func (s *Store) read(tx *state, fn func(st *state)) {
	if tx != nil {
		fn(tx)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

func (s *Store) write(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft := s.st.clone()
	if err := fn(draft); err != nil {
		return err
	}
	s.st = draft
	return nil
}

func page[T any](rows []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(rows) {
			return rows[:0]
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
