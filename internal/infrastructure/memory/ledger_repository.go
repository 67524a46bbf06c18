package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var (
	_ repository.MovementRepository    = (*MovementRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
)

type movementRow struct {
	mov entity.Movement
	seq int64
}

type transactionRow struct {
	tx  entity.Transaction
	seq int64
}

// MovementRepo historial de traslados en memoria.
type MovementRepo struct {
	store *Store
	tx    *state
}

// Create agrega un traslado al historial.
func (r *MovementRepo) Create(_ context.Context, movement *entity.Movement) error {
	return r.store.write(r.tx, func(st *state) error {
		st.movements = append(st.movements, movementRow{mov: *movement, seq: st.nextSeq()})
		return nil
	})
}

// List devuelve el historial ordenado por fecha de traslado.
func (r *MovementRepo) List(_ context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	var rows []movementRow
	r.store.read(r.tx, func(st *state) {
		for _, row := range st.movements {
			if filter.ItemID != "" && row.mov.ItemID != filter.ItemID && row.mov.DestItemID != filter.ItemID {
				continue
			}
			rows = append(rows, row)
		}
	})
	slices.SortStableFunc(rows, func(a, b movementRow) int {
		if c := a.mov.MovementDate.Compare(b.mov.MovementDate); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	rows = page(rows, filter.Limit, filter.Offset)
	list := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		m := row.mov
		list = append(list, &m)
	}
	return list, nil
}

// TransactionRepo libro de ventas en memoria.
type TransactionRepo struct {
	store *Store
	tx    *state
}

// Create agrega una venta al libro.
func (r *TransactionRepo) Create(_ context.Context, tx *entity.Transaction) error {
	return r.store.write(r.tx, func(st *state) error {
		st.transactions = append(st.transactions, transactionRow{tx: *tx, seq: st.nextSeq()})
		return nil
	})
}

// GetByID obtiene una venta; (nil, nil) si no existe.
func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	r.store.read(r.tx, func(st *state) {
		for _, row := range st.transactions {
			if row.tx.ID == id {
				t := row.tx
				out = &t
				return
			}
		}
	})
	return out, nil
}

// List devuelve las ventas ordenadas por transaction_date y luego por orden de inserción.
func (r *TransactionRepo) List(_ context.Context, filter entity.TransactionFilter) ([]*entity.Transaction, error) {
	var rows []transactionRow
	r.store.read(r.tx, func(st *state) {
		for _, row := range st.transactions {
			if matchesTransaction(&row.tx, filter) {
				rows = append(rows, row)
			}
		}
	})
	slices.SortStableFunc(rows, func(a, b transactionRow) int {
		if c := a.tx.TransactionDate.Compare(b.tx.TransactionDate); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	rows = page(rows, filter.Limit, filter.Offset)
	list := make([]*entity.Transaction, 0, len(rows))
	for _, row := range rows {
		t := row.tx
		list = append(list, &t)
	}
	return list, nil
}

func matchesTransaction(tx *entity.Transaction, f entity.TransactionFilter) bool {
	if f.ItemID != "" && tx.ItemID != f.ItemID {
		return false
	}
	if f.From != nil && tx.TransactionDate.Before(*f.From) {
		return false
	}
	if f.To != nil && !tx.TransactionDate.Before(*f.To) {
		return false
	}
	return true
}
