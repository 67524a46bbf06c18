package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

type itemRow struct {
	item entity.Item
	seq  int64
}

// ItemRepo implementación en memoria de ItemRepository.
type ItemRepo struct {
	store *Store
	tx    *state
}

func cloneItem(it entity.Item) *entity.Item {
	out := it
	if it.ExpiryDate != nil {
		d := *it.ExpiryDate
		out.ExpiryDate = &d
	}
	return &out
}

// Create persiste un nuevo ítem. Falla si el ID ya existe.
func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	return r.store.write(r.tx, func(st *state) error {
		if _, ok := st.items[item.ID]; ok {
			return fmt.Errorf("insert item: id duplicado %s", item.ID)
		}
		st.items[item.ID] = itemRow{item: *cloneItem(*item), seq: st.nextSeq()}
		return nil
	})
}

// GetByID obtiene un ítem por ID; (nil, nil) si no existe.
func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	r.store.read(r.tx, func(st *state) {
		if row, ok := st.items[id]; ok {
			out = cloneItem(row.item)
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: Run ya tiene el lock exclusivo del store.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

// FindSameStock busca un registro con igual nombre y categoría en la ubicación indicada.
func (r *ItemRepo) FindSameStock(_ context.Context, name, category, location, excludeID string) (*entity.Item, error) {
	want := &entity.Item{Name: name, Category: category}
	var found *itemRow
	r.store.read(r.tx, func(st *state) {
		for id, row := range st.items {
			if id == excludeID || row.item.Location != location || !want.SameStock(&row.item) {
				continue
			}
			// El más antiguo gana para que el resultado sea estable.
			if found == nil || row.seq < found.seq {
				cp := row
				found = &cp
			}
		}
	})
	if found == nil {
		return nil, nil
	}
	return cloneItem(found.item), nil
}

// List lista ítems filtrados, ordenados por fecha de creación.
func (r *ItemRepo) List(_ context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	var rows []itemRow
	r.store.read(r.tx, func(st *state) {
		for _, row := range st.items {
			if matchesItem(&row.item, filter) {
				rows = append(rows, row)
			}
		}
	})
	slices.SortFunc(rows, func(a, b itemRow) int {
		if c := a.item.CreatedAt.Compare(b.item.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	rows = page(rows, filter.Limit, filter.Offset)
	list := make([]*entity.Item, 0, len(rows))
	for _, row := range rows {
		list = append(list, cloneItem(row.item))
	}
	return list, nil
}

func matchesItem(it *entity.Item, f entity.ItemFilter) bool {
	if f.Location != "" && it.Location != f.Location {
		return false
	}
	if f.Category != "" && !strings.EqualFold(it.Category, f.Category) {
		return false
	}
	if f.ExpiryBefore != nil && (it.ExpiryDate == nil || !it.ExpiryDate.Before(*f.ExpiryBefore)) {
		return false
	}
	if f.InStockOnly && it.Quantity <= 0 {
		return false
	}
	return true
}

// Update actualiza los campos descriptivos y precios. No toca cantidad ni ubicación.
func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	return r.store.write(r.tx, func(st *state) error {
		row, ok := st.items[item.ID]
		if !ok {
			return nil
		}
		upd := *cloneItem(*item)
		upd.Quantity = row.item.Quantity
		upd.Location = row.item.Location
		upd.CreatedAt = row.item.CreatedAt
		st.items[item.ID] = itemRow{item: upd, seq: row.seq}
		return nil
	})
}

// SetQuantity actualiza cantidad y ubicación.
func (r *ItemRepo) SetQuantity(_ context.Context, id string, quantity int64, location string) error {
	return r.store.write(r.tx, func(st *state) error {
		row, ok := st.items[id]
		if !ok {
			return fmt.Errorf("set quantity: item %s no existe", id)
		}
		if quantity < 0 {
			return fmt.Errorf("set quantity: cantidad negativa %d", quantity)
		}
		row.item.Quantity = quantity
		row.item.Location = location
		row.item.UpdatedAt = time.Now()
		st.items[id] = row
		return nil
	})
}

// Delete elimina un ítem por ID.
func (r *ItemRepo) Delete(_ context.Context, id string) error {
	return r.store.write(r.tx, func(st *state) error {
		delete(st.items, id)
		return nil
	})
}
