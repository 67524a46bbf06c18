package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

var itemColumns = []string{
	"id", "name", "category", "description", "buy_price", "sell_price", "weight",
	"quantity", "location", "expiry_date", "created_at", "updated_at",
}

type itemRecord struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Category    string          `db:"category"`
	Description string          `db:"description"`
	BuyPrice    decimal.Decimal `db:"buy_price"`
	SellPrice   decimal.Decimal `db:"sell_price"`
	Weight      decimal.Decimal `db:"weight"`
	Quantity    int64           `db:"quantity"`
	Location    string          `db:"location"`
	ExpiryDate  *time.Time      `db:"expiry_date"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r itemRecord) toEntity() *entity.Item {
	it := entity.Item(r)
	if it.ExpiryDate != nil {
		d := it.ExpiryDate.UTC()
		it.ExpiryDate = &d
	}
	it.CreatedAt = it.CreatedAt.UTC()
	it.UpdatedAt = it.UpdatedAt.UTC()
	return &it
}

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo ítem.
func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	sql, args, err := builder().Insert("items").Columns(itemColumns...).Values(
		it.ID, it.Name, it.Category, it.Description, it.BuyPrice, it.SellPrice, it.Weight,
		it.Quantity, it.Location, it.ExpiryDate, it.CreatedAt, it.UpdatedAt,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert item: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return wrapWriteError("insert item", it.ID, err)
	}
	return nil
}

func (r *ItemRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, op string) (*entity.Item, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	var rec itemRecord
	if err := pgxscan.Get(ctx, r.q, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec.toEntity(), nil
}

// GetByID obtiene un ítem; (nil, nil) si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, builder().Select(itemColumns...).From("items").Where(squirrel.Eq{"id": id}), "get item")
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE). Solo tiene efecto dentro de una tx.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, builder().Select(itemColumns...).From("items").
		Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"), "get item for update")
}

// FindSameStock busca el registro más antiguo con igual nombre y categoría en la ubicación.
// No bloquea: quien vaya a escribir lo bloquea después con GetForUpdate, en orden de id.
func (r *ItemRepo) FindSameStock(ctx context.Context, name, category, location, excludeID string) (*entity.Item, error) {
	q := builder().Select(itemColumns...).From("items").
		Where(squirrel.Eq{"location": location}).
		Where("lower(btrim(name)) = lower(btrim(?))", name).
		Where("lower(btrim(category)) = lower(btrim(?))", category).
		Where(squirrel.NotEq{"id": excludeID}).
		OrderBy("seq").Limit(1)
	return r.getOne(ctx, q, "find same stock")
}

// List lista ítems filtrados, ordenados por fecha de creación.
func (r *ItemRepo) List(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	q := builder().Select(itemColumns...).From("items")
	if filter.Location != "" {
		q = q.Where(squirrel.Eq{"location": filter.Location})
	}
	if filter.Category != "" {
		q = q.Where("lower(category) = lower(?)", filter.Category)
	}
	if filter.ExpiryBefore != nil {
		q = q.Where(squirrel.Lt{"expiry_date": *filter.ExpiryBefore})
	}
	if filter.InStockOnly {
		q = q.Where(squirrel.Gt{"quantity": 0})
	}
	q = q.OrderBy("created_at", "seq")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items: %w", err)
	}
	var recs []itemRecord
	if err := pgxscan.Select(ctx, r.q, &recs, sql, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	list := make([]*entity.Item, 0, len(recs))
	for _, rec := range recs {
		list = append(list, rec.toEntity())
	}
	return list, nil
}

// Update actualiza campos descriptivos y precios. No toca cantidad ni ubicación.
func (r *ItemRepo) Update(ctx context.Context, it *entity.Item) error {
	sql, args, err := builder().Update("items").
		Set("name", it.Name).
		Set("category", it.Category).
		Set("description", it.Description).
		Set("buy_price", it.BuyPrice).
		Set("sell_price", it.SellPrice).
		Set("weight", it.Weight).
		Set("expiry_date", it.ExpiryDate).
		Set("updated_at", it.UpdatedAt).
		Where(squirrel.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update item: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// SetQuantity actualiza cantidad y ubicación.
func (r *ItemRepo) SetQuantity(ctx context.Context, id string, quantity int64, location string) error {
	if quantity < 0 {
		return fmt.Errorf("set quantity: cantidad negativa %d", quantity)
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE items SET quantity = $2, location = $3, updated_at = now() WHERE id = $1`,
		id, quantity, location)
	if err != nil {
		return wrapWriteError("set quantity", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set quantity: item %s no existe", id)
	}
	return nil
}

// Delete elimina un ítem por ID.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
