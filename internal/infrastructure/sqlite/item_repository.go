package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

var itemColumns = []string{
	"id", "name", "category", "description", "buy_price", "sell_price", "weight",
	"quantity", "location", "expiry_date", "created_at", "updated_at",
}

type itemRow struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Category    string          `db:"category"`
	Description string          `db:"description"`
	BuyPrice    decimal.Decimal `db:"buy_price"`
	SellPrice   decimal.Decimal `db:"sell_price"`
	Weight      decimal.Decimal `db:"weight"`
	Quantity    int64           `db:"quantity"`
	Location    string          `db:"location"`
	ExpiryDate  sql.NullString  `db:"expiry_date"`
	CreatedAt   string          `db:"created_at"`
	UpdatedAt   string          `db:"updated_at"`
}

func (r itemRow) toEntity() (*entity.Item, error) {
	it := &entity.Item{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		BuyPrice:    r.BuyPrice,
		SellPrice:   r.SellPrice,
		Weight:      r.Weight,
		Quantity:    r.Quantity,
		Location:    r.Location,
	}
	var err error
	if r.ExpiryDate.Valid {
		exp, err := parseTime(r.ExpiryDate.String)
		if err != nil {
			return nil, err
		}
		it.ExpiryDate = &exp
	}
	if it.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, err
	}
	return it, nil
}

// ItemRepo implementación de ItemRepository sobre SQLite (usable con db o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar db o tx.
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo ítem.
func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	query, args, err := builder().Insert("items").Columns(itemColumns...).Values(
		it.ID, it.Name, it.Category, it.Description, it.BuyPrice, it.SellPrice, it.Weight,
		it.Quantity, it.Location, formatTimePtr(it.ExpiryDate), formatTime(it.CreatedAt), formatTime(it.UpdatedAt),
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert item: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, op string) (*entity.Item, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	var row itemRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row.toEntity()
}

// GetByID obtiene un ítem; (nil, nil) si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, builder().Select(itemColumns...).From("items").Where(squirrel.Eq{"id": id}), "get item")
}

// GetForUpdate equivale a GetByID: SQLite no tiene FOR UPDATE y la tx ya es la única conexión escritora.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

// FindSameStock busca el registro más antiguo con igual nombre y categoría en la ubicación.
func (r *ItemRepo) FindSameStock(ctx context.Context, name, category, location, excludeID string) (*entity.Item, error) {
	q := builder().Select(itemColumns...).From("items").
		Where(squirrel.Eq{"location": location}).
		Where("LOWER(TRIM(name)) = LOWER(TRIM(?))", name).
		Where("LOWER(TRIM(category)) = LOWER(TRIM(?))", category).
		Where(squirrel.NotEq{"id": excludeID}).
		OrderBy("rowid").Limit(1)
	return r.getOne(ctx, q, "find same stock")
}

// List lista ítems filtrados, ordenados por fecha de creación.
func (r *ItemRepo) List(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	q := builder().Select(itemColumns...).From("items")
	if filter.Location != "" {
		q = q.Where(squirrel.Eq{"location": filter.Location})
	}
	if filter.Category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.ExpiryBefore != nil {
		q = q.Where(squirrel.Lt{"expiry_date": formatTime(*filter.ExpiryBefore)})
	}
	if filter.InStockOnly {
		q = q.Where(squirrel.Gt{"quantity": 0})
	}
	q = paginate(q.OrderBy("created_at", "rowid"), filter.Limit, filter.Offset)
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items: %w", err)
	}
	var rows []itemRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	list := make([]*entity.Item, 0, len(rows))
	for _, row := range rows {
		it, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, nil
}

// Update actualiza campos descriptivos y precios. No toca cantidad ni ubicación.
func (r *ItemRepo) Update(ctx context.Context, it *entity.Item) error {
	query, args, err := builder().Update("items").
		Set("name", it.Name).
		Set("category", it.Category).
		Set("description", it.Description).
		Set("buy_price", it.BuyPrice).
		Set("sell_price", it.SellPrice).
		Set("weight", it.Weight).
		Set("expiry_date", formatTimePtr(it.ExpiryDate)).
		Set("updated_at", formatTime(it.UpdatedAt)).
		Where(squirrel.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update item: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// SetQuantity actualiza cantidad y ubicación.
func (r *ItemRepo) SetQuantity(ctx context.Context, id string, quantity int64, location string) error {
	if quantity < 0 {
		return fmt.Errorf("set quantity: cantidad negativa %d", quantity)
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE items SET quantity = ?, location = ?, updated_at = ? WHERE id = ?`,
		quantity, location, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set quantity: item %s no existe", id)
	}
	return nil
}

// Delete elimina un ítem por ID.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
