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

var (
	_ repository.MovementRepository    = (*MovementRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
)

var movementColumns = []string{
	"id", "item_id", "dest_item_id", "item_name", "from_location", "to_location",
	"quantity", "movement_date", "description",
}

var transactionColumns = []string{
	"id", "item_id", "item_name", "quantity", "buying_price", "selling_price",
	"discount", "discount_type", "transaction_date", "created_at",
}

type movementRecord struct {
	ID           string    `db:"id"`
	ItemID       string    `db:"item_id"`
	DestItemID   string    `db:"dest_item_id"`
	ItemName     string    `db:"item_name"`
	FromLocation string    `db:"from_location"`
	ToLocation   string    `db:"to_location"`
	Quantity     int64     `db:"quantity"`
	MovementDate time.Time `db:"movement_date"`
	Description  string    `db:"description"`
}

type transactionRecord struct {
	ID              string          `db:"id"`
	ItemID          string          `db:"item_id"`
	ItemName        string          `db:"item_name"`
	Quantity        int64           `db:"quantity"`
	BuyingPrice     decimal.Decimal `db:"buying_price"`
	SellingPrice    decimal.Decimal `db:"selling_price"`
	Discount        decimal.Decimal `db:"discount"`
	DiscountType    string          `db:"discount_type"`
	TransactionDate time.Time       `db:"transaction_date"`
	CreatedAt       time.Time       `db:"created_at"`
}

func (r transactionRecord) toEntity() *entity.Transaction {
	tx := entity.Transaction(r)
	tx.TransactionDate = tx.TransactionDate.UTC()
	tx.CreatedAt = tx.CreatedAt.UTC()
	return &tx
}

// MovementRepo historial de traslados sobre PostgreSQL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create guarda un registro en movements.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	sql, args, err := builder().Insert("movements").Columns(movementColumns...).Values(
		m.ID, m.ItemID, m.DestItemID, m.ItemName, m.FromLocation, m.ToLocation,
		m.Quantity, m.MovementDate, m.Description,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// List devuelve el historial por fecha de traslado; ItemID filtra por origen o destino.
func (r *MovementRepo) List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	q := builder().Select(movementColumns...).From("movements")
	if filter.ItemID != "" {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"item_id": filter.ItemID},
			squirrel.Eq{"dest_item_id": filter.ItemID},
		})
	}
	q = q.OrderBy("movement_date", "seq")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}
	var recs []movementRecord
	if err := pgxscan.Select(ctx, r.q, &recs, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	list := make([]*entity.Movement, 0, len(recs))
	for _, rec := range recs {
		m := entity.Movement(rec)
		m.MovementDate = m.MovementDate.UTC()
		list = append(list, &m)
	}
	return list, nil
}

// TransactionRepo libro de ventas sobre PostgreSQL.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create agrega una venta al libro.
func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	sql, args, err := builder().Insert("transactions").Columns(transactionColumns...).Values(
		tx.ID, tx.ItemID, tx.ItemName, tx.Quantity, tx.BuyingPrice, tx.SellingPrice,
		tx.Discount, tx.DiscountType, tx.TransactionDate, tx.CreatedAt,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert transaction: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una venta; (nil, nil) si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	sql, args, err := builder().Select(transactionColumns...).From("transactions").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get transaction: %w", err)
	}
	var rec transactionRecord
	if err := pgxscan.Get(ctx, r.q, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return rec.toEntity(), nil
}

// List devuelve las ventas por transaction_date y luego orden de inserción.
func (r *TransactionRepo) List(ctx context.Context, filter entity.TransactionFilter) ([]*entity.Transaction, error) {
	q := builder().Select(transactionColumns...).From("transactions")
	if filter.ItemID != "" {
		q = q.Where(squirrel.Eq{"item_id": filter.ItemID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"transaction_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"transaction_date": *filter.To})
	}
	q = q.OrderBy("transaction_date", "seq")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list transactions: %w", err)
	}
	var recs []transactionRecord
	if err := pgxscan.Select(ctx, r.q, &recs, sql, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	list := make([]*entity.Transaction, 0, len(recs))
	for _, rec := range recs {
		list = append(list, rec.toEntity())
	}
	return list, nil
}
