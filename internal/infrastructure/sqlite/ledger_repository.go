package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
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

type movementRow struct {
	ID           string `db:"id"`
	ItemID       string `db:"item_id"`
	DestItemID   string `db:"dest_item_id"`
	ItemName     string `db:"item_name"`
	FromLocation string `db:"from_location"`
	ToLocation   string `db:"to_location"`
	Quantity     int64  `db:"quantity"`
	MovementDate string `db:"movement_date"`
	Description  string `db:"description"`
}

type transactionRow struct {
	ID              string          `db:"id"`
	ItemID          string          `db:"item_id"`
	ItemName        string          `db:"item_name"`
	Quantity        int64           `db:"quantity"`
	BuyingPrice     decimal.Decimal `db:"buying_price"`
	SellingPrice    decimal.Decimal `db:"selling_price"`
	Discount        decimal.Decimal `db:"discount"`
	DiscountType    string          `db:"discount_type"`
	TransactionDate string          `db:"transaction_date"`
	CreatedAt       string          `db:"created_at"`
}

func (r transactionRow) toEntity() (*entity.Transaction, error) {
	tx := &entity.Transaction{
		ID:           r.ID,
		ItemID:       r.ItemID,
		ItemName:     r.ItemName,
		Quantity:     r.Quantity,
		BuyingPrice:  r.BuyingPrice,
		SellingPrice: r.SellingPrice,
		Discount:     r.Discount,
		DiscountType: r.DiscountType,
	}
	var err error
	if tx.TransactionDate, err = parseTime(r.TransactionDate); err != nil {
		return nil, err
	}
	if tx.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, err
	}
	return tx, nil
}

func paginate(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		// SQLite exige LIMIT para usar OFFSET
		if limit <= 0 {
			q = q.Limit(uint64(1<<63 - 1))
		}
		q = q.Offset(uint64(offset))
	}
	return q
}

// MovementRepo historial de traslados sobre SQLite.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar db o tx.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create guarda un registro en movements.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query, args, err := builder().Insert("movements").Columns(movementColumns...).Values(
		m.ID, m.ItemID, m.DestItemID, m.ItemName, m.FromLocation, m.ToLocation,
		m.Quantity, formatTime(m.MovementDate), m.Description,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
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
	q = paginate(q.OrderBy("movement_date", "rowid"), filter.Limit, filter.Offset)
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}
	var rows []movementRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	list := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		date, err := parseTime(row.MovementDate)
		if err != nil {
			return nil, err
		}
		list = append(list, &entity.Movement{
			ID:           row.ID,
			ItemID:       row.ItemID,
			DestItemID:   row.DestItemID,
			ItemName:     row.ItemName,
			FromLocation: row.FromLocation,
			ToLocation:   row.ToLocation,
			Quantity:     row.Quantity,
			MovementDate: date,
			Description:  row.Description,
		})
	}
	return list, nil
}

// TransactionRepo libro de ventas sobre SQLite.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar db o tx.
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create agrega una venta al libro.
func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	query, args, err := builder().Insert("transactions").Columns(transactionColumns...).Values(
		tx.ID, tx.ItemID, tx.ItemName, tx.Quantity, tx.BuyingPrice, tx.SellingPrice,
		tx.Discount, tx.DiscountType, formatTime(tx.TransactionDate), formatTime(tx.CreatedAt),
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert transaction: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una venta; (nil, nil) si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	query, args, err := builder().Select(transactionColumns...).From("transactions").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get transaction: %w", err)
	}
	var row transactionRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return row.toEntity()
}

// List devuelve las ventas por transaction_date y luego orden de inserción.
func (r *TransactionRepo) List(ctx context.Context, filter entity.TransactionFilter) ([]*entity.Transaction, error) {
	q := builder().Select(transactionColumns...).From("transactions")
	if filter.ItemID != "" {
		q = q.Where(squirrel.Eq{"item_id": filter.ItemID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"transaction_date": formatTime(*filter.From)})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"transaction_date": formatTime(*filter.To)})
	}
	q = paginate(q.OrderBy("transaction_date", "rowid"), filter.Limit, filter.Offset)
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list transactions: %w", err)
	}
	var rows []transactionRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	list := make([]*entity.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		list = append(list, tx)
	}
	return list, nil
}
