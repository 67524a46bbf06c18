// Package sqlite implementa los puertos de persistencia sobre SQLite (modernc.org/sqlite, sin cgo).
// Se usa con STORAGE_DRIVER=sqlite y en los tests de adaptadores con ":memory:".
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // driver "sqlite"
)

// timeLayout ancho fijo en UTC: el orden lexicográfico coincide con el cronológico.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Querier abstrae *sqlx.DB y *sqlx.Tx.
type Querier interface {
	sqlx.ExtContext
}

// Open abre la base, limita a una conexión (un solo escritor; ":memory:" compartida) y aplica el esquema.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS items(
  id          TEXT PRIMARY KEY,
  name        TEXT NOT NULL,
  category    TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  buy_price   TEXT NOT NULL DEFAULT '0',
  sell_price  TEXT NOT NULL DEFAULT '0',
  weight      TEXT NOT NULL DEFAULT '0',
  quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  location    TEXT NOT NULL CHECK (location IN ('warehouse','shop')),
  expiry_date TEXT NULL,
  created_at  TEXT NOT NULL,
  updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_stock ON items(location, LOWER(TRIM(name)), LOWER(TRIM(category)));
CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);

CREATE TABLE IF NOT EXISTS movements(
  id            TEXT PRIMARY KEY,
  item_id       TEXT NOT NULL,
  dest_item_id  TEXT NOT NULL,
  item_name     TEXT NOT NULL,
  from_location TEXT NOT NULL,
  to_location   TEXT NOT NULL,
  quantity      INTEGER NOT NULL CHECK (quantity > 0),
  movement_date TEXT NOT NULL,
  description   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_movements_item ON movements(item_id);

CREATE TABLE IF NOT EXISTS transactions(
  id               TEXT PRIMARY KEY,
  item_id          TEXT NOT NULL,
  item_name        TEXT NOT NULL,
  quantity         INTEGER NOT NULL CHECK (quantity > 0),
  buying_price     TEXT NOT NULL,
  selling_price    TEXT NOT NULL,
  discount         TEXT NOT NULL DEFAULT '0',
  discount_type    TEXT NOT NULL CHECK (discount_type IN ('percentage','amount')),
  transaction_date TEXT NOT NULL,
  created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_transactions_item ON transactions(item_id);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("aplicar esquema sqlite: %w", err)
	}
	return nil
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida en sqlite %q: %w", s, err)
	}
	return t.UTC(), nil
}
