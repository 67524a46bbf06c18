package postgres

import (
	"context"
	"fmt"
)

// schema crea las tablas si no existen. transactions no referencia items: borrar un ítem
// deja sus ventas históricas con item_id e item_name.
const schema = `
CREATE TABLE IF NOT EXISTS items (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	buy_price   NUMERIC(18,4) NOT NULL DEFAULT 0 CHECK (buy_price >= 0),
	sell_price  NUMERIC(18,4) NOT NULL DEFAULT 0 CHECK (sell_price >= 0),
	weight      NUMERIC(18,4) NOT NULL DEFAULT 0 CHECK (weight >= 0),
	quantity    BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	location    TEXT NOT NULL CHECK (location IN ('warehouse', 'shop')),
	expiry_date TIMESTAMPTZ NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	seq         BIGSERIAL
);
CREATE INDEX IF NOT EXISTS idx_items_stock ON items (location, lower(btrim(name)), lower(btrim(category)));

CREATE TABLE IF NOT EXISTS movements (
	id            TEXT PRIMARY KEY,
	item_id       TEXT NOT NULL,
	dest_item_id  TEXT NOT NULL,
	item_name     TEXT NOT NULL,
	from_location TEXT NOT NULL,
	to_location   TEXT NOT NULL,
	quantity      BIGINT NOT NULL CHECK (quantity > 0),
	movement_date TIMESTAMPTZ NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	seq           BIGSERIAL
);
CREATE INDEX IF NOT EXISTS idx_movements_item ON movements (item_id);

CREATE TABLE IF NOT EXISTS transactions (
	id               TEXT PRIMARY KEY,
	item_id          TEXT NOT NULL,
	item_name        TEXT NOT NULL,
	quantity         BIGINT NOT NULL CHECK (quantity > 0),
	buying_price     NUMERIC(18,4) NOT NULL,
	selling_price    NUMERIC(18,4) NOT NULL,
	discount         NUMERIC(18,4) NOT NULL DEFAULT 0,
	discount_type    TEXT NOT NULL CHECK (discount_type IN ('percentage', 'amount')),
	transaction_date TIMESTAMPTZ NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	seq              BIGSERIAL
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (transaction_date, seq);
CREATE INDEX IF NOT EXISTS idx_transactions_item ON transactions (item_id);
`

// EnsureSchema aplica el esquema (idempotente).
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
