package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema for the three record collections. No foreign keys: referential
// integrity (order.product_id existing) is enforced at write time by the
// order placement path, and orders must survive product deletion.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'buyer',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    category      TEXT NOT NULL,
    quantity      INT NOT NULL CHECK (quantity >= 0),
    reorder_level INT NOT NULL CHECK (reorder_level >= 0),
    price         DOUBLE PRECISION NOT NULL,
    last_updated  TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
    id           UUID PRIMARY KEY,
    product_id   UUID NOT NULL,
    product_name TEXT NOT NULL,
    quantity     INT NOT NULL CHECK (quantity > 0),
    order_date   TEXT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'confirmed',
    total_price  DOUBLE PRECISION NOT NULL,
    buyer_id     UUID,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at);
CREATE INDEX IF NOT EXISTS idx_orders_buyer_id ON orders (buyer_id);
`

// Migrate applies the schema. Safe to run on every start.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schemaSQL)
	return err
}
