package database

import (
	"context"
	"database/sql"
	"fmt"
)

// statements are applied in order on every start and must stay idempotent.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		"userId" SERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		"firstName" TEXT,
		"lastName" TEXT,
		"createAt" TEXT,
		"updateAt" TEXT
	)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS role TEXT NOT NULL DEFAULT 'customer'`,
	`CREATE TABLE IF NOT EXISTS product (
		product_id SERIAL PRIMARY KEY,
		product_name TEXT,
		product_name_en TEXT,
		category TEXT,
		product_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		score INT,
		product_desc TEXT,
		product_desc_en TEXT,
		product_pic TEXT,
		product_pic_second TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	)`,
	// NULL stock means the product is not stock-tracked.
	`ALTER TABLE product ADD COLUMN IF NOT EXISTS stock INT`,
	`CREATE TABLE IF NOT EXISTS carts (
		owner_id INT PRIMARY KEY,
		items JSONB NOT NULL DEFAULT '[]',
		version BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		owner_id INT NOT NULL,
		items JSONB NOT NULL,
		delivery_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
		total NUMERIC(12,2) NOT NULL,
		delivery_type TEXT NOT NULL,
		delivery_info JSONB NOT NULL DEFAULT '{}',
		payment_reference TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('processing','shipped','delivered','completed','cancelled','failed')),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT orders_payment_reference_key UNIQUE (payment_reference)
	)`,
	`CREATE INDEX IF NOT EXISTS orders_owner_created_idx ON orders (owner_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status)`,
}

// Migrate creates or upgrades the tables this service owns.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
