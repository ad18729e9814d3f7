package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wichananm65/storefront/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery       = `SELECT items, version FROM carts WHERE owner_id = $1`
	ensureCartQuery    = `INSERT INTO carts (owner_id) VALUES ($1) ON CONFLICT (owner_id) DO NOTHING`
	lockCartQuery      = `SELECT items, version FROM carts WHERE owner_id = $1 FOR UPDATE`
	updateCartQuery    = `UPDATE carts SET items = $2, version = version + 1, updated_at = now() WHERE owner_id = $1 RETURNING version`
	clearIfVersionStmt = `UPDATE carts SET items = '[]', version = version + 1, updated_at = now() WHERE owner_id = $1 AND version = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID int) (Cart, error) {
	c := Cart{OwnerID: ownerID, Items: []Item{}}

	var raw []byte
	err := r.db.QueryRowContext(ctx, getCartQuery, ownerID).Scan(&raw, &c.Version)
	if err == sql.ErrNoRows {
		return c, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("cart.Get: %w", err)
	}
	if err := decodeItems(raw, &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID int, fn func(*Cart) error) (Cart, error) {
	var out Cart
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureCartQuery, ownerID); err != nil {
			return fmt.Errorf("cart.ensure: %w", err)
		}

		c := Cart{OwnerID: ownerID, Items: []Item{}}
		var raw []byte
		if err := tx.QueryRowContext(ctx, lockCartQuery, ownerID).Scan(&raw, &c.Version); err != nil {
			return fmt.Errorf("cart.lock: %w", err)
		}
		if err := decodeItems(raw, &c); err != nil {
			return err
		}

		if err := fn(&c); err != nil {
			return err
		}

		encoded, err := json.Marshal(c.Items)
		if err != nil {
			return fmt.Errorf("cart.encode: %w", err)
		}
		if err := tx.QueryRowContext(ctx, updateCartQuery, ownerID, string(encoded)).Scan(&c.Version); err != nil {
			return fmt.Errorf("cart.update: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

// ClearTx empties the cart inside tx, failing with ErrCartChanged when the
// stored version no longer matches.
func (r *PostgresRepository) ClearTx(ctx context.Context, tx *sql.Tx, ownerID int, version int64) error {
	res, err := tx.ExecContext(ctx, clearIfVersionStmt, ownerID, version)
	if err != nil {
		return fmt.Errorf("cart.clear: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cart.clear: %w", err)
	}
	if n == 0 {
		return ErrCartChanged
	}
	return nil
}

func decodeItems(raw []byte, c *Cart) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return fmt.Errorf("cart.decode: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return nil
}
