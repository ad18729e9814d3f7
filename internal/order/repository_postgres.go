package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/wichananm65/storefront/internal/delivery"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	orderColumns = `id, owner_id, items, delivery_cost, total, delivery_type, delivery_info, payment_reference, status, created_at, updated_at`

	getOrderByIDQuery  = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	getOrderByRefQuery = `SELECT ` + orderColumns + ` FROM orders WHERE payment_reference = $1`
	listByOwnerQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC, id`
	listByStatusQuery  = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE cardinality($1::text[]) = 0 OR status = ANY($1::text[])
		ORDER BY created_at DESC, id
	`
	insertOrderQuery = `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (payment_reference) DO NOTHING
		RETURNING id
	`
	updateStatusQuery = `
		UPDATE orders
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("order.FindByID: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) FindByPaymentReference(ctx context.Context, ref string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderByRefQuery, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("order.FindByPaymentReference: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int) ([]Order, error) {
	return r.list(ctx, listByOwnerQuery, ownerID)
}

func (r *PostgresRepository) List(ctx context.Context, statuses []Status) ([]Order, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}
	return r.list(ctx, listByStatusQuery, pq.Array(raw))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("order.list: %w", err)
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("order.list scan: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order.list rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, updateStatusQuery, id, string(from), string(to), at))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrStatusChanged
	}
	if err != nil {
		return Order{}, fmt.Errorf("order.UpdateStatus: %w", err)
	}
	return o, nil
}

// CreateTx inserts o inside tx. A payment reference that is already stored
// yields ErrDuplicatePaymentReference and leaves the table untouched.
func (r *PostgresRepository) CreateTx(ctx context.Context, tx *sql.Tx, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("order.encode items: %w", err)
	}
	info, err := json.Marshal(o.DeliveryInfo)
	if err != nil {
		return fmt.Errorf("order.encode delivery info: %w", err)
	}

	var id string
	err = tx.QueryRowContext(ctx, insertOrderQuery,
		o.ID,
		o.OwnerID,
		string(items),
		o.DeliveryCost,
		o.Total,
		string(o.DeliveryType),
		string(info),
		o.PaymentReference,
		string(o.Status),
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicatePaymentReference
	}
	if err != nil {
		return fmt.Errorf("order.CreateTx: %w", err)
	}
	return nil
}

func scanOrder(s rowScanner) (Order, error) {
	var (
		o            Order
		items, info  []byte
		deliveryType string
		status       string
	)
	if err := s.Scan(
		&o.ID,
		&o.OwnerID,
		&items,
		&o.DeliveryCost,
		&o.Total,
		&deliveryType,
		&info,
		&o.PaymentReference,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return Order{}, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode items: %w", err)
	}
	if len(info) > 0 {
		if err := json.Unmarshal(info, &o.DeliveryInfo); err != nil {
			return Order{}, fmt.Errorf("decode delivery info: %w", err)
		}
	}
	o.DeliveryType = delivery.Type(deliveryType)
	o.Status = Status(status)
	return o, nil
}
