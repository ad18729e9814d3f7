package checkout

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/database"
	"github.com/wichananm65/storefront/internal/order"
)

// MemoryStore places orders against the in-memory repositories. All order
// inserts must go through it so the payment reference check and the insert
// cannot interleave.
type MemoryStore struct {
	mu     sync.Mutex
	carts  *cart.InMemoryRepository
	orders *order.InMemoryRepository
}

func NewMemoryStore(carts *cart.InMemoryRepository, orders *order.InMemoryRepository) *MemoryStore {
	return &MemoryStore{carts: carts, orders: orders}
}

func (s *MemoryStore) PlaceOrder(ctx context.Context, o order.Order, cartVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.orders.FindByPaymentReference(ctx, o.PaymentReference)
	if err == nil {
		return order.ErrDuplicatePaymentReference
	}
	if !errors.Is(err, order.ErrNotFound) {
		return err
	}

	if err := s.carts.ClearIfVersion(o.OwnerID, cartVersion); err != nil {
		return err
	}
	return s.orders.Insert(o)
}

// PostgresStore inserts the order and clears the cart in one transaction.
type PostgresStore struct {
	db     *sql.DB
	carts  *cart.PostgresRepository
	orders *order.PostgresRepository
}

func NewPostgresStore(db *sql.DB, carts *cart.PostgresRepository, orders *order.PostgresRepository) *PostgresStore {
	return &PostgresStore{db: db, carts: carts, orders: orders}
}

func (s *PostgresStore) PlaceOrder(ctx context.Context, o order.Order, cartVersion int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.orders.CreateTx(ctx, tx, o); err != nil {
			return err
		}
		return s.carts.ClearTx(ctx, tx, o.OwnerID, cartVersion)
	})
}
