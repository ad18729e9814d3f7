package order

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/storefront/internal/apperror"
)

var (
	ErrNotFound                  = apperror.New(apperror.KindNotFound, "order not found")
	ErrStatusChanged             = apperror.New(apperror.KindConflict, "order status changed concurrently, reload it and retry")
	ErrDuplicatePaymentReference = apperror.New(apperror.KindDuplicatePayment, "payment reference has already been used")
)

func illegalTransition(from, to Status) error {
	return apperror.New(apperror.KindIllegalTransition, fmt.Sprintf("cannot move order from %s to %s", from, to))
}

// Repository persists orders. Orders are created only through checkout,
// which writes them together with the cart it empties.
type Repository interface {
	FindByID(ctx context.Context, id string) (Order, error)
	FindByPaymentReference(ctx context.Context, ref string) (Order, error)
	ListByOwner(ctx context.Context, ownerID int) ([]Order, error)
	// List returns every order whose status is in statuses, or all orders
	// when statuses is empty.
	List(ctx context.Context, statuses []Status) ([]Order, error)
	// UpdateStatus moves the order from -> to, failing with ErrStatusChanged
	// if the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Order, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// running without a database.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
	byRef  map[string]string
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{
		orders: make(map[string]Order, len(seed)),
		byRef:  make(map[string]string, len(seed)),
	}
	for _, o := range seed {
		r.orders[o.ID] = o.Clone()
		r.byRef[o.PaymentReference] = o.ID
	}
	return r
}

// Insert stores a new order. It fails with ErrDuplicatePaymentReference if
// the payment reference is taken.
func (r *InMemoryRepository) Insert(o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byRef[o.PaymentReference]; taken {
		return ErrDuplicatePaymentReference
	}
	r.orders[o.ID] = o.Clone()
	r.byRef[o.PaymentReference] = o.ID
	return nil
}

func (r *InMemoryRepository) FindByID(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o.Clone(), nil
}

func (r *InMemoryRepository) FindByPaymentReference(_ context.Context, ref string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byRef[ref]
	if !ok {
		return Order{}, ErrNotFound
	}
	return r.orders[id].Clone(), nil
}

func (r *InMemoryRepository) ListByOwner(_ context.Context, ownerID int) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.OwnerID == ownerID }), nil
}

func (r *InMemoryRepository) List(_ context.Context, statuses []Status) ([]Order, error) {
	return r.filter(func(o Order) bool {
		return len(statuses) == 0 || slices.Contains(statuses, o.Status)
	}), nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, from, to Status, at time.Time) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	if o.Status != from {
		return Order{}, ErrStatusChanged
	}
	o.Status = to
	o.UpdatedAt = at
	r.orders[id] = o
	return o.Clone(), nil
}

func (r *InMemoryRepository) filter(keep func(Order) bool) []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	slices.SortFunc(out, func(a, b Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
