package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/wichananm65/storefront/internal/apperror"
)

var (
	ErrInvalidQuantity = apperror.New(apperror.KindInvalidInput, fmt.Sprintf("quantity must be between 1 and %d", MaxLineQuantity))
	ErrInvalidPrice    = apperror.New(apperror.KindInvalidInput, "product is not available for sale")
	ErrProductNotFound = apperror.New(apperror.KindNotFound, "product not found")
	ErrLineNotFound    = apperror.New(apperror.KindNotFound, "product is not in the cart")
	ErrCartChanged     = apperror.New(apperror.KindConflict, "cart changed while checking out, please review it and retry")
)

// MaxLineQuantity caps the units of one product in a cart.
const MaxLineQuantity = 999

// Repository stores one cart per owner. Update runs fn as an atomic
// read-modify-write; if fn returns an error nothing is written.
type Repository interface {
	Get(ctx context.Context, ownerID int) (Cart, error)
	Update(ctx context.Context, ownerID int, fn func(*Cart) error) (Cart, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// running without a database.
type InMemoryRepository struct {
	mu    sync.Mutex
	carts map[int]Cart
}

func NewInMemoryRepository(seed []Cart) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[int]Cart, len(seed))}
	for _, c := range seed {
		r.carts[c.OwnerID] = c.Clone()
	}
	return r
}

func (r *InMemoryRepository) Get(_ context.Context, ownerID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[ownerID]
	if !ok {
		return Cart{OwnerID: ownerID, Items: []Item{}}, nil
	}
	return c.Clone(), nil
}

func (r *InMemoryRepository) Update(_ context.Context, ownerID int, fn func(*Cart) error) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.carts[ownerID]
	if !ok {
		current = Cart{OwnerID: ownerID, Items: []Item{}}
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return Cart{}, err
	}
	next.Version = current.Version + 1
	r.carts[ownerID] = next
	return next.Clone(), nil
}

// ClearIfVersion empties the cart only if nobody wrote to it since version
// was read.
func (r *InMemoryRepository) ClearIfVersion(ownerID int, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.carts[ownerID]
	if !ok || current.Version != version {
		return ErrCartChanged
	}
	r.carts[ownerID] = Cart{OwnerID: ownerID, Items: []Item{}, Version: version + 1}
	return nil
}
