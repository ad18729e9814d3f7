package product

import (
	"context"
	"sync"

	"github.com/wichananm65/storefront/internal/apperror"
)

var ErrNotFound = apperror.New(apperror.KindNotFound, "product not found")

// Catalog is the read-only product lookup used by the cart and checkout.
// Product maintenance happens elsewhere.
type Catalog interface {
	GetByID(ctx context.Context, id int) (Product, error)
}

// InMemoryCatalog is a simple in-memory implementation useful for tests and
// running without a database.
type InMemoryCatalog struct {
	mu      sync.RWMutex
	storage map[int]Product
}

func NewInMemoryCatalog(seed []Product) *InMemoryCatalog {
	c := &InMemoryCatalog{storage: make(map[int]Product, len(seed))}
	for _, p := range seed {
		c.storage[p.ID] = p
	}
	return c
}

func (c *InMemoryCatalog) GetByID(_ context.Context, id int) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.storage[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Put replaces a product. It exists for seeding and tests; the service
// itself never writes to the catalog.
func (c *InMemoryCatalog) Put(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storage[p.ID] = p
}
