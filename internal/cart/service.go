package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/wichananm65/storefront/internal/apperror"
	"github.com/wichananm65/storefront/internal/product"
)

// Service orchestrates cart operations. Every method takes the owner
// explicitly.
type Service struct {
	repo    Repository
	catalog product.Catalog
	logger  *zap.Logger
}

func NewService(repo Repository, catalog product.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, catalog: catalog, logger: logger}
}

func (s *Service) Get(ctx context.Context, ownerID int) (Cart, error) {
	if ownerID <= 0 {
		return Cart{}, apperror.ErrUnauthenticated
	}
	c, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		return Cart{}, apperror.Logged(s.logger, "cart.get", err, zap.Int("owner_id", ownerID))
	}
	return c, nil
}

// AddItem adds qty units of a product. An existing line keeps the price it
// was first added at and only grows in quantity.
func (s *Service) AddItem(ctx context.Context, ownerID, productID, qty int) (Cart, error) {
	if ownerID <= 0 {
		return Cart{}, apperror.ErrUnauthenticated
	}
	if qty < 1 || qty > MaxLineQuantity {
		return Cart{}, ErrInvalidQuantity
	}

	p, err := s.catalog.GetByID(ctx, productID)
	if errors.Is(err, product.ErrNotFound) {
		return Cart{}, ErrProductNotFound
	}
	if err != nil {
		return Cart{}, apperror.Logged(s.logger, "cart.add: catalog lookup", err,
			zap.Int("owner_id", ownerID), zap.Int("product_id", productID))
	}
	if p.Price.IsNegative() {
		s.logger.Warn("catalog product has a negative price", zap.Int("product_id", p.ID), zap.String("price", p.Price.String()))
		return Cart{}, ErrInvalidPrice
	}

	c, err := s.repo.Update(ctx, ownerID, func(c *Cart) error {
		if i := c.indexOf(productID); i >= 0 {
			if c.Items[i].Quantity > MaxLineQuantity-qty {
				return ErrInvalidQuantity
			}
			c.Items[i].Quantity += qty
			return nil
		}
		c.Items = append(c.Items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  qty,
			ImageRef:  p.ImageRef,
		})
		return nil
	})
	if err != nil {
		return Cart{}, apperror.Logged(s.logger, "cart.add", err, zap.Int("owner_id", ownerID), zap.Int("product_id", productID))
	}
	return c, nil
}

// SetQuantity overwrites a line's quantity; qty <= 0 removes the line.
func (s *Service) SetQuantity(ctx context.Context, ownerID, productID, qty int) (Cart, error) {
	if ownerID <= 0 {
		return Cart{}, apperror.ErrUnauthenticated
	}
	if qty > MaxLineQuantity {
		return Cart{}, ErrInvalidQuantity
	}

	c, err := s.repo.Update(ctx, ownerID, func(c *Cart) error {
		i := c.indexOf(productID)
		if i < 0 {
			return ErrLineNotFound
		}
		if qty <= 0 {
			c.removeAt(i)
			return nil
		}
		c.Items[i].Quantity = qty
		return nil
	})
	if err != nil {
		return Cart{}, apperror.Logged(s.logger, "cart.set quantity", err, zap.Int("owner_id", ownerID), zap.Int("product_id", productID))
	}
	return c, nil
}

// RemoveItem drops one line, or every line when productID is nil. Removing a
// line that is not there is not an error.
func (s *Service) RemoveItem(ctx context.Context, ownerID int, productID *int) (Cart, error) {
	if ownerID <= 0 {
		return Cart{}, apperror.ErrUnauthenticated
	}

	c, err := s.repo.Update(ctx, ownerID, func(c *Cart) error {
		if productID == nil {
			c.Items = []Item{}
			return nil
		}
		if i := c.indexOf(*productID); i >= 0 {
			c.removeAt(i)
		}
		return nil
	})
	if err != nil {
		return Cart{}, apperror.Logged(s.logger, "cart.remove", err, zap.Int("owner_id", ownerID))
	}
	return c, nil
}
