package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/storefront/internal/apperror"
	"github.com/wichananm65/storefront/internal/metrics"
)

// Service provides order reads and the administrative status workflow.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, logger *zap.Logger, m *metrics.Metrics) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get returns an order. Non-admin callers get Forbidden both for orders they
// do not own and for ids that do not exist.
func (s *Service) Get(ctx context.Context, id string, ownerID int, admin bool) (Order, error) {
	if !admin && ownerID <= 0 {
		return Order{}, apperror.ErrUnauthenticated
	}

	o, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound) && !admin:
		return Order{}, apperror.ErrForbidden
	case err != nil:
		return Order{}, apperror.Logged(s.logger, "order.get", err, zap.String("order_id", id), zap.Int("owner_id", ownerID))
	case !admin && o.OwnerID != ownerID:
		return Order{}, apperror.ErrForbidden
	}
	return o, nil
}

func (s *Service) ListForOwner(ctx context.Context, ownerID int) ([]Order, error) {
	if ownerID <= 0 {
		return nil, apperror.ErrUnauthenticated
	}
	orders, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Logged(s.logger, "order.list for owner", err, zap.Int("owner_id", ownerID))
	}
	return orders, nil
}

func (s *Service) List(ctx context.Context, statuses []Status) ([]Order, error) {
	orders, err := s.repo.List(ctx, statuses)
	if err != nil {
		return nil, apperror.Logged(s.logger, "order.list", err)
	}
	return orders, nil
}

// UpdateStatus moves an order to next. Setting the current status again is a
// no-op that sends nothing. When expected is set the change only applies if
// the order is still in that status. The returned bool reports whether a
// notification was accepted for delivery.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status, expected *Status) (Order, bool, error) {
	parsed, ok := ParseStatus(string(next))
	if !ok {
		return Order{}, false, UnknownStatusError(string(next))
	}
	next = parsed
	if expected != nil {
		want, ok := ParseStatus(string(*expected))
		if !ok {
			return Order{}, false, UnknownStatusError(string(*expected))
		}
		expected = &want
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Order{}, false, apperror.Logged(s.logger, "order.update status: load", err, zap.String("order_id", id))
	}

	if expected != nil && *expected != current.Status {
		return Order{}, false, ErrStatusChanged
	}
	if current.Status == next {
		return current, false, nil
	}
	if !current.Status.CanTransitionTo(next) {
		return Order{}, false, illegalTransition(current.Status, next)
	}

	at := s.now()
	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, next, at)
	if err != nil {
		if !errors.Is(err, ErrStatusChanged) {
			s.logger.Error("order status update failed", zap.String("order_id", id), zap.Error(err))
		}
		return Order{}, false, apperror.OrPersistence(err)
	}

	s.metrics.StatusTransition(string(current.Status), string(next))
	s.logger.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)),
	)

	sent := s.notifier.Notify(ctx, StatusEvent{
		OrderID:        updated.ID,
		OwnerID:        updated.OwnerID,
		PreviousStatus: current.Status,
		NewStatus:      next,
		OccurredAt:     at,
	})
	return updated, sent, nil
}

// UnknownStatusError reports a status value outside the lifecycle.
func UnknownStatusError(raw string) error {
	return apperror.Invalid([]apperror.Issue{{Field: "status", Message: "unknown status \"" + raw + "\""}})
}
