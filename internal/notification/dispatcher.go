package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/storefront/internal/metrics"
	"github.com/wichananm65/storefront/internal/order"
)

// Sender delivers one event to the outside world.
type Sender interface {
	Send(ctx context.Context, ev order.StatusEvent) error
}

// Dispatcher queues status events and hands them to a Sender on a single
// background worker. Notify never waits for delivery and delivery failures
// never reach the caller.
type Dispatcher struct {
	sender  Sender
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan order.StatusEvent
	done   chan struct{}
}

func NewDispatcher(sender Sender, queueSize int, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		metrics: m,
		timeout: timeout,
		queue:   make(chan order.StatusEvent, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues ev and reports whether it was accepted. A full queue or a
// closed dispatcher drops the event.
func (d *Dispatcher) Notify(_ context.Context, ev order.StatusEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.metrics.Notification("dropped")
		return false
	}

	select {
	case d.queue <- ev:
		d.metrics.Notification("queued")
		return true
	default:
		d.logger.Warn("notification queue full, dropping event",
			zap.String("order_id", ev.OrderID),
			zap.String("status", string(ev.NewStatus)),
		)
		d.metrics.Notification("dropped")
		return false
	}
}

// Close stops accepting events, waits for queued ones to be sent and stops
// the worker. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev order.StatusEvent) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.sender.Send(ctx, ev); err != nil {
		d.logger.Error("order notification failed",
			zap.String("order_id", ev.OrderID),
			zap.String("status", string(ev.NewStatus)),
			zap.Error(err),
		)
		d.metrics.Notification("failed")
		return
	}
	d.metrics.Notification("sent")
}
