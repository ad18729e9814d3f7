package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/wichananm65/storefront/internal/metrics"
	"github.com/wichananm65/storefront/internal/order"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []order.StatusEvent
	err     error
	release chan struct{}
}

func (s *fakeSender) Send(ctx context.Context, ev order.StatusEvent) error {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ev)
	return s.err
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func event(id string) order.StatusEvent {
	return order.StatusEvent{
		OrderID:        id,
		OwnerID:        1,
		PreviousStatus: order.StatusProcessing,
		NewStatus:      order.StatusShipped,
		OccurredAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestDispatcher_DeliversQueuedEvents(t *testing.T) {
	sender := &fakeSender{}
	m := metrics.New(prometheus.NewRegistry())
	d := NewDispatcher(sender, 8, time.Second, zaptest.NewLogger(t), m)

	for _, id := range []string{"a", "b", "c"} {
		assert.True(t, d.Notify(context.Background(), event(id)))
	}
	d.Close()

	require.Equal(t, 3, sender.count())
	assert.Equal(t, "a", sender.sent[0].OrderID)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Notifications.WithLabelValues("sent")))
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	sender := &fakeSender{release: make(chan struct{})}
	m := metrics.New(prometheus.NewRegistry())
	d := NewDispatcher(sender, 1, time.Second, zaptest.NewLogger(t), m)

	// one event in the worker, one in the queue, the rest must be dropped
	accepted := 0
	for i := range 10 {
		if d.Notify(context.Background(), event(string(rune('a'+i)))) {
			accepted++
		}
	}
	assert.LessOrEqual(t, accepted, 2)
	assert.GreaterOrEqual(t, accepted, 1)
	assert.Equal(t, float64(10-accepted), testutil.ToFloat64(m.Notifications.WithLabelValues("dropped")))

	close(sender.release)
	d.Close()
	assert.Equal(t, accepted, sender.count())
}

func TestDispatcher_SenderFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	m := metrics.New(prometheus.NewRegistry())
	d := NewDispatcher(sender, 4, time.Second, zaptest.NewLogger(t), m)

	assert.True(t, d.Notify(context.Background(), event("a")))
	d.Close()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("failed")))
}

func TestDispatcher_NotifyAfterClose(t *testing.T) {
	d := NewDispatcher(&fakeSender{}, 4, time.Second, nil, nil)
	d.Close()
	d.Close()

	assert.False(t, d.Notify(context.Background(), event("late")))
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSender(t *testing.T) {
	w := &fakeWriter{}
	s := &KafkaSender{writer: w}

	require.NoError(t, s.Send(context.Background(), event("order-1")))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("order-1"), w.msgs[0].Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "order.status_changed", got["type"])
	assert.Equal(t, "order-1", got["orderId"])
	assert.Equal(t, "shipped", got["newStatus"])

	w.err = errors.New("leader not available")
	assert.Error(t, s.Send(context.Background(), event("order-2")))

	require.NoError(t, s.Close())
	assert.True(t, w.closed)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(zaptest.NewLogger(t)).Send(context.Background(), event("a")))
}
