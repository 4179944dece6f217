package stream

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/xela07ax/robofleet/internal/infra"
	"go.uber.org/zap"
)

// fakeConn собирает записанные сообщения; failAfter > 0 включает
// отказ транспорта после N успешных записей.
type fakeConn struct {
	mu        sync.Mutex
	writes    [][]byte
	pings     int
	failAfter int
	failPings bool
	closed    bool

	unblock chan struct{} // если задан, запись ждет сигнала
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if c.unblock != nil {
		<-c.unblock
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if messageType == websocket.PingMessage {
		if c.failPings {
			return errors.New("broken pipe")
		}
		c.pings++
		return nil
	}
	if c.failAfter > 0 && len(c.writes) >= c.failAfter {
		return errors.New("broken pipe")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.writes = append(c.writes, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) written() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) pingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pings
}

func newTestHub() *Hub {
	return NewHub(zap.NewNop(), nil, infra.StreamConfig{SendBuffer: 8})
}

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := newTestHub()

	conns := []*fakeConn{{}, {}, {}}
	for _, c := range conns {
		hub.Attach(c)
	}
	assert.Equal(t, 3, hub.Count())

	hub.Broadcast([]byte(`{"kind":"robot"}`))

	for _, c := range conns {
		assert.Eventually(t, func() bool { return c.written() == 1 },
			time.Second, 10*time.Millisecond)
	}
}

func TestHubSendsKeepalivePings(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, infra.StreamConfig{
		SendBuffer:   8,
		PingInterval: 10 * time.Millisecond,
		PongWait:     50 * time.Millisecond,
	})
	conn := &fakeConn{}
	hub.Attach(conn)

	// Писать подписчику нечего, но ping-фреймы идут сами по себе,
	// и он остается на учете
	assert.Eventually(t, func() bool { return conn.pingCount() >= 3 },
		time.Second, time.Millisecond)
	assert.Equal(t, 1, hub.Count())
}

func TestHubDropsSubscriberOnPingError(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, infra.StreamConfig{
		SendBuffer:   8,
		PingInterval: 10 * time.Millisecond,
		PongWait:     50 * time.Millisecond,
	})
	conn := &fakeConn{failPings: true}
	hub.Attach(conn)

	// Неотправляемый ping означает мертвый транспорт
	assert.Eventually(t, func() bool { return hub.Count() == 0 },
		time.Second, time.Millisecond)
	assert.True(t, conn.isClosed())
}

func TestHubDetachIsIdempotent(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}
	sub := hub.Attach(conn)

	hub.Detach(sub)
	hub.Detach(sub)

	assert.Equal(t, 0, hub.Count())
	assert.True(t, conn.isClosed())
}

func TestHubDropsSubscriberOnWriteError(t *testing.T) {
	hub := newTestHub()
	healthy := &fakeConn{}
	broken := &fakeConn{failAfter: 1}

	hub.Attach(healthy)
	hub.Attach(broken)

	hub.Broadcast([]byte("one"))
	hub.Broadcast([]byte("two"))

	// Сломанный транспорт отцепляется, здоровый продолжает получать
	assert.Eventually(t, func() bool { return hub.Count() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return healthy.written() == 2 },
		time.Second, 10*time.Millisecond)
	assert.True(t, broken.isClosed())
}

func TestHubCountsDeliveryAfterTransportWrite(t *testing.T) {
	metrics := infra.NewMetrics(nil)
	hub := NewHub(zap.NewNop(), metrics, infra.StreamConfig{SendBuffer: 8})
	conn := &fakeConn{unblock: make(chan struct{})}
	hub.Attach(conn)

	hub.Broadcast([]byte("pending"))

	// Сообщение стоит в буфере, запись в транспорт еще не прошла —
	// доставка не засчитана
	time.Sleep(50 * time.Millisecond)
	delivered := metrics.DeliveriesTotal.WithLabelValues("delivered")
	assert.Equal(t, 0.0, testutil.ToFloat64(delivered))

	close(conn.unblock)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(delivered) == 1.0
	}, time.Second, 10*time.Millisecond)
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, infra.StreamConfig{SendBuffer: 1})
	conn := &fakeConn{unblock: make(chan struct{})}
	sub := hub.Attach(conn)

	// Writer висит в WriteMessage, буфер в 1 слот забивается,
	// третья отправка переполняет — подписчик сбрасывается
	sub.send <- []byte("in-flight")
	assert.Eventually(t, func() bool { return len(sub.send) == 0 },
		time.Second, time.Millisecond)

	hub.Broadcast([]byte("buffered"))
	hub.Broadcast([]byte("overflow"))

	assert.Eventually(t, func() bool { return hub.Count() == 0 },
		time.Second, 10*time.Millisecond)
	close(conn.unblock)
}
