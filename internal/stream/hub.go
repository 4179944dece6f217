package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/xela07ax/robofleet/internal/infra"
	"go.uber.org/zap"
)

// Conn — минимальный push-контракт транспорта подписчика.
// Его реализует *websocket.Conn; в тестах достаточно фейка.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscriber — живое realtime-подключение. Эфемерный, не персистится:
// создается на connect, уничтожается на disconnect или при ошибке доставки.
type Subscriber struct {
	ID   string
	conn Conn

	send chan []byte   // Буфер исходящих; переполнение = медленный потребитель
	done chan struct{} // Закрывается ровно один раз при отцеплении
	once sync.Once

	hub *Hub
}

// Hub — реестр подписчиков. Единственная структура, которую конкурентно
// мутируют многие задачи (connect/disconnect) и читает брокастер.
// Итерация всегда идет по снапшоту: чтение не держит писателей дольше,
// чем копирование среза указателей.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber

	sendBuf      int
	pingInterval time.Duration
	pongWait     time.Duration
	logger       *zap.Logger
	metrics      *infra.Metrics
}

func NewHub(logger *zap.Logger, metrics *infra.Metrics, cfg infra.StreamConfig) *Hub {
	sendBuf := cfg.SendBuffer
	if sendBuf <= 0 {
		sendBuf = 256
	}
	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	pingInterval := cfg.PingInterval
	// Ping обязан уходить чаще, чем истекает pong-дедлайн
	if pingInterval <= 0 || pingInterval >= pongWait {
		pingInterval = pongWait * 9 / 10
	}
	return &Hub{
		subs:         make(map[string]*Subscriber),
		sendBuf:      sendBuf,
		pingInterval: pingInterval,
		pongWait:     pongWait,
		logger:       logger.Named("hub"),
		metrics:      metrics,
	}
}

// Attach регистрирует подключение и запускает его writer-горутину.
func (h *Hub) Attach(conn Conn) *Subscriber {
	sub := &Subscriber{
		ID:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, h.sendBuf),
		done: make(chan struct{}),
		hub:  h,
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	total := len(h.subs)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.Subscribers.Set(float64(total))
	}
	h.logger.Info("subscriber attached", zap.String("id", sub.ID), zap.Int("total", total))

	go sub.writePump()
	return sub
}

// Detach снимает подписчика с учета и закрывает транспорт. Идемпотентен:
// конкурентные вызовы из readPump, writePump и брокастера безопасны.
func (h *Hub) Detach(sub *Subscriber) {
	sub.once.Do(func() {
		h.mu.Lock()
		delete(h.subs, sub.ID)
		total := len(h.subs)
		h.mu.Unlock()

		close(sub.done)
		sub.conn.Close()

		if h.metrics != nil {
			h.metrics.Subscribers.Set(float64(total))
		}
		h.logger.Info("subscriber detached", zap.String("id", sub.ID), zap.Int("total", total))
	})
}

// snapshot возвращает point-in-time копию текущего множества подписчиков.
func (h *Hub) snapshot() []*Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := make([]*Subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	return subs
}

// Broadcast раздает payload каждому подписчику из снапшота независимо.
// Отправка неблокирующая: полный буфер означает, что потребитель не
// вычитывает — такого сбрасываем сразу, не задерживая остальных и продюсера.
func (h *Hub) Broadcast(data []byte) {
	for _, sub := range h.snapshot() {
		select {
		case sub.send <- data:
			// "delivered" засчитывает writePump после успешной записи
			// в транспорт; постановка в буфер — еще не доставка
		default:
			h.logger.Warn("subscriber send buffer full, dropping", zap.String("id", sub.ID))
			if h.metrics != nil {
				h.metrics.DeliveriesTotal.WithLabelValues("dropped").Inc()
			}
			go h.Detach(sub)
		}
	}
}

// Count возвращает число живых подписчиков.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// writePump перекладывает сообщения из буфера в транспорт и держит
// соединение живым периодическими ping-фреймами. Ошибка записи =
// DeliveryFailure: подписчик отцепляется, ошибка никуда не пропагируется.
func (sub *Subscriber) writePump() {
	ticker := time.NewTicker(sub.hub.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-sub.send:
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				sub.hub.logger.Warn("delivery failed, dropping subscriber",
					zap.String("id", sub.ID),
					zap.Error(err))
				if sub.hub.metrics != nil {
					sub.hub.metrics.DeliveriesTotal.WithLabelValues("dropped").Inc()
				}
				sub.hub.Detach(sub)
				return
			}
			if sub.hub.metrics != nil {
				sub.hub.metrics.DeliveriesTotal.WithLabelValues("delivered").Inc()
			}
		case <-ticker.C:
			// Молчащий подписчик — норма; без ping его read-дедлайн
			// на той стороне и наш pong-дедлайн истекли бы впустую
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sub.hub.Detach(sub)
				return
			}
		case <-sub.done:
			return
		}
	}
}
