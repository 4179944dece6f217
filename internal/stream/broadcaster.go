package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/robofleet/internal/domain"
	"github.com/xela07ax/robofleet/internal/infra"
	"github.com/xela07ax/robofleet/internal/journal"
	"go.uber.org/zap"
)

// Broadcaster раздает каждую закоммиченную мутацию:
//   - локальным WebSocket-подписчикам через Hub (снапшот, без блокировок);
//   - остальным инстансам через Redis Pub/Sub (за Circuit Breaker);
//   - в журнал мутаций (пакетная запись в Postgres).
//
// С точки зрения коммитящей операции Publish — fire-and-forget:
// медленный подписчик или лежащий Redis не задерживают ответ клиенту.
type Broadcaster struct {
	hub     *Hub
	rdb     *redis.Client     // nil — инстанс работает без релея
	journal *journal.Recorder // nil — без журнала (тесты)
	metrics *infra.Metrics
	logger  *zap.Logger

	cb *gobreaker.CircuitBreaker

	// InstanceID метит исходящие конверты, чтобы релейный слушатель
	// не доставлял собственные события второй раз.
	instanceID string
}

func NewBroadcaster(hub *Hub, rdb *redis.Client, rec *journal.Recorder, metrics *infra.Metrics, logger *zap.Logger) *Broadcaster {
	// Настройка предохранителя на публикацию в Redis
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mutation-relay",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Более 5 ошибок подряд — открываемся, перестаем дергать Redis
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Broadcaster{
		hub:        hub,
		rdb:        rdb,
		journal:    rec,
		metrics:    metrics,
		logger:     logger.Named("broadcaster"),
		cb:         cb,
		instanceID: uuid.New().String(),
	}
}

// Publish сериализует сущность в канонический конверт и раздает его.
// Возврата ошибки нет намеренно: сбой доставки — проблема подписчика,
// а не коммита.
func (b *Broadcaster) Publish(kind, action string, entity interface{}) {
	data, err := json.Marshal(entity)
	if err != nil {
		b.logger.Error("failed to marshal entity", zap.String("kind", kind), zap.Error(err))
		return
	}

	evt := domain.Event{
		Kind:   kind,
		Action: action,
		Origin: b.instanceID,
		Data:   data,
		At:     time.Now(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		b.logger.Error("failed to marshal event envelope", zap.Error(err))
		return
	}

	// 1. Локальный fan-out (неблокирующий)
	b.hub.Broadcast(payload)

	if b.metrics != nil {
		b.metrics.MutationsTotal.WithLabelValues(kind, action).Inc()
	}

	// 2. Журнал мутаций (буферизованный, с пакетной записью)
	if b.journal != nil {
		b.journal.Record(journal.Event{
			ID:       uuid.New().String(),
			Kind:     kind,
			Action:   action,
			EntityID: entityID(data),
			Payload:  data,
			At:       evt.At,
		})
	}

	// 3. Релей в другие инстансы — в отдельной горутине, чтобы
	// таймаут Redis не просочился в латентность коммита
	if b.rdb != nil {
		go b.relayOut(payload)
	}
}

// relayOut публикует конверт в общий Redis-канал через предохранитель.
func (b *Broadcaster) relayOut(payload []byte) {
	_, err := b.cb.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return nil, b.rdb.Publish(ctx, infra.RedisChanMutations, payload).Err()
	})
	if err != nil {
		// Событие уже доставлено локальным подписчикам и записано в журнал;
		// потеря релея — допустимая деградация, не ошибка коммита
		b.logger.Warn("relay publish failed", zap.Error(err))
	}
}

// entityID достает id из уже сериализованной сущности для журнала.
func entityID(data []byte) string {
	var envelope struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(data, &envelope)
	return envelope.ID
}
