package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xela07ax/robofleet/internal/domain"
	"github.com/xela07ax/robofleet/internal/infra"
	"go.uber.org/zap"
)

// RunRelay — "живучий" цикл подписки на Redis-канал мутаций других
// инстансов. Обрабатывает переподключения и фильтрует собственные события.
// Блокируется до отмены контекста; запускать в отдельной горутине.
func (b *Broadcaster) RunRelay(ctx context.Context) {
	if b.rdb == nil {
		return
	}

	for {
		pubsub := b.rdb.Subscribe(ctx, infra.RedisChanMutations)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			b.logger.Error("failed to subscribe to mutation channel", zap.Error(err))
			pubsub.Close()

			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		b.logger.Info("mutation relay listener started", zap.String("chan", infra.RedisChanMutations))
		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}

				var evt domain.Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.logger.Error("invalid relay payload", zap.Error(err))
					continue
				}

				// Свое же событие, вернувшееся из Redis — уже доставлено локально
				if evt.Origin == b.instanceID {
					continue
				}

				b.hub.Broadcast([]byte(msg.Payload))
			}
		}

		pubsub.Close()

		// Пауза перед переподпиской, но не ценой задержки shutdown
		select {
		case <-ctx.Done():
			return
		case <-time.After(1 * time.Second):
		}
	}
}
