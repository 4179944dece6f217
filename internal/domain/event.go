package domain

import (
	"encoding/json"
	"time"
)

// Виды сущностей и действий в потоке событий.
const (
	KindRobot = "robot"
	KindTask  = "task"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event — каноничное wire-представление закоммиченной мутации.
// Именно этот конверт уходит каждому WebSocket-подписчику и в Redis-канал
// для синхронизации между инстансами.
type Event struct {
	Kind   string `json:"kind"`   // robot | task
	Action string `json:"action"` // created | updated | deleted

	// Origin — ID инстанса-отправителя. Релейный слушатель по нему
	// отбрасывает собственные сообщения, прилетевшие обратно из Redis.
	Origin string `json:"origin,omitempty"`

	Data json.RawMessage `json:"data"` // Состояние сущности после мутации
	At   time.Time       `json:"at"`
}
