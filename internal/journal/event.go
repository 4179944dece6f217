package journal

import (
	"encoding/json"
	"time"
)

// Event — запись журнала о закоммиченной мутации реестра.
// Журнал фиксирует сам факт мутации, а не состояние доставки
// подписчикам: недоставленные брокасты сюда не возвращаются.
type Event struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`   // robot | task
	Action   string          `json:"action"` // created | updated | deleted
	EntityID string          `json:"entity_id"`
	Payload  json.RawMessage `json:"payload"` // Состояние сущности после мутации
	At       time.Time       `json:"at"`
}
