package domain

import "time"

// Robot — зарегистрированный робот в реестре флота.
// Инвариант: Email уникален среди всех роботов (точное совпадение, case-sensitive).
type Robot struct {
	ID     string `json:"id"`      // UUID
	Name   string `json:"name"`    // Человекочитаемое имя (например, "Robot-<uuid>")
	Email  string `json:"email"`   // Глобально уникальный адрес
	UserID string `json:"user_id"` // Владелец (FK на users)

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RobotPatch — частичное обновление. nil-поле означает «оставить как есть».
type RobotPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Empty сообщает, есть ли вообще что обновлять.
func (p RobotPatch) Empty() bool {
	return p.Name == nil && p.Email == nil
}
