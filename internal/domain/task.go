package domain

import "time"

// Статусы задач. Набор открытый: поле хранит произвольную строку,
// константы ниже — только значения по умолчанию.
const (
	TaskStatusPending   = "Pending"
	TaskStatusCompleted = "completed"
)

// Task — единица работы, назначенная ровно одному роботу.
// Инвариант: RobotID ссылается на существующего робота в момент коммита.
type Task struct {
	ID          string `json:"id"` // UUID
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	RobotID     string `json:"robot_id"` // FK на robots

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskPatch — частичное обновление задачи.
type TaskPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil
}

// ListOptions — пагинация и сортировка для выборок.
// Page начинается с 1, как в публичном API.
type ListOptions struct {
	Page  int
	Limit int
	Order string // "asc" | "desc"
}

// Normalize приводит опции к безопасным значениям по умолчанию.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 || o.Limit > 100 {
		o.Limit = 10
	}
	if o.Order != "desc" {
		o.Order = "asc"
	}
	return o
}

// Offset вычисляет смещение для SQL из номера страницы.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}
