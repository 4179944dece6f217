package domain

import "time"

// User — владелец роботов. Вне ядра реестра используется только
// как источник FK при генерации роботов и для выдачи токенов.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"` // Уникален
	Email        string    `json:"email"`    // Уникален
	PasswordHash string    `json:"-"`        // bcrypt, наружу не отдаем
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}
