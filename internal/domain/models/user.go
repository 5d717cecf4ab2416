package models

// Роли пользователей
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User представляет пользователя магазина.
// Хэш пароля никогда не сериализуется в ответах API.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Role     string `json:"rol"`
	Active   bool   `json:"activo"`
	PassHash []byte `json:"-"`
}
