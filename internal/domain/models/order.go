package models

// Статусы заказа
const (
	StatusPending   = "pending"
	StatusInProcess = "in-process"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// ValidStatus проверяет, входит ли значение в допустимый набор статусов.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProcess, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderLine — позиция заказа: ссылка на товар и количество.
type OrderLine struct {
	ProductID int64 `json:"productoId"`
	Quantity  int   `json:"cantidad"`
}

// Order представляет заказ пользователя.
// Date хранит календарную дату создания в формате ISO (YYYY-MM-DD).
type Order struct {
	ID     int64       `json:"id"`
	UserID int64       `json:"usuarioId"`
	Lines  []OrderLine `json:"productos"`
	Date   string      `json:"fecha"`
	Status string      `json:"estado"`
}
