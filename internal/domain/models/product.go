package models

// Фиксированный набор категорий каталога
const (
	CategoryLaptop     = "Laptop"
	CategoryTablet     = "Tablet"
	CategoryAccesorio  = "Accesorio"
	CategorySmartphone = "Smartphone"
)

// Categories возвращает допустимые категории товара.
var Categories = []string{CategoryLaptop, CategoryTablet, CategoryAccesorio, CategorySmartphone}

// Product представляет товар каталога.
// JSON-имена полей соответствуют исходному контракту витрины.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"nombre"`
	Brand    string  `json:"marca"`
	Category string  `json:"categoria"`
	Price    float64 `json:"precio"`
	Active   bool    `json:"activo"`
}
