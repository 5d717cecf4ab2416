package models

// CartItem — строка корзины: ссылка на товар и количество.
// На каждый товар в корзине существует не более одной строки.
type CartItem struct {
	ProductID int64 `json:"productoId"`
	Quantity  int   `json:"cantidad"`
}

// Cart — снимок корзины пользователя с пересчитанной суммой.
// Корзина живет только в памяти процесса и не персистится.
type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}
