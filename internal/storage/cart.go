package storage

import (
	"sync"

	"github.com/linemk/tech-store/internal/domain/models"
)

// CartStorage хранит корзины пользователей.
// Состояние живет только в памяти процесса: корзина — черновик заказа
// и по контракту сбрасывается при оформлении или перезапуске.
type CartStorage interface {
	// Items возвращает копию строк корзины пользователя.
	Items(userID int64) []models.CartItem
	// Add добавляет товар; существующая строка увеличивает количество.
	Add(userID int64, productID int64, quantity int)
	// SetQuantity заменяет количество; значение <= 0 удаляет строку.
	// Возвращает false, если строки с таким товаром нет.
	SetQuantity(userID int64, productID int64, quantity int) bool
	// Remove удаляет строку безусловно; отсутствующая строка — no-op.
	Remove(userID int64, productID int64)
	// Clear очищает корзину пользователя.
	Clear(userID int64)
	// ClearItems вычитает из корзины ровно переданные количества.
	// Строки, добавленные после снятия снимка, и излишек количества остаются.
	ClearItems(userID int64, items []models.CartItem)
}

type memoryCartStorage struct {
	mu    sync.RWMutex
	carts map[int64][]models.CartItem
}

// NewCartStorage создаёт пустое in-memory хранилище корзин.
func NewCartStorage() CartStorage {
	return &memoryCartStorage{carts: make(map[int64][]models.CartItem)}
}

func (s *memoryCartStorage) Items(userID int64) []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.CartItem, len(s.carts[userID]))
	copy(items, s.carts[userID])
	return items
}

func (s *memoryCartStorage) Add(userID int64, productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			// не более одной строки на товар
			items[i].Quantity += quantity
			return
		}
	}
	s.carts[userID] = append(items, models.CartItem{ProductID: productID, Quantity: quantity})
}

func (s *memoryCartStorage) SetQuantity(userID int64, productID int64, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			if quantity <= 0 {
				s.carts[userID] = append(items[:i], items[i+1:]...)
			} else {
				items[i].Quantity = quantity
			}
			return true
		}
	}
	return false
}

func (s *memoryCartStorage) Remove(userID int64, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			s.carts[userID] = append(items[:i], items[i+1:]...)
			return
		}
	}
}

func (s *memoryCartStorage) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
}

func (s *memoryCartStorage) ClearItems(userID int64, items []models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[int64]int, len(items))
	for _, item := range items {
		taken[item.ProductID] += item.Quantity
	}

	var rest []models.CartItem
	for _, line := range s.carts[userID] {
		line.Quantity -= taken[line.ProductID]
		if line.Quantity > 0 {
			rest = append(rest, line)
		}
	}
	if len(rest) == 0 {
		delete(s.carts, userID)
		return
	}
	s.carts[userID] = rest
}
