package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/tech-store/internal/domain/models"
	"github.com/linemk/tech-store/internal/storage"
)

var (
	// ErrInvalidQuantity — количество должно быть положительным целым.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrProductUnavailable — товар не существует или деактивирован.
	ErrProductUnavailable = errors.New("product is not available")
	// ErrCartLineNotFound — в корзине нет строки с таким товаром.
	ErrCartLineNotFound = errors.New("cart line not found")
)

// CartService накапливает кандидатов на покупку до оформления заказа.
type CartService interface {
	Get(ctx context.Context, userID int64) (*models.Cart, error)
	Add(ctx context.Context, userID int64, productID int64, quantity int) (*models.Cart, error)
	SetQuantity(ctx context.Context, userID int64, productID int64, quantity int) (*models.Cart, error)
	Remove(ctx context.Context, userID int64, productID int64) (*models.Cart, error)
	Clear(ctx context.Context, userID int64) error
}

type cartService struct {
	log         *slog.Logger
	carts       storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, carts storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		carts:       carts,
		productRepo: productRepo,
	}
}

// Get возвращает снимок корзины; сумма пересчитывается по актуальным ценам
// на каждое чтение. Строки с удалёнными товарами дают нулевой вклад.
func (s *cartService) Get(ctx context.Context, userID int64) (*models.Cart, error) {
	const op = "service.CartService.Get"

	items := s.carts.Items(userID)
	total := 0.0
	for _, item := range items {
		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				continue
			}
			s.log.Error("failed to get product", slog.String("op", op), slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
		}
		total += product.Price * float64(item.Quantity)
	}
	return &models.Cart{Items: items, Total: total}, nil
}

// Add добавляет товар в корзину. Количество должно быть положительным,
// товар — существующим и активным, иначе состояние корзины не меняется.
// Повторное добавление увеличивает количество существующей строки.
func (s *cartService) Add(ctx context.Context, userID int64, productID int64, quantity int) (*models.Cart, error) {
	const op = "service.CartService.Add"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if quantity <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrProductUnavailable)
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}
	if !product.Active {
		return nil, fmt.Errorf("%s: %w", op, ErrProductUnavailable)
	}

	s.carts.Add(userID, productID, quantity)
	logger.Info("product added to cart", slog.Int("quantity", quantity))
	return s.Get(ctx, userID)
}

// SetQuantity заменяет количество строки; ноль и отрицательные значения удаляют строку.
func (s *cartService) SetQuantity(ctx context.Context, userID int64, productID int64, quantity int) (*models.Cart, error) {
	const op = "service.CartService.SetQuantity"

	if !s.carts.SetQuantity(userID, productID, quantity) {
		return nil, fmt.Errorf("%s: %w", op, ErrCartLineNotFound)
	}
	return s.Get(ctx, userID)
}

// Remove удаляет строку безусловно; отсутствующая строка — no-op.
func (s *cartService) Remove(ctx context.Context, userID int64, productID int64) (*models.Cart, error) {
	s.carts.Remove(userID, productID)
	return s.Get(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID int64) error {
	s.carts.Clear(userID)
	return nil
}
