package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/tech-store/internal/domain/models"
	"github.com/linemk/tech-store/internal/storage"
)

var (
	// ErrEmptyCart — оформление пустой корзины отклоняется без обращения к хранилищу.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidStatus — статус вне допустимого набора.
	ErrInvalidStatus = errors.New("invalid order status")
)

// dateLayout — календарная дата заказа в ISO-форме, без времени
const dateLayout = "2006-01-02"

// OrderUpdate — частичное обновление заказа, nil-поля не трогаются.
type OrderUpdate struct {
	UserID *int64
	Date   *string
	Status *string
	Lines  *[]models.OrderLine
}

// OrderService определяет оформление корзины и операции над заказами.
type OrderService interface {
	// Checkout превращает непустую корзину пользователя в заказ.
	Checkout(ctx context.Context, userID int64) (*models.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Order, error)
	ListAll(ctx context.Context) ([]*models.Order, error)
	Create(ctx context.Context, userID int64, lines []models.OrderLine) (*models.Order, error)
	Update(ctx context.Context, id int64, upd OrderUpdate) (*models.Order, error)
	Delete(ctx context.Context, id int64) error
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
	carts     storage.CartStorage
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage, carts storage.CartStorage) OrderService {
	return &orderService{
		log:       log,
		orderRepo: orderRepo,
		carts:     carts,
	}
}

// Checkout — оформление заказа из корзины.
// Предусловие: корзина непуста. Заказ получает владельца из подтверждённой
// личности вызывающего, текущую календарную дату и фиксированный статус pending.
// После успешной записи из корзины вычитаются ровно оформленные количества,
// поэтому строки, добавленные между снимком и записью, не теряются.
// При ошибке хранилища корзина остаётся нетронутой и оформление можно повторить.
func (s *orderService) Checkout(ctx context.Context, userID int64) (*models.Order, error) {
	const op = "service.OrderService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting checkout")

	items := s.carts.Items(userID)
	if len(items) == 0 {
		logger.Warn("checkout rejected: empty cart")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.Create(ctx, userID, lines)
	if err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.carts.ClearItems(userID, items)
	logger.Info("checkout completed", slog.Int64("orderID", order.ID))
	return order, nil
}

// Create сохраняет заказ с фиксированным статусом pending и текущей датой;
// ни статус, ни дата вызывающим не задаются.
func (s *orderService) Create(ctx context.Context, userID int64, lines []models.OrderLine) (*models.Order, error) {
	const op = "service.OrderService.Create"

	order := &models.Order{
		UserID: userID,
		Lines:  lines,
		Date:   time.Now().Format(dateLayout),
		Status: models.StatusPending,
	}
	created, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		s.log.Error("failed to create order", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}
	return created, nil
}

// ListForUser возвращает историю заказов пользователя, без пагинации и фильтров.
func (s *orderService) ListForUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListForUser"

	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) ListAll(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.ListAll"

	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// Update выполняет частичное слияние. Статус проверяется на принадлежность
// допустимому набору; граф переходов между статусами не навязывается.
func (s *orderService) Update(ctx context.Context, id int64, upd OrderUpdate) (*models.Order, error) {
	const op = "service.OrderService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id))

	if upd.Status != nil && !models.ValidStatus(*upd.Status) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	patch := storage.OrderPatch{
		UserID: upd.UserID,
		Date:   upd.Date,
		Status: upd.Status,
		Lines:  upd.Lines,
	}
	updated, err := s.orderRepo.UpdateOrder(ctx, id, patch)
	if err != nil {
		logger.Error("failed to update order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update order: %w", op, err)
	}
	return updated, nil
}

func (s *orderService) Delete(ctx context.Context, id int64) error {
	const op = "service.OrderService.Delete"

	if err := s.orderRepo.DeleteOrder(ctx, id); err != nil {
		s.log.Error("failed to delete order", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
