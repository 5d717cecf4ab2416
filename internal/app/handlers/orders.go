package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/linemk/tech-store/internal/domain/models"
	"github.com/linemk/tech-store/internal/security/authmiddleware"
	"github.com/linemk/tech-store/internal/service"
	"github.com/linemk/tech-store/internal/storage"
)

// OrderLineRequest — позиция заказа в теле запроса
type OrderLineRequest struct {
	ProductID int64 `json:"productoId" validate:"required"`
	Quantity  int   `json:"cantidad" validate:"required,gt=0"`
}

// CreateOrderRequest — тело POST /pedidos; usuarioId учитывается только для админа
type CreateOrderRequest struct {
	UserID *int64             `json:"usuarioId"`
	Lines  []OrderLineRequest `json:"productos" validate:"required,min=1,dive"`
}

// UpdateOrderRequest — тело PUT /pedidos/{id}; отсутствующие поля не трогаются
type UpdateOrderRequest struct {
	UserID *int64              `json:"usuarioId"`
	Date   *string             `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
	Status *string             `json:"estado"`
	Lines  *[]OrderLineRequest `json:"productos" validate:"omitempty,dive"`
}

func toOrderLines(reqLines []OrderLineRequest) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(reqLines))
	for _, l := range reqLines {
		lines = append(lines, models.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return lines
}

// ListOrdersHandler обрабатывает GET /pedidos: пользователь видит только свои
// заказы, админ — все, с необязательным фильтром ?usuarioId.
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		ident, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			respondError(log, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var (
			orders []*models.Order
			err    error
		)
		switch {
		case !ident.IsAdmin():
			orders, err = orderService.ListForUser(r.Context(), ident.UserID)
		case r.URL.Query().Get("usuarioId") != "":
			var userID int64
			userID, err = strconv.ParseInt(r.URL.Query().Get("usuarioId"), 10, 64)
			if err != nil {
				respondError(log, w, http.StatusBadRequest, "invalid usuarioId")
				return
			}
			orders, err = orderService.ListForUser(r.Context(), userID)
		default:
			orders, err = orderService.ListAll(r.Context())
		}
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}
		respondJSON(log, w, http.StatusOK, orders)
	}
}

// CreateOrderHandler обрабатывает POST /pedidos: владелец берётся из токена
// (админ может указать другого), статус всегда pending.
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		ident, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			respondError(log, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "validation error")
			return
		}

		userID := ident.UserID
		if req.UserID != nil && ident.IsAdmin() {
			userID = *req.UserID
		}

		order, err := orderService.Create(r.Context(), userID, toOrderLines(req.Lines))
		if err != nil {
			logger.Error("failed to create order", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, order)
	}
}

// UpdateOrderHandler обрабатывает PUT /pedidos/{id} (только админ):
// частичное слияние, статус проверяется на допустимость, 404 при отсутствии.
func UpdateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			respondError(log, w, http.StatusBadRequest, "invalid id")
			return
		}

		var req UpdateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "validation error")
			return
		}

		upd := service.OrderUpdate{
			UserID: req.UserID,
			Date:   req.Date,
			Status: req.Status,
		}
		if req.Lines != nil {
			lines := toOrderLines(*req.Lines)
			upd.Lines = &lines
		}

		order, err := orderService.Update(r.Context(), id, upd)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderNotFound):
				respondError(log, w, http.StatusNotFound, "order not found")
			case errors.Is(err, service.ErrInvalidStatus):
				respondError(log, w, http.StatusBadRequest, "invalid order status")
			default:
				logger.Error("failed to update order", slog.Any("error", err))
				respondError(log, w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		respondJSON(log, w, http.StatusOK, order)
	}
}

// DeleteOrderHandler обрабатывает DELETE /pedidos/{id} (только админ): отсутствующий id — тоже успех.
func DeleteOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			respondError(log, w, http.StatusBadRequest, "invalid id")
			return
		}

		if err := orderService.Delete(r.Context(), id); err != nil {
			logger.Error("failed to delete order", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, okResponse{OK: true})
	}
}

// CheckoutHandler обрабатывает POST /carrito/checkout: непустая корзина
// превращается в заказ, корзина очищается после успешной записи.
func CheckoutHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		ident, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			respondError(log, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		order, err := orderService.Checkout(r.Context(), ident.UserID)
		if err != nil {
			if errors.Is(err, service.ErrEmptyCart) {
				respondError(log, w, http.StatusUnprocessableEntity, "cart is empty")
				return
			}
			logger.Error("checkout failed", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, order)
	}
}
