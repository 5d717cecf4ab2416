package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/tech-store/internal/security/authmiddleware"
	"github.com/linemk/tech-store/internal/service"
)

// AddToCartRequest — тело POST /carrito;
// количество проверяет сервис, чтобы ноль и отрицательные значения
// единообразно отклонялись как необрабатываемые (422)
type AddToCartRequest struct {
	ProductID int64 `json:"productoId" validate:"required"`
	Quantity  int   `json:"cantidad"`
}

// SetCartQuantityRequest — тело PUT /carrito/{productoId};
// ноль и отрицательные значения удаляют строку, поэтому без ограничения gt=0
type SetCartQuantityRequest struct {
	Quantity int `json:"cantidad"`
}

func cartProductID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "productoId"), 10, 64)
}

// GetCartHandler обрабатывает GET /carrito: строки и сумма по актуальным ценам.
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		ident, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			respondError(log, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		cart, err := cartService.Get(r.Context(), ident.UserID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, cart)
	}
}

// AddToCartHandler обрабатывает POST /carrito: повторное добавление товара
// увеличивает количество существующей строки.
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
		logger := log.With(slog.String("op", op))

		ident, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			respondError(log, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req AddToCartRequest
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

		cart, err := cartService.Add(r.Context(), ident.UserID, req.ProductID, req.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidQuantity):
				respondError(log, w, http.StatusUnprocessableEntity, "quantity must be a positive integer")
			case errors.Is(err, service.ErrProductUnavailable):
				respondError(log, w, http.StatusUnprocessableEntity, "product is not available")
			default:
				logger.Error("failed to add to cart", slog.Any("error", err))
				respondError(log, w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		respondJSON(log, w, http.StatusOK, cart)
	}
}

// SetCartQuantityHandler обрабатывает PUT /carrito/{productoId}:
// замена количества, нулевое или отрицательное значение удаляет строку.
func SetCartQuantityHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SetCartQuantityHandler"
		logger := log.With(slog.String("op", op))

		ident, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			respondError(log, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		productID, err := cartProductID(r)
		if err != nil {
			respondError(log, w, http.StatusBadRequest, "invalid productoId")
			return
		}

		var req SetCartQuantityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "invalid request")
			return
		}

		cart, err := cartService.SetQuantity(r.Context(), ident.UserID, productID, req.Quantity)
		if err != nil {
			if errors.Is(err, service.ErrCartLineNotFound) {
				respondError(log, w, http.StatusNotFound, "cart line not found")
				return
			}
			logger.Error("failed to update cart line", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, cart)
	}
}

// RemoveFromCartHandler обрабатывает DELETE /carrito/{productoId}: no-op при отсутствии строки.
func RemoveFromCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveFromCartHandler"
		logger := log.With(slog.String("op", op))

		ident, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			respondError(log, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		productID, err := cartProductID(r)
		if err != nil {
			respondError(log, w, http.StatusBadRequest, "invalid productoId")
			return
		}

		cart, err := cartService.Remove(r.Context(), ident.UserID, productID)
		if err != nil {
			logger.Error("failed to remove from cart", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, cart)
	}
}

// ClearCartHandler обрабатывает DELETE /carrito.
func ClearCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ClearCartHandler"
		logger := log.With(slog.String("op", op))

		ident, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			respondError(log, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := cartService.Clear(r.Context(), ident.UserID); err != nil {
			logger.Error("failed to clear cart", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, okResponse{OK: true})
	}
}
