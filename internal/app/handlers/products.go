package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/tech-store/internal/domain/models"
	"github.com/linemk/tech-store/internal/service"
	"github.com/linemk/tech-store/internal/storage"
)

// CreateProductRequest — тело POST /productos
type CreateProductRequest struct {
	Name     string  `json:"nombre" validate:"required"`
	Brand    string  `json:"marca" validate:"required"`
	Category string  `json:"categoria" validate:"required,oneof=Laptop Tablet Accesorio Smartphone"`
	Price    float64 `json:"precio" validate:"gte=0"`
	Active   *bool   `json:"activo"`
}

// UpdateProductRequest — тело PUT /productos/{id}; отсутствующие поля не трогаются
type UpdateProductRequest struct {
	Name     *string  `json:"nombre"`
	Brand    *string  `json:"marca"`
	Category *string  `json:"categoria" validate:"omitempty,oneof=Laptop Tablet Accesorio Smartphone"`
	Price    *float64 `json:"precio" validate:"omitempty,gte=0"`
	Active   *bool    `json:"activo"`
}

// ListProductsHandler обрабатывает GET /productos.
func ListProductsHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := productService.List(r.Context())
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, products)
	}
}

// CreateProductHandler обрабатывает POST /productos (только админ).
func CreateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req CreateProductRequest
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

		// новый товар по умолчанию активен
		active := true
		if req.Active != nil {
			active = *req.Active
		}

		product, err := productService.Create(r.Context(), &models.Product{
			Name:     req.Name,
			Brand:    req.Brand,
			Category: req.Category,
			Price:    req.Price,
			Active:   active,
		})
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, product)
	}
}

// UpdateProductHandler обрабатывает PUT /productos/{id} (только админ): частичное слияние, 404 при отсутствии.
func UpdateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			respondError(log, w, http.StatusBadRequest, "invalid id")
			return
		}

		var req UpdateProductRequest
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

		product, err := productService.Update(r.Context(), id, service.ProductUpdate{
			Name:     req.Name,
			Brand:    req.Brand,
			Category: req.Category,
			Price:    req.Price,
			Active:   req.Active,
		})
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				respondError(log, w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to update product", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, product)
	}
}

// DeleteProductHandler обрабатывает DELETE /productos/{id} (только админ): отсутствующий id — тоже успех.
func DeleteProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			respondError(log, w, http.StatusBadRequest, "invalid id")
			return
		}

		if err := productService.Delete(r.Context(), id); err != nil {
			logger.Error("failed to delete product", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, okResponse{OK: true})
	}
}
