package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/tech-store/internal/domain/models"
	"github.com/linemk/tech-store/internal/storage"
)

// ProductUpdate — частичное обновление товара, nil-поля не трогаются.
type ProductUpdate struct {
	Name     *string
	Brand    *string
	Category *string
	Price    *float64
	Active   *bool
}

// ProductService определяет операции над каталогом товаров.
type ProductService interface {
	List(ctx context.Context) ([]*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id int64, upd ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage) ProductService {
	return &productService{log: log, productRepo: productRepo}
}

func (s *productService) List(ctx context.Context) ([]*models.Product, error) {
	const op = "service.ProductService.List"

	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *productService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	const op = "service.ProductService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("name", product.Name))

	created, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
	}

	logger.Info("product created", slog.Int64("productID", created.ID))
	return created, nil
}

func (s *productService) Update(ctx context.Context, id int64, upd ProductUpdate) (*models.Product, error) {
	const op = "service.ProductService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	patch := storage.ProductPatch{
		Name:     upd.Name,
		Brand:    upd.Brand,
		Category: upd.Category,
		Price:    upd.Price,
		Active:   upd.Active,
	}
	updated, err := s.productRepo.UpdateProduct(ctx, id, patch)
	if err != nil {
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update product: %w", op, err)
	}
	return updated, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	const op = "service.ProductService.Delete"

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		s.log.Error("failed to delete product", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
