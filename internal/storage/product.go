package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/tech-store/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductPatch — частичное обновление товара: nil-поля не трогаются.
type ProductPatch struct {
	Name     *string
	Brand    *string
	Category *string
	Price    *float64
	Active   *bool
}

// ProductStorage описывает методы для работы с каталогом товаров.
type ProductStorage interface {
	List(ctx context.Context) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// productRepository — конкретная реализация интерфейса ProductStorage.
type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий каталога.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, nombre, marca, categoria, precio, activo FROM productos ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.Brand, &product.Category, &product.Price, &product.Active); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, nombre, marca, categoria, precio, activo FROM productos WHERE id = $1", id)
	if err := row.Scan(&product.ID, &product.Name, &product.Brand, &product.Category, &product.Price, &product.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO productos (nombre, marca, categoria, precio, activo) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		product.Name, product.Brand, product.Category, product.Price, product.Active,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	product.ID = id
	return product, nil
}

// UpdateProduct выполняет частичное слияние внутри транзакции:
// обновление только {activo} обязано оставить остальные поля нетронутыми.
func (r *productRepository) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*models.Product, error) {
	product := &models.Product{}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT id, nombre, marca, categoria, precio, activo FROM productos WHERE id = $1 FOR UPDATE", id)
		if err := row.Scan(&product.ID, &product.Name, &product.Brand, &product.Category, &product.Price, &product.Active); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			return err
		}

		if patch.Name != nil {
			product.Name = *patch.Name
		}
		if patch.Brand != nil {
			product.Brand = *patch.Brand
		}
		if patch.Category != nil {
			product.Category = *patch.Category
		}
		if patch.Price != nil {
			product.Price = *patch.Price
		}
		if patch.Active != nil {
			product.Active = *patch.Active
		}

		_, err := tx.ExecContext(ctx,
			"UPDATE productos SET nombre = $1, marca = $2, categoria = $3, precio = $4, activo = $5 WHERE id = $6",
			product.Name, product.Brand, product.Category, product.Price, product.Active, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct удаляет товар; ссылки из существующих заказов остаются висячими,
// отсутствующий id — не ошибка.
func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM productos WHERE id = $1", id)
	return err
}
