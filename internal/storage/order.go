package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/tech-store/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// dateLayout — календарная дата заказа без времени
const dateLayout = "2006-01-02"

// OrderPatch — частичное обновление заказа: nil-поля не трогаются,
// Lines заменяет набор позиций целиком, если указан.
type OrderPatch struct {
	UserID *int64
	Date   *string
	Status *string
	Lines  *[]models.OrderLine
}

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	List(ctx context.Context) ([]*models.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	// CreateOrder вставляет заказ вместе с позициями в одной транзакции.
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	UpdateOrder(ctx context.Context, id int64, patch OrderPatch) (*models.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderSelect = `
	SELECT p.id, p.usuario_id, p.fecha, p.estado, i.producto_id, i.cantidad
	FROM pedidos p
	LEFT JOIN pedido_items i ON i.pedido_id = p.id`

func (r *orderRepository) List(ctx context.Context) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, orderSelect+" ORDER BY p.id, i.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListByUserID возвращает историю заказов пользователя.
func (r *orderRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, orderSelect+" WHERE p.usuario_id = $1 ORDER BY p.id, i.id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, orderSelect+" WHERE p.id = $1 ORDER BY i.id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders[0], nil
}

// scanOrders собирает заказы из joined-результата, группируя позиции по заказу.
// LEFT JOIN даёт NULL-позиции для заказов без строк.
func scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	var current *models.Order
	for rows.Next() {
		var (
			id, userID int64
			date       time.Time
			status     string
			productID  sql.NullInt64
			quantity   sql.NullInt64
		)
		if err := rows.Scan(&id, &userID, &date, &status, &productID, &quantity); err != nil {
			return nil, err
		}
		if current == nil || current.ID != id {
			current = &models.Order{
				ID:     id,
				UserID: userID,
				Lines:  []models.OrderLine{},
				Date:   date.Format(dateLayout),
				Status: status,
			}
			orders = append(orders, current)
		}
		if productID.Valid {
			current.Lines = append(current.Lines, models.OrderLine{
				ProductID: productID.Int64,
				Quantity:  int(quantity.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder вставляет заказ и его позиции атомарно:
// частично записанный заказ наблюдать невозможно.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			"INSERT INTO pedidos (usuario_id, fecha, estado) VALUES ($1, $2, $3) RETURNING id",
			order.UserID, order.Date, order.Status,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		order.ID = id

		for _, line := range order.Lines {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO pedido_items (pedido_id, producto_id, cantidad) VALUES ($1, $2, $3)",
				id, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("failed to create order line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrder выполняет частичное слияние; замена позиций перезаписывает их набор целиком.
func (r *orderRepository) UpdateOrder(ctx context.Context, id int64, patch OrderPatch) (*models.Order, error) {
	order := &models.Order{}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var date time.Time
		row := tx.QueryRowContext(ctx,
			"SELECT id, usuario_id, fecha, estado FROM pedidos WHERE id = $1 FOR UPDATE", id)
		if err := row.Scan(&order.ID, &order.UserID, &date, &order.Status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOrderNotFound
			}
			return err
		}
		order.Date = date.Format(dateLayout)

		if patch.UserID != nil {
			order.UserID = *patch.UserID
		}
		if patch.Date != nil {
			order.Date = *patch.Date
		}
		if patch.Status != nil {
			order.Status = *patch.Status
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE pedidos SET usuario_id = $1, fecha = $2, estado = $3 WHERE id = $4",
			order.UserID, order.Date, order.Status, id); err != nil {
			return err
		}

		if patch.Lines != nil {
			if _, err := tx.ExecContext(ctx, "DELETE FROM pedido_items WHERE pedido_id = $1", id); err != nil {
				return err
			}
			for _, line := range *patch.Lines {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO pedido_items (pedido_id, producto_id, cantidad) VALUES ($1, $2, $3)",
					id, line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
			order.Lines = *patch.Lines
			return nil
		}

		rows, err := tx.QueryContext(ctx,
			"SELECT producto_id, cantidad FROM pedido_items WHERE pedido_id = $1 ORDER BY id", id)
		if err != nil {
			return err
		}
		defer rows.Close()

		order.Lines = []models.OrderLine{}
		for rows.Next() {
			var line models.OrderLine
			if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder удаляет заказ вместе с позициями; отсутствующий id — не ошибка.
func (r *orderRepository) DeleteOrder(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM pedido_items WHERE pedido_id = $1", id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM pedidos WHERE id = $1", id)
		return err
	})
}
