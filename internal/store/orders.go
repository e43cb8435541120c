package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Ba9900/Mzize-Tradings/internal/database"
	"github.com/Ba9900/Mzize-Tradings/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// checkoutFailpoint is a test hook fired after the order rows are written
// but before the cart is cleared.
var checkoutFailpoint func() error

func generateOrderNumber() string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("MZ%s%s", time.Now().Format("20060102"), token)
}

// Checkout converts the user's cart into an order in one transaction: prices
// are resolved live and frozen into order items, then the cart is deleted.
// Either everything commits or nothing does.
func Checkout(ctx context.Context, db *sql.DB, userID int64, billing models.BillingAddress) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT c.plan_id, c.quantity, p.price
			 FROM cart_items c
			 JOIN house_plans p ON p.id = c.plan_id AND p.is_active = TRUE
			 WHERE c.user_id = $1
			 ORDER BY c.created_at
			 FOR UPDATE OF c`,
			userID)
		if err != nil {
			return fmt.Errorf("lock cart items: %w", err)
		}

		type line struct {
			planID   int64
			quantity int
			price    decimal.Decimal
		}

		var lines []line
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.planID, &l.quantity, &l.price); err != nil {
				rows.Close()
				return fmt.Errorf("scan cart line: %w", err)
			}
			lines = append(lines, l)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("rows error: %w", err)
		}
		rows.Close()

		if len(lines) == 0 {
			return database.ErrEmptyCart
		}

		totalAmount := decimal.Zero
		for _, l := range lines {
			totalAmount = totalAmount.Add(l.price.Mul(decimal.NewFromInt(int64(l.quantity))))
		}

		orderNumber := generateOrderNumber()
		var orderID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (order_number, user_id, status, total_amount, billing_address, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			 RETURNING id`,
			orderNumber, userID, models.OrderStatusPending, totalAmount, billing).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, l := range lines {
			totalPrice := l.price.Mul(decimal.NewFromInt(int64(l.quantity)))
			_, err = tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, plan_id, quantity, unit_price, total_price, created_at)
				 VALUES ($1, $2, $3, $4, $5, NOW())`,
				orderID, l.planID, l.quantity, l.price, totalPrice)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		if checkoutFailpoint != nil {
			if err := checkoutFailpoint(); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		order, err = getOrderTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT id, order_number, user_id, status, total_amount, billing_address, created_at, updated_at
		FROM orders
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.BillingAddress,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := listOrderItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func getOrderTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	order := &models.Order{}

	err := tx.QueryRowContext(ctx,
		`SELECT id, order_number, user_id, status, total_amount, billing_address, created_at, updated_at
		 FROM orders WHERE id = $1`,
		id).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.BillingAddress,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, order_id, plan_id, quantity, unit_price, total_price, created_at
		 FROM order_items WHERE order_id = $1 ORDER BY id`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.PlanID, &item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	return order, rows.Err()
}

func listOrderItems(ctx context.Context, db *sql.DB, orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, plan_id, quantity, unit_price, total_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.PlanID,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func ListOrders(ctx context.Context, db *sql.DB, userID int64, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, order_number, user_id, status, total_amount, billing_address, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.OrderNumber,
			&order.UserID,
			&order.Status,
			&order.TotalAmount,
			&order.BillingAddress,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(orders, total, page, pageSize), nil
}

// UpdateOrderStatus validates the status value only. The payment-driven
// pending to paid transition is owned by the reconciliation engine.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, id int64, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, database.ErrInvalidStatus
	}

	result, err := db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, database.ErrOrderNotFound
	}

	return GetOrder(ctx, db, id)
}
