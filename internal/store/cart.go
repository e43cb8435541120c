package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ba9900/Mzize-Tradings/internal/database"
	"github.com/Ba9900/Mzize-Tradings/internal/models"
	"github.com/shopspring/decimal"
)

type Cart struct {
	Items       []models.CartItem `json:"items"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	ItemCount   int               `json:"item_count"`
}

type CheckoutSummary struct {
	Items       []models.CartItem `json:"items"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	TaxRate     decimal.Decimal   `json:"tax_rate"`
	TaxAmount   decimal.Decimal   `json:"tax_amount"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Currency    string            `json:"currency"`
}

// AddToCart upserts a cart line. Adding a plan already in the cart adds to
// its quantity; the (user_id, plan_id) unique constraint keeps it one row.
func AddToCart(ctx context.Context, db *sql.DB, userID, planID int64, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, database.ErrInvalidQuantity
	}

	plan, err := FindActivePlan(ctx, db, planID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{}
	query := `
		INSERT INTO cart_items (user_id, plan_id, quantity, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, plan_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, user_id, plan_id, quantity, created_at`

	err = db.QueryRowContext(ctx, query, userID, planID, quantity).Scan(
		&item.ID,
		&item.UserID,
		&item.PlanID,
		&item.Quantity,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	item.PlanTitle = plan.Title
	item.UnitPrice = plan.Price
	item.LineTotal = plan.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))

	return item, nil
}

// UpdateCartItem sets the line quantity. A quantity of zero or less removes
// the line and returns a nil item.
func UpdateCartItem(ctx context.Context, db *sql.DB, itemID int64, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		if err := RemoveCartItem(ctx, db, itemID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item := &models.CartItem{}
	query := `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2
		RETURNING id, user_id, plan_id, quantity, created_at`

	err := db.QueryRowContext(ctx, query, quantity, itemID).Scan(
		&item.ID,
		&item.UserID,
		&item.PlanID,
		&item.Quantity,
		&item.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	return item, nil
}

func RemoveCartItem(ctx context.Context, db *sql.DB, itemID int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrCartItemNotFound
	}

	return nil
}

func ClearCart(ctx context.Context, db *sql.DB, userID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

// GetCart lists the user's cart with prices resolved live from the catalog.
// Lines whose plan has been removed or deactivated stay in the listing with
// zero price and do not count toward the total.
func GetCart(ctx context.Context, db *sql.DB, userID int64) (*Cart, error) {
	query := `
		SELECT c.id, c.user_id, c.plan_id, c.quantity, c.created_at, p.title, p.price
		FROM cart_items c
		LEFT JOIN house_plans p ON p.id = c.plan_id AND p.is_active = TRUE
		WHERE c.user_id = $1
		ORDER BY c.created_at`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	defer rows.Close()

	cart := &Cart{Items: []models.CartItem{}, TotalAmount: decimal.Zero}
	for rows.Next() {
		var item models.CartItem
		var title sql.NullString
		var price decimal.NullDecimal

		err := rows.Scan(&item.ID, &item.UserID, &item.PlanID, &item.Quantity, &item.CreatedAt, &title, &price)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}

		if price.Valid {
			item.PlanTitle = title.String
			item.UnitPrice = price.Decimal
			item.LineTotal = price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
			cart.TotalAmount = cart.TotalAmount.Add(item.LineTotal)
		}

		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	cart.ItemCount = len(cart.Items)

	return cart, nil
}

// CartTotal sums live price times quantity over the lines that still resolve
// to an active plan.
func CartTotal(ctx context.Context, db *sql.DB, userID int64) (decimal.Decimal, error) {
	var total decimal.Decimal

	query := `
		SELECT COALESCE(SUM(p.price * c.quantity), 0)
		FROM cart_items c
		JOIN house_plans p ON p.id = c.plan_id AND p.is_active = TRUE
		WHERE c.user_id = $1`

	if err := db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("cart total: %w", err)
	}

	return total, nil
}

func GetCheckoutSummary(ctx context.Context, db *sql.DB, userID int64, taxRate decimal.Decimal, currency string) (*CheckoutSummary, error) {
	cart, err := GetCart(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, database.ErrEmptyCart
	}

	taxAmount := cart.TotalAmount.Mul(taxRate).Round(2)

	return &CheckoutSummary{
		Items:       cart.Items,
		Subtotal:    cart.TotalAmount,
		TaxRate:     taxRate,
		TaxAmount:   taxAmount,
		TotalAmount: cart.TotalAmount.Add(taxAmount),
		Currency:    currency,
	}, nil
}
