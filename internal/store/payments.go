package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ba9900/Mzize-Tradings/internal/database"
	"github.com/Ba9900/Mzize-Tradings/internal/models"
)

const paymentColumns = `id, order_id, payment_method, payment_gateway, amount, currency,
	status, gateway_reference, transaction_id, gateway_response,
	card_type, card_last_four, bank_name, bank_reference, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	payment := &models.Payment{}
	err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.PaymentMethod,
		&payment.PaymentGateway,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.GatewayReference,
		&payment.TransactionID,
		&payment.GatewayResponse,
		&payment.CardType,
		&payment.CardLastFour,
		&payment.BankName,
		&payment.BankReference,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func CreatePayment(ctx context.Context, db *sql.DB, payment *models.Payment) (*models.Payment, error) {
	query := `
		INSERT INTO payments (order_id, payment_method, payment_gateway, amount, currency,
			status, gateway_reference, card_type, card_last_four, bank_name, bank_reference,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING ` + paymentColumns

	created, err := scanPayment(db.QueryRowContext(ctx, query,
		payment.OrderID, payment.PaymentMethod, payment.PaymentGateway,
		payment.Amount, payment.Currency, payment.Status, payment.GatewayReference,
		payment.CardType, payment.CardLastFour, payment.BankName, payment.BankReference))
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	return created, nil
}

func GetPayment(ctx context.Context, db *sql.DB, id int64) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return payment, nil
}

// GetPaymentByReferenceForUpdate locks the payment row for the duration of
// the surrounding transaction, serializing concurrent notifications for the
// same gateway reference.
func GetPaymentByReferenceForUpdate(ctx context.Context, tx *sql.Tx, reference string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_reference = $1 FOR UPDATE`

	payment, err := scanPayment(tx.QueryRowContext(ctx, query, reference))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment by reference: %w", err)
	}

	return payment, nil
}

func ListPaymentsByOrder(ctx context.Context, db *sql.DB, orderID int64) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, *payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return payments, nil
}

// CancelPayment moves a payment to cancelled. Only non-terminal payments can
// be cancelled.
func CancelPayment(ctx context.Context, db *sql.DB, id int64) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ($3, $4)
		RETURNING ` + paymentColumns

	payment, err := scanPayment(db.QueryRowContext(ctx, query,
		models.PaymentStatusCancelled, id,
		models.PaymentStatusPending, models.PaymentStatusProcessing))
	if err == nil {
		return payment, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("cancel payment: %w", err)
	}

	// Either the payment does not exist or it is already terminal.
	if _, getErr := GetPayment(ctx, db, id); getErr != nil {
		return nil, getErr
	}
	return nil, database.ErrInvalidState
}

// HasCompletedPayment reports whether any payment for the order has already
// completed. At most one payment attempt per order may complete.
func HasCompletedPayment(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM payments WHERE order_id = $1 AND status = $2)`,
		orderID, models.PaymentStatusCompleted).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check completed payment: %w", err)
	}
	return exists, nil
}

// LockOrderTx takes the order row lock, serializing payment completion for
// orders with more than one payment attempt in flight.
func LockOrderTx(ctx context.Context, tx *sql.Tx, orderID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return database.ErrOrderNotFound
		}
		return fmt.Errorf("lock order: %w", err)
	}
	return nil
}

// SetPaymentResultTx records the reconciliation outcome on the payment row.
func SetPaymentResultTx(ctx context.Context, tx *sql.Tx, id int64, status, transactionID string, response models.GatewayResponse) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payments
		 SET status = $1, transaction_id = $2, gateway_response = $3, updated_at = NOW()
		 WHERE id = $4`,
		status, transactionID, response, id)
	if err != nil {
		return fmt.Errorf("set payment result: %w", err)
	}
	return nil
}

// MarkOrderPaidTx moves a pending order to paid and reports whether the
// transition applied.
func MarkOrderPaidTx(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		models.OrderStatusPaid, orderID, models.OrderStatusPending)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}
