package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Ba9900/Mzize-Tradings/internal/database"
	"github.com/Ba9900/Mzize-Tradings/internal/models"
	"github.com/Ba9900/Mzize-Tradings/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, db *sql.DB, userID int64) *models.Order {
	t.Helper()
	ctx := context.Background()

	plan := seedPlan(t, db, "Payment Plan", 500)
	_, err := AddToCart(ctx, db, userID, plan.ID, 1)
	require.NoError(t, err)

	order, err := Checkout(ctx, db, userID, models.BillingAddress{})
	require.NoError(t, err)
	return order
}

func seedPayment(t *testing.T, db *sql.DB, orderID int64, reference string) *models.Payment {
	t.Helper()

	payment, err := CreatePayment(context.Background(), db, &models.Payment{
		OrderID:          orderID,
		PaymentMethod:    models.PaymentMethodCreditCard,
		PaymentGateway:   "payfast",
		Amount:           decimal.NewFromInt(500),
		Currency:         "ZAR",
		Status:           models.PaymentStatusPending,
		GatewayReference: reference,
	})
	require.NoError(t, err)
	return payment
}

func TestCreateAndGetPayment(t *testing.T) {
	db, cleanup := testutil.StartPostgres(t)
	defer cleanup()
	ctx := context.Background()

	order := seedOrder(t, db, 1)
	payment := seedPayment(t, db, order.ID, "PF_1_TESTREF00001")

	fetched, err := GetPayment(ctx, db, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.OrderID)
	assert.Equal(t, models.PaymentStatusPending, fetched.Status)
	assert.Equal(t, "PF_1_TESTREF00001", fetched.GatewayReference)
	assert.Empty(t, fetched.GatewayResponse)

	_, err = GetPayment(ctx, db, 99999)
	assert.ErrorIs(t, err, database.ErrPaymentNotFound)
}

func TestListPaymentsByOrder(t *testing.T) {
	db, cleanup := testutil.StartPostgres(t)
	defer cleanup()
	ctx := context.Background()

	order := seedOrder(t, db, 1)
	seedPayment(t, db, order.ID, "PF_1_ATTEMPT00001")
	seedPayment(t, db, order.ID, "PF_1_ATTEMPT00002")

	payments, err := ListPaymentsByOrder(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestCancelPayment(t *testing.T) {
	db, cleanup := testutil.StartPostgres(t)
	defer cleanup()
	ctx := context.Background()

	order := seedOrder(t, db, 1)
	payment := seedPayment(t, db, order.ID, "PF_1_CANCELME0001")

	cancelled, err := CancelPayment(ctx, db, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, cancelled.Status)

	// Terminal payments cannot be cancelled again.
	_, err = CancelPayment(ctx, db, payment.ID)
	assert.ErrorIs(t, err, database.ErrInvalidState)

	_, err = CancelPayment(ctx, db, 99999)
	assert.ErrorIs(t, err, database.ErrPaymentNotFound)
}

func TestSetPaymentResultAndMarkOrderPaid(t *testing.T) {
	db, cleanup := testutil.StartPostgres(t)
	defer cleanup()
	ctx := context.Background()

	order := seedOrder(t, db, 1)
	payment := seedPayment(t, db, order.ID, "PF_1_RESULT000001")

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		locked, err := GetPaymentByReferenceForUpdate(ctx, tx, payment.GatewayReference)
		if err != nil {
			return err
		}

		response := models.GatewayResponse{"payment_status": "COMPLETE"}
		if err := SetPaymentResultTx(ctx, tx, locked.ID, models.PaymentStatusCompleted, "txn-1", response); err != nil {
			return err
		}

		paid, err := MarkOrderPaidTx(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		assert.True(t, paid)

		// Second transition attempt does not apply.
		paid, err = MarkOrderPaidTx(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		assert.False(t, paid)

		return nil
	})
	require.NoError(t, err)

	fetched, err := GetPayment(ctx, db, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, fetched.Status)
	assert.Equal(t, "txn-1", fetched.TransactionID)
	assert.Equal(t, models.GatewayResponse{"payment_status": "COMPLETE"}, fetched.GatewayResponse)

	reread, err := GetOrder(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, reread.Status)
}
