// Package reconcile applies inbound gateway notifications to payment and
// order state. It is the only code path allowed to move an order to paid.
package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/Ba9900/Mzize-Tradings/internal/database"
	"github.com/Ba9900/Mzize-Tradings/internal/gateway"
	"github.com/Ba9900/Mzize-Tradings/internal/models"
	"github.com/Ba9900/Mzize-Tradings/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_notifications_total",
		Help: "Gateway notifications processed, by gateway and outcome.",
	},
	[]string{"gateway", "outcome"},
)

type Engine struct {
	db       *sql.DB
	gateways map[string]gateway.Gateway
	logger   *zap.Logger
}

func NewEngine(db *sql.DB, logger *zap.Logger, gateways ...gateway.Gateway) *Engine {
	byName := make(map[string]gateway.Gateway, len(gateways))
	for _, gw := range gateways {
		byName[gw.Name()] = gw
	}
	return &Engine{db: db, gateways: byName, logger: logger}
}

// Process verifies and applies one inbound notification. It returns
// gateway.ErrInvalidSignature for forged payloads; every other condition,
// including an unmatched reference, is acknowledged so the gateway does not
// retry forever. Duplicate deliveries are no-ops: the payment row is locked
// by gateway reference, and terminal payments are never re-applied.
func (e *Engine) Process(ctx context.Context, gatewayName string, form url.Values) error {
	gw, ok := e.gateways[gatewayName]
	if !ok {
		return fmt.Errorf("unknown gateway %q", gatewayName)
	}

	notification, err := gw.ParseNotification(form)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			notificationsTotal.WithLabelValues(gatewayName, "rejected").Inc()
			e.logger.Warn("notification signature mismatch",
				zap.String("gateway", gatewayName))
		}
		return err
	}

	outcome := "error"
	err = database.WithRetry(ctx, e.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var applyErr error
		outcome, applyErr = e.apply(ctx, tx, gatewayName, notification)
		return applyErr
	})
	notificationsTotal.WithLabelValues(gatewayName, outcome).Inc()
	if err != nil {
		return fmt.Errorf("apply notification: %w", err)
	}

	return nil
}

func (e *Engine) apply(ctx context.Context, tx *sql.Tx, gatewayName string, n *gateway.Notification) (string, error) {
	payment, err := store.GetPaymentByReferenceForUpdate(ctx, tx, n.Reference)
	if err != nil {
		if errors.Is(err, database.ErrPaymentNotFound) {
			// Malformed or replayed reference. Acknowledge so the gateway
			// stops retrying, but keep a record for operators.
			e.logger.Warn("notification for unknown payment reference",
				zap.String("gateway", gatewayName),
				zap.String("reference", n.Reference))
			return "unmatched", nil
		}
		return "error", err
	}

	if models.PaymentStatusTerminal(payment.Status) {
		e.logger.Info("duplicate notification for terminal payment",
			zap.String("gateway", gatewayName),
			zap.Int64("payment_id", payment.ID),
			zap.String("status", payment.Status))
		return "duplicate", nil
	}

	if !n.Succeeded {
		if err := store.SetPaymentResultTx(ctx, tx, payment.ID, models.PaymentStatusFailed, n.TransactionID, n.Fields); err != nil {
			return "error", err
		}
		e.logger.Info("payment failed",
			zap.String("gateway", gatewayName),
			zap.Int64("payment_id", payment.ID),
			zap.Int64("order_id", payment.OrderID))
		return "failed", nil
	}

	if err := store.LockOrderTx(ctx, tx, payment.OrderID); err != nil {
		return "error", err
	}

	completed, err := store.HasCompletedPayment(ctx, tx, payment.OrderID)
	if err != nil {
		return "error", err
	}
	if completed {
		// Another attempt already paid this order; only one may complete.
		e.logger.Warn("notification for order with completed payment",
			zap.String("gateway", gatewayName),
			zap.Int64("payment_id", payment.ID),
			zap.Int64("order_id", payment.OrderID))
		return "superseded", nil
	}

	if err := store.SetPaymentResultTx(ctx, tx, payment.ID, models.PaymentStatusCompleted, n.TransactionID, n.Fields); err != nil {
		return "error", err
	}

	paid, err := store.MarkOrderPaidTx(ctx, tx, payment.OrderID)
	if err != nil {
		return "error", err
	}
	if !paid {
		e.logger.Warn("order not in pending state at payment completion",
			zap.Int64("order_id", payment.OrderID))
	}

	e.logger.Info("payment completed",
		zap.String("gateway", gatewayName),
		zap.Int64("payment_id", payment.ID),
		zap.Int64("order_id", payment.OrderID),
		zap.String("transaction_id", n.TransactionID))
	return "completed", nil
}
