package gateway

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/Ba9900/Mzize-Tradings/internal/config"
	"github.com/Ba9900/Mzize-Tradings/internal/models"
	"github.com/Ba9900/Mzize-Tradings/internal/store"
)

// PayFast handles credit card payments. The browser is redirected to the
// PayFast process URL with a signed parameter set; PayFast later posts an
// ITN (instant transaction notification) back to the notify URL.
type PayFast struct {
	cfg     config.PayFastConfig
	baseURL string
}

func NewPayFast(cfg config.PayFastConfig, baseURL string) *PayFast {
	return &PayFast{cfg: cfg, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *PayFast) Name() string   { return "payfast" }
func (p *PayFast) Method() string { return models.PaymentMethodCreditCard }

func (p *PayFast) Initiate(ctx context.Context, db *sql.DB, order *models.Order, payer PayerInfo) (*Initiation, error) {
	reference := newReference("PF", order.ID)

	params := map[string]string{
		"merchant_id":      p.cfg.MerchantID,
		"merchant_key":     p.cfg.MerchantKey,
		"return_url":       p.baseURL + "/api/payments/payfast/return",
		"cancel_url":       p.baseURL + "/api/payments/payfast/cancel",
		"notify_url":       p.baseURL + "/api/payments/payfast/notify",
		"name_first":       payer.FirstName,
		"name_last":        payer.LastName,
		"email_address":    payer.Email,
		"cell_number":      payer.Phone,
		"m_payment_id":     reference,
		"amount":           order.TotalAmount.StringFixed(2),
		"item_name":        fmt.Sprintf("House Plans - Order #%s", order.OrderNumber),
		"item_description": "House plan purchase from Mzize Tradings",
		"custom_str1":      fmt.Sprintf("%d", order.ID),
		"custom_str2":      p.Method(),
	}
	params["signature"] = p.sign(params)

	payment, err := store.CreatePayment(ctx, db, &models.Payment{
		OrderID:          order.ID,
		PaymentMethod:    p.Method(),
		PaymentGateway:   p.Name(),
		Amount:           order.TotalAmount,
		Currency:         "ZAR",
		Status:           models.PaymentStatusPending,
		GatewayReference: reference,
		CardType:         payer.CardType,
	})
	if err != nil {
		return nil, err
	}

	return &Initiation{
		RedirectURL: p.cfg.ProcessURL,
		Params:      params,
		Payment:     payment,
	}, nil
}

func (p *PayFast) ParseNotification(form url.Values) (*Notification, error) {
	fields := flatten(form)

	received := fields["signature"]
	if received == "" || received != p.sign(fields) {
		return nil, ErrInvalidSignature
	}

	return &Notification{
		Reference:     fields["m_payment_id"],
		TransactionID: fields["pf_payment_id"],
		Succeeded:     fields["payment_status"] == "COMPLETE",
		Fields:        fields,
	}, nil
}

// sign builds the keyed digest over the sorted key=value concatenation with
// the passphrase appended. The signature field itself is always excluded, so
// the same function serves initiation and notification reverification.
func (p *PayFast) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key != "signature" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[key]))
	}

	if p.cfg.Passphrase != "" {
		b.WriteString("&passphrase=")
		b.WriteString(url.QueryEscape(p.cfg.Passphrase))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
