package gateway

import (
	"context"
	"crypto/sha512"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ba9900/Mzize-Tradings/internal/config"
	"github.com/Ba9900/Mzize-Tradings/internal/models"
	"github.com/Ba9900/Mzize-Tradings/internal/store"
)

// Ozow handles instant EFT payments against South African banks. The check
// field is a SHA512 digest over a fixed-order concatenation of the
// transaction fields plus the shared private key, with no separators.
type Ozow struct {
	cfg     config.OzowConfig
	baseURL string
}

func NewOzow(cfg config.OzowConfig, baseURL string) *Ozow {
	return &Ozow{cfg: cfg, baseURL: strings.TrimRight(baseURL, "/")}
}

func (o *Ozow) Name() string   { return "ozow" }
func (o *Ozow) Method() string { return models.PaymentMethodEFT }

func (o *Ozow) Initiate(ctx context.Context, db *sql.DB, order *models.Order, payer PayerInfo) (*Initiation, error) {
	reference := newReference("MZ", order.ID)
	bankReference := fmt.Sprintf("Mzize Tradings Order #%s", order.OrderNumber)

	params := map[string]string{
		"SiteCode":             o.cfg.SiteCode,
		"CountryCode":          "ZA",
		"CurrencyCode":         "ZAR",
		"Amount":               order.TotalAmount.StringFixed(2),
		"TransactionReference": reference,
		"BankReference":        bankReference,
		"Customer":             payer.Email,
		"SuccessUrl":           o.baseURL + "/api/payments/ozow/success",
		"CancelUrl":            o.baseURL + "/api/payments/ozow/cancel",
		"ErrorUrl":             o.baseURL + "/api/payments/ozow/error",
		"NotifyUrl":            o.baseURL + "/api/payments/ozow/notify",
		"IsTest":               strconv.FormatBool(o.cfg.IsTest),
	}
	params["HashCheck"] = o.hashCheck(params)

	payment, err := store.CreatePayment(ctx, db, &models.Payment{
		OrderID:          order.ID,
		PaymentMethod:    o.Method(),
		PaymentGateway:   o.Name(),
		Amount:           order.TotalAmount,
		Currency:         "ZAR",
		Status:           models.PaymentStatusPending,
		GatewayReference: reference,
		BankName:         payer.BankCode,
		BankReference:    bankReference,
	})
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for key, value := range params {
		query.Set(key, value)
	}

	return &Initiation{
		RedirectURL: strings.TrimRight(o.cfg.PayURL, "/") + "/?" + query.Encode(),
		Params:      params,
		Payment:     payment,
	}, nil
}

func (o *Ozow) ParseNotification(form url.Values) (*Notification, error) {
	fields := flatten(form)

	received := fields["HashCheck"]
	if received == "" || received != o.hashCheck(fields) {
		return nil, ErrInvalidSignature
	}

	return &Notification{
		Reference:     fields["TransactionReference"],
		TransactionID: fields["TransactionId"],
		Succeeded:     fields["Status"] == "Complete",
		Fields:        fields,
	}, nil
}

func (o *Ozow) hashCheck(params map[string]string) string {
	concat := params["SiteCode"] +
		params["CountryCode"] +
		params["CurrencyCode"] +
		params["Amount"] +
		params["TransactionReference"] +
		params["BankReference"] +
		o.cfg.PrivateKey

	sum := sha512.Sum512([]byte(concat))
	return hex.EncodeToString(sum[:])
}
