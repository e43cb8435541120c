// Package gateway builds redirect-based payment initiations and verifies the
// asynchronous notifications the gateways post back. Everything here is local
// computation; the gateway itself is only ever reached by redirecting the
// buyer's browser.
package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Ba9900/Mzize-Tradings/internal/models"
	"github.com/google/uuid"
)

// ErrInvalidSignature means the recomputed signature did not match the one
// received. Notifications failing this check must not touch any state.
var ErrInvalidSignature = errors.New("notification signature mismatch")

type PayerInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CardType  string `json:"card_type"`
	BankCode  string `json:"bank_code"`
}

// Initiation is the redirect contract: a target URL plus a flat parameter map
// to submit to it, and the pending payment row recorded for the attempt.
type Initiation struct {
	RedirectURL string            `json:"payment_url"`
	Params      map[string]string `json:"payment_data"`
	Payment     *models.Payment   `json:"payment"`
}

// Notification is a verified, normalized inbound gateway callback.
type Notification struct {
	Reference     string
	TransactionID string
	Succeeded     bool
	Fields        map[string]string
}

type Gateway interface {
	Name() string
	Method() string
	Initiate(ctx context.Context, db *sql.DB, order *models.Order, payer PayerInfo) (*Initiation, error)
	// ParseNotification verifies authenticity before anything else and
	// returns ErrInvalidSignature on mismatch.
	ParseNotification(form url.Values) (*Notification, error)
}

func newReference(prefix string, orderID int64) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return fmt.Sprintf("%s_%d_%s", prefix, orderID, token)
}

func flatten(form url.Values) map[string]string {
	fields := make(map[string]string, len(form))
	for key := range form {
		fields[key] = form.Get(key)
	}
	return fields
}
