package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type HousePlan struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	Bedrooms         int             `json:"bedrooms"`
	Bathrooms        decimal.Decimal `json:"bathrooms"`
	Stories          int             `json:"stories"`
	GarageSpaces     int             `json:"garage_spaces"`
	SquareFootage    int             `json:"square_footage"`
	StyleCategory    string          `json:"style_category"`
	FeaturedImageURL string          `json:"featured_image_url,omitempty"`
	GalleryImages    StringList      `json:"gallery_images"`
	PlanFiles        StringList      `json:"plan_files"`
	IsFeatured       bool            `json:"is_featured"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PlanID    int64     `json:"plan_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	// Resolved live from the catalog at read time; zero when the plan
	// has been removed or deactivated since the item was added.
	PlanTitle string          `json:"plan_title,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID             int64           `json:"id"`
	OrderNumber    string          `json:"order_number"`
	UserID         int64           `json:"user_id"`
	Status         string          `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	BillingAddress BillingAddress  `json:"billing_address"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	PlanID     int64           `json:"plan_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Payment struct {
	ID               int64           `json:"id"`
	OrderID          int64           `json:"order_id"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentGateway   string          `json:"payment_gateway"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	GatewayReference string          `json:"gateway_reference"`
	TransactionID    string          `json:"transaction_id,omitempty"`
	GatewayResponse  GatewayResponse `json:"gateway_response"`

	// Card payments.
	CardType     string `json:"card_type,omitempty"`
	CardLastFour string `json:"card_last_four,omitempty"`

	// EFT payments.
	BankName      string `json:"bank_name,omitempty"`
	BankReference string `json:"bank_reference,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
	PaymentStatusCancelled  = "cancelled"
)

const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodEFT        = "eft_bank"
)

func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentStatusTerminal reports whether a payment can no longer change state.
// Reconciling a terminal payment is a no-op acknowledgement.
func PaymentStatusTerminal(status string) bool {
	switch status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}
