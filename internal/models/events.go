package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeCheckoutSubmitted = "CHECKOUT_SUBMITTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckoutSubmittedEvent published when a session checks out its cart
type CheckoutSubmittedEvent struct {
	BaseEvent
	SessionID       string             `json:"session_id"`
	CustomerID      int64              `json:"customer_id"`
	Items           []CheckoutItemData `json:"items"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	ShippingFee     decimal.Decimal    `json:"shipping_fee"`
	GrandTotal      decimal.Decimal    `json:"grand_total"`
	ShippingName    string             `json:"shipping_name"`
	ShippingAddress string             `json:"shipping_address"`
	ShippingPhone   string             `json:"shipping_phone"`
	PaymentMethod   string             `json:"payment_method"`
	Notes           string             `json:"notes,omitempty"`
}

// CheckoutItemData represents item data in events
type CheckoutItemData struct {
	BookID   int64           `json:"book_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}
