package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusInProcess OrderStatus = "in-process"
)

// Address представляет адрес доставки из checkout-сессии
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OrderItem представляет позицию заказа из line items Stripe
type OrderItem struct {
	PriceID     string  `json:"price_id"`
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity"`
	AmountTotal float64 `json:"amount_total"`
}

// Order представляет заказ, созданный из завершенной checkout-сессии.
// TotalAmount хранится в основных единицах валюты (amount_total / 100).
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          string      `json:"user" db:"user_id"`
	Status          OrderStatus `json:"status" db:"status"`
	TotalAmount     float64     `json:"totalAmount" db:"total_amount"`
	ShippingAddress Address     `json:"shippingAddress"`
	Items           []OrderItem `json:"items,omitempty"`
	StripeSessionID string      `json:"stripe_session_id" db:"stripe_session_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// PriceType тип цены, передаваемый фронтендом при создании checkout-сессии
type PriceType string

const (
	PriceTypeRecurring PriceType = "recurring"
	PriceTypeOneTime   PriceType = "one_time"
)

// CheckoutRequest запрос фронтенда на создание checkout-сессии
type CheckoutRequest struct {
	PriceID   string
	PriceType PriceType
	Quantity  int64
}
