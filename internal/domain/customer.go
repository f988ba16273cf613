package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer представляет связь локального пользователя с клиентом Stripe.
// Связь один-к-одному: у пользователя не может быть двух клиентов Stripe.
type Customer struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	StripeCustomerID string    `json:"stripe_customer_id" db:"stripe_customer_id"`
	Email            string    `json:"email" db:"email"`
	Name             string    `json:"name" db:"name"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Identity представляет аутентифицированного пользователя из токена
type Identity struct {
	UserID string
	Email  string
	Name   string
}
