package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product представляет товар каталога, синхронизируемый из Stripe
type Product struct {
	ID              uuid.UUID `json:"id" db:"id"`
	StripeProductID string    `json:"stripe_product_id" db:"stripe_product_id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
