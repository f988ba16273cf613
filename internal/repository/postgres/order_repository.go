package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// OrderRepository реализация репозитория заказов на PostgreSQL.
// Адрес доставки и позиции заказа хранятся в JSONB-колонках.
type OrderRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewOrderRepository создает новый PostgreSQL репозиторий заказов
func NewOrderRepository(db *sqlx.DB, log *logger.Logger) *OrderRepository {
	return &OrderRepository{db: db, log: log}
}

// Create создает новый заказ
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `
        INSERT INTO orders (id, user_id, status, total_amount, shipping_address, items, stripe_session_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err = r.db.ExecContext(ctx, query,
		order.ID, order.UserID, order.Status, order.TotalAmount,
		addressJSON, itemsJSON, order.StripeSessionID,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to create order: %v", err)
		return domain.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// FindByStripeSessionID возвращает заказ по идентификатору checkout-сессии
func (r *OrderRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (domain.Order, bool, error) {
	query := `
        SELECT id, user_id, status, total_amount, shipping_address, items, stripe_session_id, created_at, updated_at
        FROM orders
        WHERE stripe_session_id = $1
    `

	var row struct {
		ID              uuid.UUID          `db:"id"`
		UserID          string             `db:"user_id"`
		Status          domain.OrderStatus `db:"status"`
		TotalAmount     float64            `db:"total_amount"`
		ShippingAddress []byte             `db:"shipping_address"`
		Items           []byte             `db:"items"`
		StripeSessionID string             `db:"stripe_session_id"`
		CreatedAt       time.Time          `db:"created_at"`
		UpdatedAt       time.Time          `db:"updated_at"`
	}

	err := r.db.QueryRowxContext(ctx, query, sessionID).StructScan(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, false, nil
		}
		r.log.Error("Failed to find order by session id: %v", err)
		return domain.Order{}, false, fmt.Errorf("failed to find order: %w", err)
	}

	order := domain.Order{
		ID:              row.ID,
		UserID:          row.UserID,
		Status:          row.Status,
		TotalAmount:     row.TotalAmount,
		StripeSessionID: row.StripeSessionID,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}

	if err := json.Unmarshal(row.ShippingAddress, &order.ShippingAddress); err != nil {
		return domain.Order{}, false, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}
	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &order.Items); err != nil {
			return domain.Order{}, false, fmt.Errorf("failed to unmarshal order items: %w", err)
		}
	}

	return order, true, nil
}
