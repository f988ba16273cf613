package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CustomerRepository реализация репозитория клиентов на PostgreSQL
type CustomerRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewCustomerRepository создает новый PostgreSQL репозиторий клиентов
func NewCustomerRepository(db *sqlx.DB, log *logger.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, log: log}
}

// FindByUserID возвращает клиента по идентификатору пользователя
func (r *CustomerRepository) FindByUserID(ctx context.Context, userID string) (domain.Customer, bool, error) {
	query := `
        SELECT id, user_id, stripe_customer_id, email, name, created_at, updated_at
        FROM customers
        WHERE user_id = $1
    `
	return r.findOne(ctx, query, userID)
}

// FindByStripeID возвращает клиента по внешнему идентификатору Stripe
func (r *CustomerRepository) FindByStripeID(ctx context.Context, stripeCustomerID string) (domain.Customer, bool, error) {
	query := `
        SELECT id, user_id, stripe_customer_id, email, name, created_at, updated_at
        FROM customers
        WHERE stripe_customer_id = $1
    `
	return r.findOne(ctx, query, stripeCustomerID)
}

// findOne выполняет запрос одной записи с явным признаком наличия
func (r *CustomerRepository) findOne(ctx context.Context, query string, arg any) (domain.Customer, bool, error) {
	var customer domain.Customer
	err := r.db.QueryRowxContext(ctx, query, arg).StructScan(&customer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, false, nil
		}
		r.log.Error("Failed to find customer: %v", err)
		return domain.Customer{}, false, fmt.Errorf("failed to find customer: %w", err)
	}

	return customer, true, nil
}

// Create создает нового клиента
func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	query := `
        INSERT INTO customers (id, user_id, stripe_customer_id, email, name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	_, err := r.db.ExecContext(ctx, query,
		customer.ID, customer.UserID, customer.StripeCustomerID,
		customer.Email, customer.Name, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to create customer: %v", err)
		return domain.Customer{}, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

// Update обновляет существующего клиента
func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	query := `
        UPDATE customers
        SET user_id = $1, email = $2, name = $3, updated_at = $4
        WHERE id = $5
    `

	res, err := r.db.ExecContext(ctx, query,
		customer.UserID, customer.Email, customer.Name, time.Now(), customer.ID)
	if err != nil {
		r.log.Error("Failed to update customer: %v", err)
		return fmt.Errorf("failed to update customer: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows count: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
