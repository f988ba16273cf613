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

// ProductRepository реализация репозитория товаров на PostgreSQL
type ProductRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewProductRepository создает новый PostgreSQL репозиторий товаров
func NewProductRepository(db *sqlx.DB, log *logger.Logger) *ProductRepository {
	return &ProductRepository{db: db, log: log}
}

// FindByStripeID возвращает товар по внешнему идентификатору Stripe
func (r *ProductRepository) FindByStripeID(ctx context.Context, stripeProductID string) (domain.Product, bool, error) {
	query := `
        SELECT id, stripe_product_id, name, description, created_at, updated_at
        FROM products
        WHERE stripe_product_id = $1
    `

	var product domain.Product
	err := r.db.QueryRowxContext(ctx, query, stripeProductID).StructScan(&product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, false, nil
		}
		r.log.Error("Failed to find product by stripe id: %v", err)
		return domain.Product{}, false, fmt.Errorf("failed to find product: %w", err)
	}

	return product, true, nil
}

// Create создает новый товар
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	query := `
        INSERT INTO products (id, stripe_product_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.StripeProductID, product.Name, product.Description,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to create product: %v", err)
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update обновляет существующий товар
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	query := `
        UPDATE products
        SET name = $1, description = $2, updated_at = $3
        WHERE id = $4
    `

	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, time.Now(), product.ID)
	if err != nil {
		r.log.Error("Failed to update product: %v", err)
		return fmt.Errorf("failed to update product: %w", err)
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
