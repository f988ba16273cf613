package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/pkg/logger"
	"github.com/google/uuid"
)

// ProductRepository интерфейс для работы с товарами.
// Find-методы возвращают явный признак наличия записи вместо ошибки,
// чтобы upsert-ветвление не строилось на перехвате ErrNotFound.
type ProductRepository interface {
	FindByStripeID(ctx context.Context, stripeProductID string) (domain.Product, bool, error)
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) error
}

// InMemoryProductRepository реализация репозитория товаров в памяти
type InMemoryProductRepository struct {
	products map[uuid.UUID]domain.Product
	mutex    sync.RWMutex
	log      *logger.Logger
}

// NewInMemoryProductRepository создает новый репозиторий товаров в памяти
func NewInMemoryProductRepository(log *logger.Logger) *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[uuid.UUID]domain.Product),
		log:      log,
	}
}

// FindByStripeID возвращает товар по внешнему идентификатору Stripe
func (r *InMemoryProductRepository) FindByStripeID(ctx context.Context, stripeProductID string) (domain.Product, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, product := range r.products {
		if product.StripeProductID == stripeProductID {
			return product, true, nil
		}
	}

	return domain.Product{}, false, nil
}

// Create создает новый товар
func (r *InMemoryProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Проверка на уникальность внешнего идентификатора
	for _, p := range r.products {
		if p.StripeProductID == product.StripeProductID {
			return domain.Product{}, ErrDuplicate
		}
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	r.products[product.ID] = product

	return product, nil
}

// Update обновляет существующий товар
func (r *InMemoryProductRepository) Update(ctx context.Context, product domain.Product) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.products[product.ID]
	if !exists {
		return ErrNotFound
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()

	r.products[product.ID] = product

	return nil
}

// Count возвращает количество товаров (используется в тестах)
func (r *InMemoryProductRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.products)
}
