package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/pkg/logger"
	"github.com/google/uuid"
)

// CustomerRepository интерфейс для работы с клиентами
type CustomerRepository interface {
	FindByUserID(ctx context.Context, userID string) (domain.Customer, bool, error)
	FindByStripeID(ctx context.Context, stripeCustomerID string) (domain.Customer, bool, error)
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	Update(ctx context.Context, customer domain.Customer) error
}

// InMemoryCustomerRepository реализация репозитория клиентов в памяти
type InMemoryCustomerRepository struct {
	customers map[uuid.UUID]domain.Customer
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemoryCustomerRepository создает новый репозиторий клиентов в памяти
func NewInMemoryCustomerRepository(log *logger.Logger) *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{
		customers: make(map[uuid.UUID]domain.Customer),
		log:       log,
	}
}

// FindByUserID возвращает клиента по идентификатору пользователя
func (r *InMemoryCustomerRepository) FindByUserID(ctx context.Context, userID string) (domain.Customer, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, customer := range r.customers {
		if customer.UserID == userID {
			return customer, true, nil
		}
	}

	return domain.Customer{}, false, nil
}

// FindByStripeID возвращает клиента по внешнему идентификатору Stripe
func (r *InMemoryCustomerRepository) FindByStripeID(ctx context.Context, stripeCustomerID string) (domain.Customer, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, customer := range r.customers {
		if customer.StripeCustomerID == stripeCustomerID {
			return customer, true, nil
		}
	}

	return domain.Customer{}, false, nil
}

// Create создает нового клиента
func (r *InMemoryCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Связь пользователь-клиент строго один-к-одному
	for _, c := range r.customers {
		if c.UserID == customer.UserID || c.StripeCustomerID == customer.StripeCustomerID {
			return domain.Customer{}, ErrDuplicate
		}
	}

	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	r.customers[customer.ID] = customer

	return customer, nil
}

// Update обновляет существующего клиента
func (r *InMemoryCustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.customers[customer.ID]
	if !exists {
		return ErrNotFound
	}

	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = time.Now()

	r.customers[customer.ID] = customer

	return nil
}

// Count возвращает количество клиентов (используется в тестах)
func (r *InMemoryCustomerRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.customers)
}
