package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/pkg/logger"
	"github.com/google/uuid"
)

// OrderRepository интерфейс для работы с заказами.
// Заказы создаются только из завершенных checkout-сессий, удаления нет.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (domain.Order, bool, error)
}

// InMemoryOrderRepository реализация репозитория заказов в памяти
type InMemoryOrderRepository struct {
	orders map[uuid.UUID]domain.Order
	mutex  sync.RWMutex
	log    *logger.Logger
}

// NewInMemoryOrderRepository создает новый репозиторий заказов в памяти
func NewInMemoryOrderRepository(log *logger.Logger) *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders: make(map[uuid.UUID]domain.Order),
		log:    log,
	}
}

// Create создает новый заказ
func (r *InMemoryOrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	r.orders[order.ID] = order

	return order, nil
}

// FindByStripeSessionID возвращает заказ по идентификатору checkout-сессии
func (r *InMemoryOrderRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (domain.Order, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, order := range r.orders {
		if order.StripeSessionID == sessionID {
			return order, true, nil
		}
	}

	return domain.Order{}, false, nil
}

// Count возвращает количество заказов (используется в тестах)
func (r *InMemoryOrderRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.orders)
}
