package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/internal/integration/stripe"
	"github.com/Dhoini/storefront-payments/internal/kafka/producer"
	"github.com/Dhoini/storefront-payments/internal/metrics"
	"github.com/Dhoini/storefront-payments/internal/repository"
	"github.com/Dhoini/storefront-payments/pkg/logger"
)

// Таймаут зависимого вызова line items: его отказ не должен
// блокировать сохранение заказа.
const lineItemsTimeout = 10 * time.Second

// ReconcilerService интерфейс сервиса согласования webhook-событий
type ReconcilerService interface {
	// HandleEvent применяет одно действие согласования по типу события.
	// Порядок доставки событий не гарантируется и не предполагается.
	HandleEvent(ctx context.Context, event stripe.WebhookEvent) error
}

type reconcilerService struct {
	products     repository.ProductRepository
	customers    repository.CustomerRepository
	orders       repository.OrderRepository
	stripeClient *stripe.Client
	producer     producer.EventProducer
	metrics      metrics.WebhookMetrics
	log          *logger.Logger
}

// NewReconcilerService создает новый сервис согласования
func NewReconcilerService(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	stripeClient *stripe.Client,
	eventProducer producer.EventProducer,
	webhookMetrics metrics.WebhookMetrics,
	log *logger.Logger,
) ReconcilerService {
	return &reconcilerService{
		products:     products,
		customers:    customers,
		orders:       orders,
		stripeClient: stripeClient,
		producer:     eventProducer,
		metrics:      webhookMetrics,
		log:          log,
	}
}

// HandleEvent обрабатывает webhook-событие в зависимости от типа
func (s *reconcilerService) HandleEvent(ctx context.Context, event stripe.WebhookEvent) error {
	s.metrics.IncEventReceived(event.Type)

	var err error
	switch event.Type {
	case "product.created", "product.updated":
		err = s.reconcileProduct(ctx, event)
	case "checkout.session.completed":
		err = s.reconcileOrder(ctx, event)
	default:
		s.log.Info("Ignored webhook event type: %s", event.Type)
		s.metrics.IncEventIgnored(event.Type)
		return nil
	}

	if err != nil {
		s.metrics.IncEventFailed(event.Type)
		return err
	}

	s.metrics.IncEventHandled(event.Type)
	return nil
}

// reconcileProduct выполняет идемпотентный upsert товара по stripe_product_id.
// Цена и остатки этим путем не трогаются: событие не несет их в пригодном
// виде. Это известный пробел данных каталога, а не ошибка обработчика.
func (s *reconcilerService) reconcileProduct(ctx context.Context, event stripe.WebhookEvent) error {
	var productObj stripe.ProductObject
	if err := json.Unmarshal(event.Data.Object, &productObj); err != nil {
		return fmt.Errorf("failed to parse product object: %w", err)
	}
	if productObj.ID == "" {
		return fmt.Errorf("%w: product id missing in event data", domain.ErrInvalidInput)
	}

	existing, found, err := s.products.FindByStripeID(ctx, productObj.ID)
	if err != nil {
		return fmt.Errorf("failed to look up product: %w", err)
	}

	var product domain.Product
	if found {
		existing.Name = productObj.Name
		existing.Description = productObj.Description
		if err := s.products.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		product = existing
		s.metrics.IncProductUpserted("updated")
		s.log.Info("Updated product %s from event %s", productObj.ID, event.ID)
	} else {
		product = domain.Product{
			StripeProductID: productObj.ID,
			Name:            productObj.Name,
			Description:     productObj.Description,
		}
		product, err = s.products.Create(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		s.metrics.IncProductUpserted("created")
		s.log.Info("Created product %s from event %s", productObj.ID, event.ID)
	}

	// Публикация события не критична для согласования
	if err := s.producer.PublishProductUpserted(ctx, product); err != nil {
		s.log.Warn("Failed to publish product upserted event: %v", err)
	}

	return nil
}

// reconcileOrder создает заказ из завершенной checkout-сессии.
// Обрабатываются только разовые платежи: подписочные сессии закрываются
// отдельным биллинговым флоу и здесь намеренно игнорируются.
func (s *reconcilerService) reconcileOrder(ctx context.Context, event stripe.WebhookEvent) error {
	var session stripe.CheckoutSessionObject
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session object: %w", err)
	}

	if session.Mode != "payment" {
		s.log.Info("Skipping checkout session %s with mode %s", session.ID, session.Mode)
		return nil
	}

	customer, found, err := s.customers.FindByStripeID(ctx, session.Customer)
	if err != nil {
		return fmt.Errorf("failed to look up customer: %w", err)
	}
	if !found {
		// Сессия не должна ссылаться на неизвестного клиента,
		// но обработчик сообщает об этом, а не падает
		return domain.NewNotFoundError("customer", session.Customer)
	}

	order := domain.Order{
		UserID:          customer.UserID,
		Status:          domain.OrderStatusPending,
		TotalAmount:     float64(session.AmountTotal) / 100,
		ShippingAddress: session.CustomerDetails.Address,
		StripeSessionID: session.ID,
	}

	order.Items = s.fetchLineItems(ctx, session.ID)

	order, err = s.orders.Create(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	s.metrics.IncOrderCreated()
	s.metrics.ObserveOrderAmount(order.TotalAmount)
	s.log.Info("Created order %s for user %s from session %s", order.ID, order.UserID, session.ID)

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.log.Warn("Failed to publish order created event: %v", err)
	}

	return nil
}

// fetchLineItems запрашивает позиции сессии с ограниченным таймаутом.
// Частичный успех допустим: заказ без перечня позиций все равно
// сохраняется и может быть согласован вручную.
func (s *reconcilerService) fetchLineItems(ctx context.Context, sessionID string) []domain.OrderItem {
	itemsCtx, cancel := context.WithTimeout(ctx, lineItemsTimeout)
	defer cancel()

	list, err := s.stripeClient.ListSessionLineItems(itemsCtx, sessionID)
	if err != nil {
		s.log.Warn("Failed to fetch line items for session %s, persisting order without items: %v", sessionID, err)
		return nil
	}

	items := make([]domain.OrderItem, 0, len(list.Data))
	for _, li := range list.Data {
		items = append(items, domain.OrderItem{
			PriceID:     li.Price.ID,
			Description: li.Description,
			Quantity:    li.Quantity,
			AmountTotal: float64(li.AmountTotal) / 100,
		})
	}

	return items
}
