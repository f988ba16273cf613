package metrics

import (
	"github.com/Dhoini/storefront-payments/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebhookMetrics интерфейс для метрик обработки вебхуков
type WebhookMetrics interface {
	IncEventReceived(eventType string)
	IncEventHandled(eventType string)
	IncEventFailed(eventType string)
	IncEventIgnored(eventType string)
	IncSignatureRejected()
	IncOrderCreated()
	IncProductUpserted(action string)
	ObserveOrderAmount(amount float64)
}

type webhookMetrics struct {
	log               *logger.Logger
	eventsTotal       *prometheus.CounterVec
	signatureRejected prometheus.Counter
	ordersCreated     prometheus.Counter
	productsUpserted  *prometheus.CounterVec
	orderAmounts      prometheus.Histogram
}

// NewWebhookMetrics создает новые метрики вебхуков
func NewWebhookMetrics(registry *prometheus.Registry, log *logger.Logger) WebhookMetrics {
	eventsTotal := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "The total number of webhook events by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	signatureRejected := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_signature_rejected_total",
			Help: "The total number of webhook deliveries rejected on signature verification",
		},
	)

	ordersCreated := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "The total number of orders created from checkout sessions",
		},
	)

	productsUpserted := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_upserted_total",
			Help: "The total number of product upserts by action",
		},
		[]string{"action"},
	)

	orderAmounts := promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_amounts",
			Help:    "Order total amounts distribution",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
		},
	)

	return &webhookMetrics{
		log:               log,
		eventsTotal:       eventsTotal,
		signatureRejected: signatureRejected,
		ordersCreated:     ordersCreated,
		productsUpserted:  productsUpserted,
		orderAmounts:      orderAmounts,
	}
}

// IncEventReceived увеличивает счетчик полученных событий
func (m *webhookMetrics) IncEventReceived(eventType string) {
	m.eventsTotal.WithLabelValues(eventType, "received").Inc()
}

// IncEventHandled увеличивает счетчик успешно обработанных событий
func (m *webhookMetrics) IncEventHandled(eventType string) {
	m.eventsTotal.WithLabelValues(eventType, "handled").Inc()
}

// IncEventFailed увеличивает счетчик событий с ошибкой обработки
func (m *webhookMetrics) IncEventFailed(eventType string) {
	m.eventsTotal.WithLabelValues(eventType, "failed").Inc()
}

// IncEventIgnored увеличивает счетчик проигнорированных событий
func (m *webhookMetrics) IncEventIgnored(eventType string) {
	m.eventsTotal.WithLabelValues(eventType, "ignored").Inc()
}

// IncSignatureRejected увеличивает счетчик отклоненных подписей
func (m *webhookMetrics) IncSignatureRejected() {
	m.signatureRejected.Inc()
}

// IncOrderCreated увеличивает счетчик созданных заказов
func (m *webhookMetrics) IncOrderCreated() {
	m.ordersCreated.Inc()
}

// IncProductUpserted увеличивает счетчик upsert-ов товаров
func (m *webhookMetrics) IncProductUpserted(action string) {
	m.productsUpserted.WithLabelValues(action).Inc()
}

// ObserveOrderAmount записывает сумму заказа
func (m *webhookMetrics) ObserveOrderAmount(amount float64) {
	m.orderAmounts.Observe(amount)
}
