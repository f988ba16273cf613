package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/pkg/logger"
	"github.com/IBM/sarama"
)

const (
	TopicOrderCreated    = "storefront.order.created"
	TopicProductUpserted = "storefront.product.upserted"
)

// OrderEvent представляет событие заказа для Kafka
type OrderEvent struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Status      domain.OrderStatus `json:"status"`
	TotalAmount float64            `json:"total_amount"`
	SessionID   string             `json:"session_id"`
	Timestamp   time.Time          `json:"timestamp"`
}

// ProductEvent представляет событие синхронизации товара для Kafka
type ProductEvent struct {
	ID              string    `json:"id"`
	StripeProductID string    `json:"stripe_product_id"`
	Name            string    `json:"name"`
	Timestamp       time.Time `json:"timestamp"`
}

// EventProducer интерфейс для публикации событий согласования
type EventProducer interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
	PublishProductUpserted(ctx context.Context, product domain.Product) error
	Close() error
}

type kafkaEventProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaEventProducer создает новый продюсер событий согласования
func NewKafkaEventProducer(brokers []string, log *logger.Logger) (EventProducer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &kafkaEventProducer{
		producer: producer,
		log:      log,
	}, nil
}

// PublishOrderCreated публикует событие о создании заказа
func (p *kafkaEventProducer) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	event := OrderEvent{
		ID:          order.ID.String(),
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		SessionID:   order.StripeSessionID,
		Timestamp:   time.Now(),
	}
	return p.publishEvent(TopicOrderCreated, order.ID.String(), event)
}

// PublishProductUpserted публикует событие о синхронизации товара
func (p *kafkaEventProducer) PublishProductUpserted(ctx context.Context, product domain.Product) error {
	event := ProductEvent{
		ID:              product.ID.String(),
		StripeProductID: product.StripeProductID,
		Name:            product.Name,
		Timestamp:       time.Now(),
	}
	return p.publishEvent(TopicProductUpserted, product.StripeProductID, event)
}

// publishEvent публикует событие в Kafka.
// Ключ сообщения выбирается по сущности, чтобы события одной сущности
// попадали в одну партицию и сохраняли порядок.
func (p *kafkaEventProducer) publishEvent(topic, key string, event any) error {
	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(topic),
			},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Info("Published event to topic %s: partition=%d offset=%d", topic, partition, offset)
	return nil
}

// Close закрывает продюсер
func (p *kafkaEventProducer) Close() error {
	return p.producer.Close()
}

// NoOpProducer заглушка продюсера, когда Kafka не настроена.
// Публикация событий не критична для основного флоу согласования.
type NoOpProducer struct{}

// PublishOrderCreated ничего не делает
func (NoOpProducer) PublishOrderCreated(ctx context.Context, order domain.Order) error { return nil }

// PublishProductUpserted ничего не делает
func (NoOpProducer) PublishProductUpserted(ctx context.Context, product domain.Product) error {
	return nil
}

// Close ничего не делает
func (NoOpProducer) Close() error { return nil }
