package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/internal/integration/stripe"
	"github.com/Dhoini/storefront-payments/internal/kafka/producer"
	"github.com/Dhoini/storefront-payments/internal/metrics"
	"github.com/Dhoini/storefront-payments/internal/repository"
	"github.com/Dhoini/storefront-payments/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestLogger() *logger.Logger {
	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)
	return log
}

func newTestMetrics(log *logger.Logger) metrics.WebhookMetrics {
	return metrics.NewWebhookMetrics(prometheus.NewRegistry(), log)
}

type reconcilerFixture struct {
	products  *repository.InMemoryProductRepository
	customers *repository.InMemoryCustomerRepository
	orders    *repository.InMemoryOrderRepository
	service   ReconcilerService
}

func newReconcilerFixture(t *testing.T, stripeBaseURL string) *reconcilerFixture {
	t.Helper()
	log := newTestLogger()

	products := repository.NewInMemoryProductRepository(log)
	customers := repository.NewInMemoryCustomerRepository(log)
	orders := repository.NewInMemoryOrderRepository(log)

	client := stripe.NewClient(stripe.Config{
		APIKey:     "sk_test_123",
		WebhookKey: "whsec_test",
		BaseURL:    stripeBaseURL,
	}, log)

	svc := NewReconcilerService(products, customers, orders, client, producer.NoOpProducer{}, newTestMetrics(log), log)

	return &reconcilerFixture{
		products:  products,
		customers: customers,
		orders:    orders,
		service:   svc,
	}
}

func productEvent(t *testing.T, eventType, productID, name, description string) stripe.WebhookEvent {
	t.Helper()
	object, err := json.Marshal(map[string]any{
		"id":          productID,
		"name":        name,
		"description": description,
		"active":      true,
	})
	if err != nil {
		t.Fatal(err)
	}

	event := stripe.WebhookEvent{
		ID:   "evt_" + productID,
		Type: eventType,
	}
	event.Data.Object = object
	return event
}

func sessionEvent(t *testing.T, sessionID, customerID, mode string, amountTotal int64) stripe.WebhookEvent {
	t.Helper()
	object, err := json.Marshal(map[string]any{
		"id":           sessionID,
		"customer":     customerID,
		"mode":         mode,
		"amount_total": amountTotal,
		"currency":     "usd",
		"customer_details": map[string]any{
			"email": "buyer@example.com",
			"name":  "Buyer",
			"address": map[string]any{
				"line1":       "1 Main St",
				"city":        "Springfield",
				"postal_code": "12345",
				"country":     "US",
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	event := stripe.WebhookEvent{
		ID:   "evt_" + sessionID,
		Type: "checkout.session.completed",
	}
	event.Data.Object = object
	return event
}

func TestHandleEventProductUpsertIsIdempotent(t *testing.T) {
	f := newReconcilerFixture(t, "http://stripe.invalid")
	ctx := context.Background()

	created := productEvent(t, "product.created", "prod_1", "Widget", "A widget")
	if err := f.service.HandleEvent(ctx, created); err != nil {
		t.Fatalf("first event failed: %v", err)
	}
	if err := f.service.HandleEvent(ctx, created); err != nil {
		t.Fatalf("replayed event failed: %v", err)
	}

	updated := productEvent(t, "product.updated", "prod_1", "Widget v2", "A better widget")
	if err := f.service.HandleEvent(ctx, updated); err != nil {
		t.Fatalf("update event failed: %v", err)
	}

	if got := f.products.Count(); got != 1 {
		t.Fatalf("expected exactly 1 product record, got %d", got)
	}

	product, found, err := f.products.FindByStripeID(ctx, "prod_1")
	if err != nil || !found {
		t.Fatalf("product not found after upsert: found=%v err=%v", found, err)
	}
	if product.Name != "Widget v2" {
		t.Errorf("expected updated name, got %q", product.Name)
	}
}

func TestHandleEventProductUpdateArrivingFirstCreatesRecord(t *testing.T) {
	// Порядок доставки событий не гарантируется: product.updated
	// до product.created тоже должен создать запись
	f := newReconcilerFixture(t, "http://stripe.invalid")
	ctx := context.Background()

	event := productEvent(t, "product.updated", "prod_9", "Gadget", "")
	if err := f.service.HandleEvent(ctx, event); err != nil {
		t.Fatalf("event failed: %v", err)
	}

	if got := f.products.Count(); got != 1 {
		t.Fatalf("expected 1 product record, got %d", got)
	}
}

func TestHandleEventOrderCreation(t *testing.T) {
	lineItemCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/checkout/sessions/cs_1/line_items" {
			lineItemCalls++
			json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"data": []map[string]any{
					{
						"id":           "li_1",
						"description":  "Widget",
						"quantity":     2,
						"amount_total": 250000,
						"price":        map[string]any{"id": "price_1"},
					},
				},
				"has_more": false,
			})
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := newReconcilerFixture(t, server.URL)
	ctx := context.Background()

	_, err := f.customers.Create(ctx, domain.Customer{
		UserID:           "user-1",
		StripeCustomerID: "cus_1",
		Email:            "buyer@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	event := sessionEvent(t, "cs_1", "cus_1", "payment", 250000)
	if err := f.service.HandleEvent(ctx, event); err != nil {
		t.Fatalf("event failed: %v", err)
	}

	order, found, err := f.orders.FindByStripeSessionID(ctx, "cs_1")
	if err != nil || !found {
		t.Fatalf("order not found: found=%v err=%v", found, err)
	}

	if order.UserID != "user-1" {
		t.Errorf("expected order owner user-1, got %q", order.UserID)
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("expected pending status, got %q", order.Status)
	}
	// 250000 минорных единиц -> 2500.00
	if order.TotalAmount != 2500 {
		t.Errorf("expected total amount 2500, got %v", order.TotalAmount)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 order item, got %d", len(order.Items))
	}
	if order.Items[0].PriceID != "price_1" || order.Items[0].Quantity != 2 {
		t.Errorf("unexpected order item: %+v", order.Items[0])
	}
	if lineItemCalls != 1 {
		t.Errorf("expected 1 line items call, got %d", lineItemCalls)
	}
}

func TestHandleEventOrderPersistsWhenLineItemsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"something broke"}}`))
	}))
	defer server.Close()

	f := newReconcilerFixture(t, server.URL)
	ctx := context.Background()

	_, err := f.customers.Create(ctx, domain.Customer{
		UserID:           "user-2",
		StripeCustomerID: "cus_2",
	})
	if err != nil {
		t.Fatal(err)
	}

	event := sessionEvent(t, "cs_2", "cus_2", "payment", 9900)
	if err := f.service.HandleEvent(ctx, event); err != nil {
		t.Fatalf("event should succeed despite line items failure: %v", err)
	}

	order, found, err := f.orders.FindByStripeSessionID(ctx, "cs_2")
	if err != nil || !found {
		t.Fatalf("order not found: found=%v err=%v", found, err)
	}
	if len(order.Items) != 0 {
		t.Errorf("expected no items on partial success, got %d", len(order.Items))
	}
	if order.TotalAmount != 99 {
		t.Errorf("expected total amount 99, got %v", order.TotalAmount)
	}
}

func TestHandleEventSkipsSubscriptionSessions(t *testing.T) {
	f := newReconcilerFixture(t, "http://stripe.invalid")
	ctx := context.Background()

	event := sessionEvent(t, "cs_3", "cus_3", "subscription", 1000)
	if err := f.service.HandleEvent(ctx, event); err != nil {
		t.Fatalf("subscription session should be skipped, got error: %v", err)
	}

	if got := f.orders.Count(); got != 0 {
		t.Errorf("expected no orders for subscription session, got %d", got)
	}
}

func TestHandleEventUnknownCustomerFails(t *testing.T) {
	f := newReconcilerFixture(t, "http://stripe.invalid")

	event := sessionEvent(t, "cs_4", "cus_unknown", "payment", 1000)
	err := f.service.HandleEvent(context.Background(), event)
	if err == nil {
		t.Fatal("expected error for unknown customer")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	f := newReconcilerFixture(t, "http://stripe.invalid")

	event := stripe.WebhookEvent{ID: "evt_x", Type: "invoice.paid"}
	if err := f.service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown event type should be a no-op, got: %v", err)
	}

	if got := f.products.Count(); got != 0 {
		t.Errorf("expected no products, got %d", got)
	}
	if got := f.orders.Count(); got != 0 {
		t.Errorf("expected no orders, got %d", got)
	}
}
