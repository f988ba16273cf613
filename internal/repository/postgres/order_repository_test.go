package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Dhoini/storefront-payments/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

var orderColumns = []string{"id", "user_id", "status", "total_amount", "shipping_address", "items", "stripe_session_id", "created_at", "updated_at"}

func TestOrderCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db, testLogger())

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			sqlmock.AnyArg(), "user-1", domain.OrderStatusPending, 2500.0,
			sqlmock.AnyArg(), sqlmock.AnyArg(), "cs_1",
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	order, err := repo.Create(context.Background(), domain.Order{
		UserID:          "user-1",
		Status:          domain.OrderStatusPending,
		TotalAmount:     2500,
		StripeSessionID: "cs_1",
		Items: []domain.OrderItem{
			{PriceID: "price_1", Quantity: 2, AmountTotal: 2500},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID == uuid.Nil {
		t.Error("expected generated order id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestOrderFindByStripeSessionID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db, testLogger())

	addressJSON, _ := json.Marshal(domain.Address{Line1: "1 Main St", City: "Springfield", Country: "US"})
	itemsJSON, _ := json.Marshal([]domain.OrderItem{{PriceID: "price_1", Quantity: 2, AmountTotal: 2500}})
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("cs_1").
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(uuid.New(), "user-1", "pending", 2500.0, addressJSON, itemsJSON, "cs_1", now, now))

	order, found, err := repo.FindByStripeSessionID(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected order to be found")
	}
	if order.ShippingAddress.City != "Springfield" {
		t.Errorf("unexpected shipping address: %+v", order.ShippingAddress)
	}
	if len(order.Items) != 1 || order.Items[0].PriceID != "price_1" {
		t.Errorf("unexpected items: %+v", order.Items)
	}
}

func TestOrderFindByStripeSessionIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db, testLogger())

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("cs_missing").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	_, found, err := repo.FindByStripeSessionID(context.Background(), "cs_missing")
	if err != nil {
		t.Fatalf("missing row must not be an error, got: %v", err)
	}
	if found {
		t.Fatal("expected order to be absent")
	}
}
