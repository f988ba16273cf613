package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dhoini/storefront-payments/internal/integration/stripe"
	"github.com/Dhoini/storefront-payments/internal/metrics"
	"github.com/Dhoini/storefront-payments/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const testWebhookSecret = "whsec_handler_test"

type fakeReconciler struct {
	events []stripe.WebhookEvent
	err    error
}

func (f *fakeReconciler) HandleEvent(ctx context.Context, event stripe.WebhookEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func newWebhookTestRouter(t *testing.T, reconciler *fakeReconciler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)

	handler := NewWebhookHandler(
		reconciler,
		testWebhookSecret,
		metrics.NewWebhookMetrics(prometheus.NewRegistry(), log),
		log,
	)

	router := gin.New()
	router.POST("/webhooks/stripe", handler.HandleStripeWebhook)
	return router
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandlerAcceptsSignedEvent(t *testing.T) {
	reconciler := &fakeReconciler{}
	router := newWebhookTestRouter(t, reconciler)

	payload := []byte(`{"id":"evt_1","type":"product.created","data":{"object":{"id":"prod_1","name":"Widget"}}}`)
	signature := stripe.ComputeSignatureHeader(payload, "1700000000", testWebhookSecret)

	rec := postWebhook(router, payload, signature)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Data received successfully") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if len(reconciler.events) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(reconciler.events))
	}
	if reconciler.events[0].Type != "product.created" {
		t.Errorf("unexpected event type: %s", reconciler.events[0].Type)
	}
}

func TestWebhookHandlerRejectsBadSignature(t *testing.T) {
	reconciler := &fakeReconciler{}
	router := newWebhookTestRouter(t, reconciler)

	payload := []byte(`{"id":"evt_1","type":"product.created"}`)
	signature := stripe.ComputeSignatureHeader(payload, "1700000000", "whsec_wrong_secret")

	rec := postWebhook(router, payload, signature)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(reconciler.events) != 0 {
		t.Errorf("event must not be dispatched on bad signature")
	}
}

func TestWebhookHandlerRejectsMissingSignature(t *testing.T) {
	reconciler := &fakeReconciler{}
	router := newWebhookTestRouter(t, reconciler)

	rec := postWebhook(router, []byte(`{"id":"evt_1"}`), "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookHandlerRejectsMalformedPayload(t *testing.T) {
	reconciler := &fakeReconciler{}
	router := newWebhookTestRouter(t, reconciler)

	payload := []byte(`{not json`)
	signature := stripe.ComputeSignatureHeader(payload, "1700000000", testWebhookSecret)

	rec := postWebhook(router, payload, signature)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(reconciler.events) != 0 {
		t.Errorf("malformed payload must not be dispatched")
	}
}

func TestWebhookHandlerAcknowledgesHandlerFailure(t *testing.T) {
	// После успешной проверки подписи доставка подтверждается всегда,
	// иначе Stripe будет бесконечно повторять событие
	reconciler := &fakeReconciler{err: errors.New("storage unavailable")}
	router := newWebhookTestRouter(t, reconciler)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)
	signature := stripe.ComputeSignatureHeader(payload, "1700000000", testWebhookSecret)

	rec := postWebhook(router, payload, signature)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite handler failure, got %d", rec.Code)
	}
}
