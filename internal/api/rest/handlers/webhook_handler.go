package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Dhoini/storefront-payments/internal/integration/stripe"
	"github.com/Dhoini/storefront-payments/internal/metrics"
	"github.com/Dhoini/storefront-payments/internal/service"
	"github.com/Dhoini/storefront-payments/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandler обработчик входящих вебхуков Stripe
type WebhookHandler struct {
	reconciler    service.ReconcilerService
	webhookSecret string
	metrics       metrics.WebhookMetrics
	log           *logger.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков
func NewWebhookHandler(
	reconciler service.ReconcilerService,
	webhookSecret string,
	webhookMetrics metrics.WebhookMetrics,
	log *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		reconciler:    reconciler,
		webhookSecret: webhookSecret,
		metrics:       webhookMetrics,
		log:           log,
	}
}

// HandleStripeWebhook принимает событие Stripe, проверяет подпись и
// передает событие сервису согласования. После успешной проверки подписи
// доставка всегда подтверждается кодом 200: отказ обработчика не должен
// провоцировать бесконечные повторы со стороны Stripe.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// Подпись считается по сырому телу, до любого парсинга
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warn("Failed to read webhook body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot read request body"})
		return
	}

	signatureHeader := c.GetHeader("Stripe-Signature")
	if err := stripe.VerifySignature(payload, signatureHeader, h.webhookSecret); err != nil {
		h.log.Warn("Webhook signature verification failed: %v", err)
		h.metrics.IncSignatureRejected()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid signature"})
		return
	}

	var event stripe.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.log.Warn("Failed to parse webhook event: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed event payload"})
		return
	}

	if err := h.reconciler.HandleEvent(c.Request.Context(), event); err != nil {
		h.log.Error("Failed to handle webhook event %s (%s): %v", event.ID, event.Type, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data received successfully"})
}
