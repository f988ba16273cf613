package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/internal/middleware"
	"github.com/Dhoini/storefront-payments/internal/service"
	"github.com/Dhoini/storefront-payments/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler обработчик операций checkout и биллинг-портала
type CheckoutHandler struct {
	checkout service.CheckoutService
	log      *logger.Logger
}

// NewCheckoutHandler создает новый обработчик checkout
func NewCheckoutHandler(checkout service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		log:      log,
	}
}

// createSessionRequest тело запроса на создание checkout-сессии
type createSessionRequest struct {
	Price struct {
		ID   string `json:"id" binding:"required"`
		Type string `json:"type" binding:"required"`
	} `json:"price" binding:"required"`
	Quantity int64 `json:"quantity"`
}

// CreateCheckoutSession создает checkout-сессию для аутентифицированного
// пользователя и возвращает ответ Stripe как есть
func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	caller, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	session, err := h.checkout.CreateCheckoutSession(c.Request.Context(), caller, domain.CheckoutRequest{
		PriceID:   req.Price.ID,
		PriceType: domain.PriceType(req.Price.Type),
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.handleCheckoutError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", session)
}

// CreatePortalLink возвращает ссылку на биллинг-портал клиента
func (h *CheckoutHandler) CreatePortalLink(c *gin.Context) {
	caller, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	link, err := h.checkout.CreatePortalLink(c.Request.Context(), caller)
	if err != nil {
		h.handleCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer_portal_link": link})
}

// handleCheckoutError транслирует ошибки сервиса в HTTP статусы
func (h *CheckoutHandler) handleCheckoutError(c *gin.Context, err error) {
	var extErr *domain.ExternalServiceError

	switch {
	case errors.Is(err, domain.ErrInvalidPriceType):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported price type"})
	case errors.Is(err, domain.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Customer not found"})
	case errors.Is(err, domain.ErrMissingCredentials):
		h.log.Error("Stripe credentials are not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Payment provider is not configured"})
	case errors.As(err, &extErr):
		h.log.Warn("Stripe call failed: %v", extErr)
		if extErr.StatusCode >= 400 && extErr.StatusCode < 500 {
			c.JSON(http.StatusBadRequest, gin.H{"message": extErr.Message})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"message": "Payment provider is unavailable"})
		}
	default:
		h.log.Error("Checkout operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
