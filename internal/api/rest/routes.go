package rest

import (
	"github.com/Dhoini/storefront-payments/internal/api/rest/handlers"
	"github.com/Dhoini/storefront-payments/internal/middleware"
	"github.com/Dhoini/storefront-payments/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps зависимости HTTP роутера
type RouterDeps struct {
	WebhookHandler  *handlers.WebhookHandler
	CheckoutHandler *handlers.CheckoutHandler
	HealthHandler   *handlers.HealthHandler
	JWTMiddleware   *middleware.JWTMiddleware
	Registry        *prometheus.Registry
	Log             *logger.Logger
}

// SetupRouter настраивает маршруты HTTP API
func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(gin.Recovery())

	router.GET("/health", deps.HealthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// Вебхук аутентифицируется подписью Stripe, а не JWT
	router.POST("/webhooks/stripe", deps.WebhookHandler.HandleStripeWebhook)

	api := router.Group("/api/v1")
	api.Use(deps.JWTMiddleware.RequireAuth())
	{
		api.POST("/checkout/sessions", deps.CheckoutHandler.CreateCheckoutSession)
		api.GET("/checkout/portal-link", deps.CheckoutHandler.CreatePortalLink)
	}

	return router
}
