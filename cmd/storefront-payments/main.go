package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dhoini/storefront-payments/internal/api/rest"
	"github.com/Dhoini/storefront-payments/internal/api/rest/handlers"
	"github.com/Dhoini/storefront-payments/internal/config"
	"github.com/Dhoini/storefront-payments/internal/integration/stripe"
	"github.com/Dhoini/storefront-payments/internal/kafka/producer"
	"github.com/Dhoini/storefront-payments/internal/metrics"
	"github.com/Dhoini/storefront-payments/internal/middleware"
	"github.com/Dhoini/storefront-payments/internal/repository"
	"github.com/Dhoini/storefront-payments/internal/repository/postgres"
	"github.com/Dhoini/storefront-payments/internal/service"
	"github.com/Dhoini/storefront-payments/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Инициализируем логгер
	log := initLogger()
	zapLog, _ := zap.NewProduction()
	defer zapLog.Sync()

	log.Infow("Storefront payments service starting up...")

	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}

	// Устанавливаем режим Gin в зависимости от окружения
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Выбираем хранилище: Postgres при наличии DSN, иначе in-memory
	var (
		products  repository.ProductRepository
		customers repository.CustomerRepository
		orders    repository.OrderRepository
	)
	if cfg.Database.DSN != "" {
		db, err := postgres.Connect(cfg.Database.DSN, zapLog)
		if err != nil {
			log.Fatalw("Failed to connect to database", "error", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Errorw("Error closing database connection", "error", err)
			}
		}()
		log.Infow("Database connection established")

		products = postgres.NewProductRepository(db, log)
		customers = postgres.NewCustomerRepository(db, log)
		orders = postgres.NewOrderRepository(db, log)
	} else {
		log.Warnw("Database DSN is not set, using in-memory repositories")
		products = repository.NewInMemoryProductRepository(log)
		customers = repository.NewInMemoryCustomerRepository(log)
		orders = repository.NewInMemoryOrderRepository(log)
	}

	// Инициализируем клиент Stripe
	stripeClient := stripe.NewClient(stripe.Config{
		APIKey:     cfg.Stripe.APIKey,
		WebhookKey: cfg.Stripe.WebhookSecret,
	}, log)

	// Инициализируем Kafka producer.
	// Публикация событий не критична для основного флоу
	var eventProducer producer.EventProducer
	eventProducer, err = producer.NewKafkaEventProducer(cfg.Kafka.Brokers, log)
	if err != nil {
		log.Errorw("Failed to initialize Kafka producer, continuing without event publishing", "error", err)
		eventProducer = producer.NoOpProducer{}
	} else {
		log.Infow("Kafka producer initialized")
		defer func() {
			if err := eventProducer.Close(); err != nil {
				log.Errorw("Error closing Kafka producer", "error", err)
			}
		}()
	}

	// Инициализируем метрики
	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry, log)

	// Инициализируем service layer
	reconciler := service.NewReconcilerService(products, customers, orders, stripeClient, eventProducer, webhookMetrics, log)
	checkout := service.NewCheckoutService(customers, stripeClient, service.CheckoutConfig{
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
	}, log)

	// Создаем валидатор токенов
	validator := &middleware.DefaultTokenValidator{
		Secret: []byte(cfg.Auth.JWTSecret),
	}

	// Настраиваем маршруты
	router := rest.SetupRouter(rest.RouterDeps{
		WebhookHandler:  handlers.NewWebhookHandler(reconciler, cfg.Stripe.WebhookSecret, webhookMetrics, log),
		CheckoutHandler: handlers.NewCheckoutHandler(checkout, log),
		HealthHandler:   handlers.NewHealthHandler(),
		JWTMiddleware:   middleware.NewJWTMiddleware(log, zapLog, validator),
		Registry:        registry,
		Log:             log,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Запускаем HTTP сервер в горутине
	go func() {
		log.Infow("Starting HTTP server", "port", cfg.App.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutdown signal received")

	// Даем 10 секунд на завершение текущих запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	log.Infow("Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Infow("HTTP server gracefully stopped")
	}

	log.Infow("Cleanup finished. Goodbye!")
}

// initLogger инициализирует новый логгер
func initLogger() *logger.Logger {
	logLevel := logger.INFO
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = logger.DEBUG
	}
	return logger.New(logLevel)
}
