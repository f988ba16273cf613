package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/internal/integration/stripe"
	"github.com/Dhoini/storefront-payments/internal/repository"
	"github.com/Dhoini/storefront-payments/pkg/logger"
)

// CheckoutService интерфейс сервиса для создания checkout-сессий
// и ссылок на биллинг-портал
type CheckoutService interface {
	// CreateCheckoutSession создает checkout-сессию для аутентифицированного
	// пользователя и возвращает ответ Stripe как есть
	CreateCheckoutSession(ctx context.Context, caller domain.Identity, req domain.CheckoutRequest) (json.RawMessage, error)

	// CreatePortalLink возвращает ссылку на биллинг-портал клиента
	CreatePortalLink(ctx context.Context, caller domain.Identity) (string, error)
}

// CheckoutConfig параметры редиректов checkout-сессий
type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
}

type checkoutService struct {
	customers    repository.CustomerRepository
	stripeClient *stripe.Client
	cfg          CheckoutConfig
	log          *logger.Logger
}

// NewCheckoutService создает новый сервис checkout-сессий
func NewCheckoutService(
	customers repository.CustomerRepository,
	stripeClient *stripe.Client,
	cfg CheckoutConfig,
	log *logger.Logger,
) CheckoutService {
	return &checkoutService{
		customers:    customers,
		stripeClient: stripeClient,
		cfg:          cfg,
		log:          log,
	}
}

// CreateCheckoutSession создает checkout-сессию для пользователя
func (s *checkoutService) CreateCheckoutSession(ctx context.Context, caller domain.Identity, req domain.CheckoutRequest) (json.RawMessage, error) {
	// Тип цены проверяется до любых внешних вызовов
	var mode string
	switch req.PriceType {
	case domain.PriceTypeRecurring:
		mode = "subscription"
	case domain.PriceTypeOneTime:
		mode = "payment"
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPriceType, req.PriceType)
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	customer, err := s.ensureCustomer(ctx, caller)
	if err != nil {
		return nil, err
	}

	params := stripe.CheckoutSessionParams{
		Customer: customer.StripeCustomerID,
		Mode:     mode,
		LineItems: []stripe.SessionLineItemParams{
			{Price: req.PriceID, Quantity: quantity},
		},
		BillingAddressCollection: "required",
		AllowPromotionCodes:      true,
		SuccessURL:               s.cfg.SuccessURL,
		CancelURL:                s.cfg.CancelURL,
	}

	return s.stripeClient.CreateCheckoutSession(ctx, params)
}

// ensureCustomer возвращает клиента пользователя, создавая его при первом
// обращении. Локальный upsert по stripe_customer_id идемпотентен: гонка
// с созданием через вебхук обновляет запись, а не дублирует ее.
func (s *checkoutService) ensureCustomer(ctx context.Context, caller domain.Identity) (domain.Customer, error) {
	customer, found, err := s.customers.FindByUserID(ctx, caller.UserID)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("failed to look up customer: %w", err)
	}
	if found {
		return customer, nil
	}

	remote, err := s.stripeClient.CreateCustomer(ctx, caller.Email, caller.Name, caller.UserID)
	if err != nil {
		return domain.Customer{}, err
	}

	existing, found, err := s.customers.FindByStripeID(ctx, remote.ID)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("failed to look up customer: %w", err)
	}
	if found {
		existing.UserID = caller.UserID
		existing.Email = caller.Email
		existing.Name = caller.Name
		if err := s.customers.Update(ctx, existing); err != nil {
			return domain.Customer{}, fmt.Errorf("failed to update customer: %w", err)
		}
		return existing, nil
	}

	customer = domain.Customer{
		UserID:           caller.UserID,
		StripeCustomerID: remote.ID,
		Email:            caller.Email,
		Name:             caller.Name,
	}
	customer, err = s.customers.Create(ctx, customer)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("failed to create customer: %w", err)
	}

	s.log.Info("Created customer %s for user %s", customer.StripeCustomerID, caller.UserID)
	return customer, nil
}

// CreatePortalLink возвращает ссылку на биллинг-портал клиента
func (s *checkoutService) CreatePortalLink(ctx context.Context, caller domain.Identity) (string, error) {
	customer, found, err := s.customers.FindByUserID(ctx, caller.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to look up customer: %w", err)
	}
	if !found {
		return "", domain.ErrCustomerNotFound
	}

	portal, err := s.stripeClient.CreatePortalSession(ctx, customer.StripeCustomerID)
	if err != nil {
		return "", err
	}

	return portal.URL, nil
}
