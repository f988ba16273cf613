package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dhoini/storefront-payments/internal/domain"
	"github.com/Dhoini/storefront-payments/pkg/logger"
)

const defaultBaseURL = "https://api.stripe.com/v1"

// Client представляет клиент для работы с API Stripe
type Client struct {
	baseURL    string
	apiKey     string
	webhookKey string
	httpClient *http.Client
	log        *logger.Logger
}

// Config конфигурация для клиента Stripe
type Config struct {
	APIKey     string
	WebhookKey string
	BaseURL    string // переопределяется в тестах
}

// NewClient создает новый клиент Stripe
func NewClient(cfg Config, log *logger.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		webhookKey: cfg.WebhookKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// GetWebhookKey возвращает ключ для верификации webhook-ов Stripe
func (c *Client) GetWebhookKey() string {
	return c.webhookKey
}

// ErrorResponse представляет ошибку от API Stripe
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Param   string `json:"param"`
}

// errorEnvelope обертка ошибки в теле ответа Stripe
type errorEnvelope struct {
	Error *ErrorResponse `json:"error,omitempty"`
}

// doForm выполняет POST запрос с form-urlencoded телом и возвращает сырое тело ответа.
// Отказывается выполнять запрос без настроенного API-ключа.
func (c *Client) doForm(ctx context.Context, path string, body string) (int, []byte, error) {
	if c.apiKey == "" {
		return 0, nil, domain.ErrMissingCredentials
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		strings.NewReader(body),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// doGet выполняет GET запрос и возвращает сырое тело ответа
func (c *Client) doGet(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	if c.apiKey == "" {
		return 0, nil, domain.ErrMissingCredentials
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Add("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// apiError разбирает тело неуспешного ответа в ошибку внешнего сервиса
func (c *Client) apiError(operation string, status int, body []byte) error {
	var envelope errorEnvelope
	message := "unexpected response from Stripe"
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		message = envelope.Error.Message
	}
	return domain.NewExternalServiceError("stripe", operation, status, message, nil)
}
