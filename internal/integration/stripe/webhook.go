package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Dhoini/storefront-payments/internal/domain"
)

// WebhookEvent представляет событие от Stripe Webhook
type WebhookEvent struct {
	ID       string `json:"id"`
	Object   string `json:"object"`
	Type     string `json:"type"`
	Created  int64  `json:"created"`
	Livemode bool   `json:"livemode"`
	Data     struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ProductObject представляет объект товара в событиях product.*
type ProductObject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// CheckoutSessionObject представляет объект checkout-сессии
// в событии checkout.session.completed
type CheckoutSessionObject struct {
	ID              string `json:"id"`
	Customer        string `json:"customer"`
	Mode            string `json:"mode"`
	PaymentStatus   string `json:"payment_status"`
	AmountTotal     int64  `json:"amount_total"`
	Currency        string `json:"currency"`
	CustomerDetails struct {
		Email   string         `json:"email"`
		Name    string         `json:"name"`
		Address domain.Address `json:"address"`
	} `json:"customer_details"`
}

// ParseSignatureHeader разбирает заголовок Stripe-Signature формата
// "t=<timestamp>,v1=<hex>[,v0=<hex>]" в отображение схема -> значение
func ParseSignatureHeader(header string) map[string]string {
	parsed := make(map[string]string)
	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed
}

// VerifySignature проверяет HMAC-SHA256 подпись webhook-события.
// Тело должно передаваться в точности как получено: любая пересериализация
// ломает подпись. Пустой секрет отклоняет все подписи (fail closed).
func VerifySignature(payload []byte, header, secret string) error {
	if secret == "" {
		return fmt.Errorf("%w: webhook secret is not configured", domain.ErrInvalidSignature)
	}
	if header == "" {
		return fmt.Errorf("%w: missing signature header", domain.ErrInvalidSignature)
	}

	parsed := ParseSignatureHeader(header)
	timestamp, ok := parsed["t"]
	if !ok || timestamp == "" {
		return fmt.Errorf("%w: missing timestamp in signature header", domain.ErrInvalidSignature)
	}
	signature, ok := parsed["v1"]
	if !ok || signature == "" {
		return fmt.Errorf("%w: missing v1 scheme in signature header", domain.ErrInvalidSignature)
	}

	// Подписывается строка "{timestamp}.{body}"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	// Сравнение за константное время
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("%w: signature mismatch", domain.ErrInvalidSignature)
	}

	return nil
}

// ComputeSignatureHeader строит валидный заголовок подписи (используется в тестах)
func ComputeSignatureHeader(payload []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}
