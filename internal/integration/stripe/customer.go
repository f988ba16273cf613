package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// CustomerResponse представляет ответ от API Stripe при работе с клиентом
type CustomerResponse struct {
	ID       string            `json:"id"`
	Object   string            `json:"object"`
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata"`
	Created  int64             `json:"created"`
}

// CreateCustomer создает нового клиента в Stripe.
// Локальный идентификатор пользователя передается в метаданных
// для трассируемости между системами.
func (c *Client) CreateCustomer(ctx context.Context, email, name, userID string) (*CustomerResponse, error) {
	c.log.Debug("Creating Stripe customer for %s", email)

	formData := url.Values{}
	formData.Add("email", email)
	if name != "" {
		formData.Add("name", name)
	}
	formData.Add("metadata[user_id]", userID)

	status, body, err := c.doForm(ctx, "/customers", formData.Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, c.apiError("CreateCustomer", status, body)
	}

	var customerResp CustomerResponse
	if err := json.Unmarshal(body, &customerResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.log.Info("Successfully created Stripe customer with ID: %s", customerResp.ID)
	return &customerResp, nil
}
