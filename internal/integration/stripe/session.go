package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// SessionLineItemParams позиция в запросе на создание checkout-сессии
type SessionLineItemParams struct {
	Price    string `form:"price"`
	Quantity int64  `form:"quantity"`
}

// CheckoutSessionParams параметры создания checkout-сессии.
// Порядок полей определяет порядок пар в form-urlencoded теле.
type CheckoutSessionParams struct {
	Customer                 string                  `form:"customer"`
	Mode                     string                  `form:"mode"`
	LineItems                []SessionLineItemParams `form:"line_items"`
	BillingAddressCollection string                  `form:"billing_address_collection"`
	AllowPromotionCodes      bool                    `form:"allow_promotion_codes"`
	SuccessURL               string                  `form:"success_url"`
	CancelURL                string                  `form:"cancel_url"`
}

// CreateCheckoutSession создает checkout-сессию и возвращает тело ответа
// Stripe как есть: фронтенд получает JSON сессии без пересборки.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (json.RawMessage, error) {
	c.log.Debug("Creating checkout session for customer: %s", params.Customer)

	body := EncodeForm(FlattenForm(params))

	status, respBody, err := c.doForm(ctx, "/checkout/sessions", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, c.apiError("CreateCheckoutSession", status, respBody)
	}

	c.log.Info("Successfully created checkout session for customer: %s", params.Customer)
	return json.RawMessage(respBody), nil
}

// LineItem позиция заказа из line items endpoint
type LineItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
	Price       struct {
		ID string `json:"id"`
	} `json:"price"`
}

// LineItemList список позиций checkout-сессии
type LineItemList struct {
	Object  string     `json:"object"`
	Data    []LineItem `json:"data"`
	HasMore bool       `json:"has_more"`
}

// ListSessionLineItems возвращает позиции checkout-сессии
func (c *Client) ListSessionLineItems(ctx context.Context, sessionID string) (*LineItemList, error) {
	c.log.Debug("Fetching line items for session: %s", sessionID)

	status, body, err := c.doGet(ctx, "/checkout/sessions/"+url.PathEscape(sessionID)+"/line_items", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, c.apiError("ListSessionLineItems", status, body)
	}

	var list LineItemList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &list, nil
}

// PortalSessionResponse ответ на создание сессии биллинг-портала
type PortalSessionResponse struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	URL      string `json:"url"`
}

// CreatePortalSession создает сессию биллинг-портала для клиента
func (c *Client) CreatePortalSession(ctx context.Context, customerID string) (*PortalSessionResponse, error) {
	c.log.Debug("Creating billing portal session for customer: %s", customerID)

	formData := url.Values{}
	formData.Add("customer", customerID)

	status, body, err := c.doForm(ctx, "/billing_portal/sessions", formData.Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, c.apiError("CreatePortalSession", status, body)
	}

	var portalResp PortalSessionResponse
	if err := json.Unmarshal(body, &portalResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &portalResp, nil
}
