package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/storefront-console/internal/domain"
)

// Client — HTTP-шлюз заказов магазина: получение полного заказа и
// запрос его принятия.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch запрашивает один заказ по публичному идентификатору вместе со
// связанными customer, payload и trackingNumber.
func (c *Client) Fetch(ctx context.Context, publicID string) (domain.Order, error) {
	u := fmt.Sprintf("%s/orders/%s?include=customer,payload,trackingNumber",
		c.BaseURL, url.PathEscape(publicID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Order{}, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Order{}, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Order{}, fmt.Errorf("order fetch: status %d", resp.StatusCode)
	}
	var o domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		return domain.Order{}, fmt.Errorf("order fetch: %w", err)
	}
	if o.ID == "" {
		return domain.Order{}, domain.ErrValidation
	}
	return o, nil
}

// Accept запрашивает принятие заказа на сервере.
func (c *Client) Accept(ctx context.Context, orderID string) error {
	body, err := json.Marshal(map[string]string{"order": orderID})
	if err != nil {
		return err
	}
	u := c.BaseURL + "/storefront/int/v1/orders/accept"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("order accept: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("order accept: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

var _ domain.OrderGateway = (*Client)(nil)
