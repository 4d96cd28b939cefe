package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// ListInstruments fetches the instrument list.
// GET /v1/data/instrument/?status=&limit=
func (c *Client) ListInstruments(ctx context.Context, status string, limit int) (json.RawMessage, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.get(ctx, "/v1/data/instrument/", query)
}

// GetInstrument fetches one instrument.
// GET /v1/data/instrument/{id}/
func (c *Client) GetInstrument(ctx context.Context, instrumentID string) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/v1/data/instrument/%s/", url.PathEscape(instrumentID)), nil)
}

// GetQuote fetches a live quote, optionally sized.
// GET /v1/trading/quote/{id}/?quantity=
func (c *Client) GetQuote(ctx context.Context, instrumentID string, quantity *int64) (json.RawMessage, error) {
	query := url.Values{}
	if quantity != nil {
		query.Set("quantity", strconv.FormatInt(*quantity, 10))
	}
	return c.get(ctx, fmt.Sprintf("/v1/trading/quote/%s/", url.PathEscape(instrumentID)), query)
}

// GetInstrumentPrices fetches a historical price series. Dates are YYYY-MM-DD.
// GET /v1/data/instrument/{id}/price/?start=&end=&frequency=
func (c *Client) GetInstrumentPrices(ctx context.Context, instrumentID, start, end, frequency string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("start", start)
	query.Set("end", end)
	query.Set("frequency", frequency)
	return c.get(ctx, fmt.Sprintf("/v1/data/instrument/%s/price/", url.PathEscape(instrumentID)), query)
}

// GetOrderBook fetches the order book snapshot.
// GET /v1/trading/order-book/{id}/
func (c *Client) GetOrderBook(ctx context.Context, instrumentID string) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/v1/trading/order-book/%s/", url.PathEscape(instrumentID)), nil)
}

// CreateOrder submits an order. Requires trading permission on the API key.
// POST /v1/trading/orders/
func (c *Client) CreateOrder(ctx context.Context, payload map[string]interface{}) (json.RawMessage, error) {
	return c.post(ctx, "/v1/trading/orders/", payload)
}

// CancelOrder cancels an open order.
// POST /v1/trading/orders/{id}/cancel/
func (c *Client) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	return c.post(ctx, fmt.Sprintf("/v1/trading/orders/%s/cancel/", url.PathEscape(orderID)), map[string]interface{}{})
}
