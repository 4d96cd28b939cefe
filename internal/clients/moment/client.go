// Package moment provides the client for the Moment fixed-income API.
package moment

import (
	"context"
	"fmt"
	"time"

	"github.com/anadkat/bondtrading/internal/clients/moment/sdk"
	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/rs/zerolog"
)

// Client adapts the raw Moment SDK to domain.MarketDataClient and domain.BrokerClient
type Client struct {
	sdk *sdk.Client
	log zerolog.Logger
	now func() time.Time
}

// NewClient creates a new Moment client
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		sdk: sdk.NewClient(baseURL, apiKey, timeout, log),
		log: log.With().Str("client", "moment").Logger(),
		now: time.Now,
	}
}

// HasCredentials reports whether an API key is configured
func (c *Client) HasCredentials() bool {
	return c.sdk.HasCredentials()
}

// ListInstruments implements domain.MarketDataClient
func (c *Client) ListInstruments(ctx context.Context, status string, limit int) ([]map[string]interface{}, error) {
	body, err := c.sdk.ListInstruments(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	records, err := extractInstrumentRecords(body)
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: 200, Err: err}
	}
	c.log.Debug().Int("count", len(records)).Str("status", status).Msg("Fetched instruments")
	return records, nil
}

// GetInstrument implements domain.MarketDataClient
func (c *Client) GetInstrument(ctx context.Context, instrumentID string) (map[string]interface{}, error) {
	body, err := c.sdk.GetInstrument(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: 200, Err: err}
	}
	// some deployments wrap single records in "data"
	if inner, ok := m["data"].(map[string]interface{}); ok {
		return inner, nil
	}
	return m, nil
}

// GetQuote implements domain.MarketDataClient
func (c *Client) GetQuote(ctx context.Context, instrumentID string, quantity *int64) (*domain.Quote, error) {
	body, err := c.sdk.GetQuote(ctx, instrumentID, quantity)
	if err != nil {
		return nil, err
	}
	quote, err := transformQuote(body)
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: 200, Err: fmt.Errorf("quote for %s: %w", instrumentID, err)}
	}
	return quote, nil
}

// GetHistoricalPrices implements domain.MarketDataClient
func (c *Client) GetHistoricalPrices(ctx context.Context, instrumentID string, start, end time.Time, frequency domain.PriceFrequency) (*domain.HistoricalPrices, error) {
	if frequency == "" {
		frequency = domain.Frequency1Day
	}
	body, err := c.sdk.GetInstrumentPrices(ctx, instrumentID, start.Format("2006-01-02"), end.Format("2006-01-02"), string(frequency))
	if err != nil {
		return nil, err
	}
	prices, err := transformHistoricalPrices(body)
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: 200, Err: fmt.Errorf("prices for %s: %w", instrumentID, err)}
	}
	return prices, nil
}

// GetOrderBook implements domain.MarketDataClient
func (c *Client) GetOrderBook(ctx context.Context, instrumentID string) (*domain.OrderBook, error) {
	body, err := c.sdk.GetOrderBook(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	book, err := transformOrderBook(body)
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: 200, Err: fmt.Errorf("order book for %s: %w", instrumentID, err)}
	}
	return book, nil
}

// SubmitOrder implements domain.BrokerClient
func (c *Client) SubmitOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResponse, error) {
	body, err := c.sdk.CreateOrder(ctx, orderPayload(req))
	if err != nil {
		return nil, err
	}
	resp, err := transformOrderResponse(body, &req, c.now())
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: 200, Err: err}
	}
	c.log.Info().
		Str("order_id", resp.OrderID).
		Str("instrument_id", req.InstrumentID).
		Str("side", string(req.Side)).
		Int64("quantity", req.Quantity).
		Msg("Order submitted upstream")
	return resp, nil
}

// CancelOrder implements domain.BrokerClient
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*domain.OrderResponse, error) {
	body, err := c.sdk.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp, err := transformOrderResponse(body, nil, c.now())
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: 200, Err: err}
	}
	if resp.OrderID == "" {
		resp.OrderID = orderID
	}
	return resp, nil
}
