package domain

import (
	"context"
	"time"
)

// MarketDataClient defines upstream market-data operations.
// Implementations return *UpstreamError (matching ErrUpstreamUnavailable) on transport
// failures and non-2xx responses.
type MarketDataClient interface {
	// ListInstruments returns raw instrument records. An unrecognized response shape
	// yields an empty slice without error.
	ListInstruments(ctx context.Context, status string, limit int) ([]map[string]interface{}, error)

	// GetInstrument returns one raw instrument record
	GetInstrument(ctx context.Context, instrumentID string) (map[string]interface{}, error)

	// GetQuote returns a live quote; quantity is optional
	GetQuote(ctx context.Context, instrumentID string, quantity *int64) (*Quote, error)

	// GetHistoricalPrices returns a price series between two dates (inclusive)
	GetHistoricalPrices(ctx context.Context, instrumentID string, start, end time.Time, frequency PriceFrequency) (*HistoricalPrices, error)

	GetOrderBook(ctx context.Context, instrumentID string) (*OrderBook, error)
}

// BrokerClient defines upstream trading operations
type BrokerClient interface {
	SubmitOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)
	CancelOrder(ctx context.Context, orderID string) (*OrderResponse, error)
}

// OrderExecutor is the order execution capability used by the trading service.
// Simulated and broker-routed implementations are interchangeable.
type OrderExecutor interface {
	Submit(ctx context.Context, req OrderRequest) (*OrderResponse, error)
	Cancel(ctx context.Context, orderID string) error
	Mode() string
}
