// Package domain provides the core domain models and interfaces shared across modules.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bond is a fixed-income instrument normalized from the upstream feed.
// Numeric fields are kept as text because upstream values are not guaranteed to parse.
type Bond struct {
	ID             string     `json:"id"`
	ISIN           string     `json:"isin"`
	CUSIP          *string    `json:"cusip"`
	Issuer         string     `json:"issuer"`
	Description    string     `json:"description"`
	BondType       string     `json:"bond_type"`
	Sector         *string    `json:"sector"`
	Rating         *string    `json:"rating"`
	Coupon         *string    `json:"coupon"`
	MaturityDate   *time.Time `json:"maturity_date"`
	Currency       string     `json:"currency"`
	ParValue       *string    `json:"par_value"`
	LastPrice      *string    `json:"last_price"`
	YTM            *string    `json:"ytm"`
	YTW            *string    `json:"ytw"`
	Duration       *string    `json:"duration"`
	Convexity      *string    `json:"convexity"`
	LiquidityScore *string    `json:"liquidity_score"`
	Status         string     `json:"status"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Clone returns a deep copy so callers never share pointers with the catalog
func (b Bond) Clone() Bond {
	out := b
	out.CUSIP = cloneString(b.CUSIP)
	out.Sector = cloneString(b.Sector)
	out.Rating = cloneString(b.Rating)
	out.Coupon = cloneString(b.Coupon)
	out.ParValue = cloneString(b.ParValue)
	out.LastPrice = cloneString(b.LastPrice)
	out.YTM = cloneString(b.YTM)
	out.YTW = cloneString(b.YTW)
	out.Duration = cloneString(b.Duration)
	out.Convexity = cloneString(b.Convexity)
	out.LiquidityScore = cloneString(b.LiquidityScore)
	if b.MaturityDate != nil {
		t := *b.MaturityDate
		out.MaturityDate = &t
	}
	return out
}

// OrderSide is the direction of an order
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Valid reports whether the side is buy or sell
func (s OrderSide) Valid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// OrderType is market or limit
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// Valid reports whether the order type is known
func (t OrderType) Valid() bool {
	return t == OrderTypeMarket || t == OrderTypeLimit
}

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
)

// Valid reports whether the status is one of the four lifecycle states
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// Order is a locally tracked order record
type Order struct {
	ID               string           `json:"id"`
	BondID           string           `json:"bond_id"`
	UserID           string           `json:"user_id"`
	Action           OrderSide        `json:"action"`
	Quantity         int64            `json:"quantity"`
	Price            *decimal.Decimal `json:"price"`
	OrderType        OrderType        `json:"order_type"`
	Status           OrderStatus      `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	FilledQuantity   int64            `json:"filled_quantity"`
	AverageFillPrice *decimal.Decimal `json:"average_fill_price"`
	Fees             *decimal.Decimal `json:"fees"`
	ClientOrderID    *string          `json:"client_order_id,omitempty"`
}

// Clone returns a deep copy of the order
func (o Order) Clone() Order {
	out := o
	out.Price = cloneDecimal(o.Price)
	out.AverageFillPrice = cloneDecimal(o.AverageFillPrice)
	out.Fees = cloneDecimal(o.Fees)
	out.ClientOrderID = cloneString(o.ClientOrderID)
	return out
}

// OrderRequest is the inbound order submission payload
type OrderRequest struct {
	InstrumentID  string           `json:"instrument_id"`
	Side          OrderSide        `json:"side"`
	Quantity      int64            `json:"quantity"`
	OrderType     OrderType        `json:"order_type"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	ClientOrderID *string          `json:"client_order_id,omitempty"`
}

// OrderResponse is what an executor reports back for a submitted order
type OrderResponse struct {
	OrderID          string           `json:"order_id"`
	ClientOrderID    *string          `json:"client_order_id"`
	InstrumentID     string           `json:"instrument_id"`
	Side             OrderSide        `json:"side"`
	Quantity         int64            `json:"quantity"`
	OrderType        OrderType        `json:"order_type"`
	Price            *decimal.Decimal `json:"price"`
	Status           OrderStatus      `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	FilledQuantity   int64            `json:"filled_quantity"`
	AverageFillPrice *decimal.Decimal `json:"average_fill_price"`
	Fees             *decimal.Decimal `json:"fees"`
}

// Quote is a live two-sided quote for an instrument
type Quote struct {
	Timestamp          string   `json:"timestamp"`
	BidPrice           *float64 `json:"bid_price"`
	BidYieldToMaturity *float64 `json:"bid_yield_to_maturity"`
	BidYieldToWorst    *float64 `json:"bid_yield_to_worst"`
	BidSize            *float64 `json:"bid_size"`
	BidMinSize         *float64 `json:"bid_min_size"`
	AskPrice           *float64 `json:"ask_price"`
	AskYieldToMaturity *float64 `json:"ask_yield_to_maturity"`
	AskYieldToWorst    *float64 `json:"ask_yield_to_worst"`
	AskSize            *float64 `json:"ask_size"`
	AskMinSize         *float64 `json:"ask_min_size"`
}

// PricePoint is one sample of a historical price series
type PricePoint struct {
	Timestamp       string   `json:"timestamp"`
	Price           *float64 `json:"price"`
	YieldToWorst    *float64 `json:"yield_to_worst"`
	YieldToMaturity *float64 `json:"yield_to_maturity"`
}

// HistoricalPrices is a page of price points
type HistoricalPrices struct {
	Count int          `json:"count"`
	Next  *string      `json:"next"`
	Prev  *string      `json:"prev"`
	Data  []PricePoint `json:"data"`
}

// OrderBookEntry is one price level
type OrderBookEntry struct {
	Price           float64  `json:"price"`
	Size            float64  `json:"size"`
	YieldToMaturity *float64 `json:"yield_to_maturity"`
	YieldToWorst    *float64 `json:"yield_to_worst"`
}

// OrderBook is a snapshot of resting bids and asks
type OrderBook struct {
	Timestamp string           `json:"timestamp"`
	Bids      []OrderBookEntry `json:"bids"`
	Asks      []OrderBookEntry `json:"asks"`
}

// PriceFrequency is the sampling interval for historical prices
type PriceFrequency string

const (
	Frequency1Day  PriceFrequency = "1day"
	Frequency15Min PriceFrequency = "15min"
	Frequency1Min  PriceFrequency = "1min"
)

// Valid reports whether the frequency is supported upstream
func (f PriceFrequency) Valid() bool {
	return f == Frequency1Day || f == Frequency15Min || f == Frequency1Min
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
