package moment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/shopspring/decimal"
)

// orderPayload builds the POST /v1/trading/orders/ body
func orderPayload(req domain.OrderRequest) map[string]interface{} {
	payload := map[string]interface{}{
		"instrument_id": req.InstrumentID,
		"side":          string(req.Side),
		"quantity":      req.Quantity,
		"order_type":    string(req.OrderType),
	}
	if req.Price != nil {
		payload["price"] = req.Price.String()
	}
	if req.ClientOrderID != nil {
		payload["client_order_id"] = *req.ClientOrderID
	}
	return payload
}

// transformOrderResponse maps an upstream order object. Fields the upstream leaves
// out are taken from the originating request when one is given.
func transformOrderResponse(body json.RawMessage, req *domain.OrderRequest, now time.Time) (*domain.OrderResponse, error) {
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	resp := &domain.OrderResponse{
		OrderID:          getString(m, "order_id"),
		InstrumentID:     getString(m, "instrument_id"),
		Side:             domain.OrderSide(strings.ToLower(getString(m, "side"))),
		OrderType:        domain.OrderType(strings.ToLower(getString(m, "order_type"))),
		Status:           domain.OrderStatus(strings.ToLower(getString(m, "status"))),
		Quantity:         int64(getFloat64(m, "quantity")),
		FilledQuantity:   int64(getFloat64(m, "filled_quantity")),
		Price:            getOptionalDecimal(m, "price"),
		AverageFillPrice: getOptionalDecimal(m, "average_fill_price"),
		Fees:             getOptionalDecimal(m, "fees"),
		CreatedAt:        getTime(m, "created_at", now),
		UpdatedAt:        getTime(m, "updated_at", now),
	}
	if resp.OrderID == "" {
		resp.OrderID = getString(m, "id")
	}
	if cid := getString(m, "client_order_id"); cid != "" {
		resp.ClientOrderID = &cid
	}
	if !resp.Status.Valid() {
		resp.Status = domain.OrderStatusPending
	}

	if req != nil {
		if resp.InstrumentID == "" {
			resp.InstrumentID = req.InstrumentID
		}
		if !resp.Side.Valid() {
			resp.Side = req.Side
		}
		if !resp.OrderType.Valid() {
			resp.OrderType = req.OrderType
		}
		if resp.Quantity == 0 {
			resp.Quantity = req.Quantity
		}
		if resp.Price == nil {
			resp.Price = req.Price
		}
		if resp.ClientOrderID == nil {
			resp.ClientOrderID = req.ClientOrderID
		}
	}

	return resp, nil
}

func getOptionalDecimal(m map[string]interface{}, key string) *decimal.Decimal {
	val, exists := m[key]
	if !exists || val == nil {
		return nil
	}
	var d decimal.Decimal
	switch v := val.(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		d = parsed
	default:
		return nil
	}
	return &d
}

func getTime(m map[string]interface{}, key string, fallback time.Time) time.Time {
	s := getString(m, key)
	if s == "" {
		return fallback
	}
	t, err := parseMaturity(s)
	if err != nil {
		return fallback
	}
	return t
}
