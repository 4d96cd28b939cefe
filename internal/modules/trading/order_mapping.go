package trading

import (
	"strings"

	"github.com/anadkat/bondtrading/internal/domain"
)

// ValidateOrderRequest normalizes enum casing and checks the request.
// Limit orders need a positive price; market orders may omit it.
func ValidateOrderRequest(req domain.OrderRequest) (domain.OrderRequest, error) {
	req.InstrumentID = strings.TrimSpace(req.InstrumentID)
	req.Side = domain.OrderSide(strings.ToLower(string(req.Side)))
	req.OrderType = domain.OrderType(strings.ToLower(string(req.OrderType)))

	if req.InstrumentID == "" {
		return req, domain.NewValidationError("instrument_id is required")
	}
	if !req.Side.Valid() {
		return req, domain.NewValidationError("side must be buy or sell, got %q", req.Side)
	}
	if req.Quantity <= 0 {
		return req, domain.NewValidationError("quantity must be a positive integer")
	}
	if !req.OrderType.Valid() {
		return req, domain.NewValidationError("order_type must be market or limit, got %q", req.OrderType)
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return req, domain.NewValidationError("price must be positive")
	}
	if req.OrderType == domain.OrderTypeLimit && req.Price == nil {
		return req, domain.NewValidationError("price is required for limit orders")
	}
	if req.ClientOrderID != nil && *req.ClientOrderID == "" {
		req.ClientOrderID = nil
	}
	return req, nil
}

// orderFromResponse builds the local Order record for an accepted submission
func orderFromResponse(req domain.OrderRequest, resp *domain.OrderResponse, userID string) domain.Order {
	order := domain.Order{
		ID:               resp.OrderID,
		BondID:           req.InstrumentID,
		UserID:           userID,
		Action:           req.Side,
		Quantity:         req.Quantity,
		Price:            req.Price,
		OrderType:        req.OrderType,
		Status:           resp.Status,
		CreatedAt:        resp.CreatedAt,
		UpdatedAt:        resp.UpdatedAt,
		FilledQuantity:   resp.FilledQuantity,
		AverageFillPrice: resp.AverageFillPrice,
		Fees:             resp.Fees,
		ClientOrderID:    req.ClientOrderID,
	}
	if !order.Status.Valid() {
		order.Status = domain.OrderStatusPending
	}
	if order.FilledQuantity > order.Quantity {
		order.FilledQuantity = order.Quantity
	}
	return order
}
