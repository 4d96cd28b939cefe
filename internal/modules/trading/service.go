package trading

import (
	"context"
	"fmt"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/anadkat/bondtrading/internal/modules/catalog"
	"github.com/rs/zerolog"
)

// OrderService submits orders through an executor and tracks them in the catalog
type OrderService struct {
	catalog  *catalog.Catalog
	executor domain.OrderExecutor
	userID   string
	log      zerolog.Logger
}

// NewOrderService creates a new order service. All orders belong to userID.
func NewOrderService(cat *catalog.Catalog, executor domain.OrderExecutor, userID string, log zerolog.Logger) *OrderService {
	return &OrderService{
		catalog:  cat,
		executor: executor,
		userID:   userID,
		log:      log.With().Str("service", "orders").Logger(),
	}
}

// ExecutionMode returns the active executor's mode
func (s *OrderService) ExecutionMode() string {
	return s.executor.Mode()
}

// SubmitOrder validates, executes and records an order.
// The catalog lock is never held while the executor runs.
func (s *OrderService) SubmitOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResponse, error) {
	req, err := ValidateOrderRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.executor.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.AddOrder(orderFromResponse(req, resp, s.userID)); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	s.log.Info().
		Str("order_id", resp.OrderID).
		Str("mode", s.executor.Mode()).
		Str("status", string(resp.Status)).
		Msg("Order recorded")

	return resp, nil
}

// ListOrders returns the user's orders, newest first, optionally filtered by status
func (s *OrderService) ListOrders(status domain.OrderStatus) []domain.Order {
	return s.catalog.GetOrders(catalog.OrderFilter{UserID: s.userID, Status: status})
}

// GetOrder returns one order or ErrNotFound
func (s *OrderService) GetOrder(id string) (*domain.Order, error) {
	order, ok := s.catalog.GetOrder(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// CancelOrder cancels a pending order through the executor, then marks it cancelled
func (s *OrderService) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, ok := s.catalog.GetOrder(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if order.Status != domain.OrderStatusPending {
		return nil, fmt.Errorf("%w: order %s is %s", domain.ErrInvalidTransition, id, order.Status)
	}

	if err := s.executor.Cancel(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.catalog.TransitionOrder(id, domain.OrderStatusPending, domain.OrderStatusCancelled, order.FilledQuantity, nil)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("order_id", id).Msg("Order cancelled")
	return updated, nil
}
