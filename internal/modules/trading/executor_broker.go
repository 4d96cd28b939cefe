package trading

import (
	"context"
	"fmt"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/rs/zerolog"
)

// BrokerExecutor routes orders to the upstream trading endpoints.
// The API key must carry trading permission.
type BrokerExecutor struct {
	broker domain.BrokerClient
	log    zerolog.Logger
}

// NewBrokerExecutor creates a broker-routed executor
func NewBrokerExecutor(broker domain.BrokerClient, log zerolog.Logger) *BrokerExecutor {
	return &BrokerExecutor{
		broker: broker,
		log:    log.With().Str("component", "broker_executor").Logger(),
	}
}

// Mode implements domain.OrderExecutor
func (e *BrokerExecutor) Mode() string {
	return ModeBroker
}

// Submit implements domain.OrderExecutor
func (e *BrokerExecutor) Submit(ctx context.Context, req domain.OrderRequest) (*domain.OrderResponse, error) {
	resp, err := e.broker.SubmitOrder(ctx, req)
	if err != nil {
		e.log.Error().Err(err).Str("instrument_id", req.InstrumentID).Msg("Broker rejected order")
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	if resp.OrderID == "" {
		return nil, fmt.Errorf("failed to submit order: %w", &domain.UpstreamError{StatusCode: 200, Body: "response carried no order id"})
	}
	return resp, nil
}

// Cancel implements domain.OrderExecutor
func (e *BrokerExecutor) Cancel(ctx context.Context, orderID string) error {
	if _, err := e.broker.CancelOrder(ctx, orderID); err != nil {
		e.log.Error().Err(err).Str("order_id", orderID).Msg("Broker cancel failed")
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	return nil
}
