// Package trading provides order submission and order lifecycle management.
package trading

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	ModeSimulated = "simulated"
	ModeBroker    = "broker"
)

// SimulatedExecutor fabricates order acknowledgements locally. It never calls the
// upstream API; it only waits a random latency before answering.
type SimulatedExecutor struct {
	minDelay time.Duration
	maxDelay time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewSimulatedExecutor creates an executor that waits a delay in [minDelay, maxDelay)
func NewSimulatedExecutor(minDelay, maxDelay time.Duration, log zerolog.Logger) *SimulatedExecutor {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &SimulatedExecutor{
		minDelay: minDelay,
		maxDelay: maxDelay,
		now:      time.Now,
		log:      log.With().Str("component", "simulated_executor").Logger(),
	}
}

// Mode implements domain.OrderExecutor
func (e *SimulatedExecutor) Mode() string {
	return ModeSimulated
}

// Submit implements domain.OrderExecutor
func (e *SimulatedExecutor) Submit(ctx context.Context, req domain.OrderRequest) (*domain.OrderResponse, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}

	now := e.now().UTC()
	resp := &domain.OrderResponse{
		OrderID:        NewOrderID(now),
		ClientOrderID:  req.ClientOrderID,
		InstrumentID:   req.InstrumentID,
		Side:           req.Side,
		Quantity:       req.Quantity,
		OrderType:      req.OrderType,
		Price:          req.Price,
		Status:         domain.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
		FilledQuantity: 0,
	}

	e.log.Info().
		Str("order_id", resp.OrderID).
		Str("instrument_id", req.InstrumentID).
		Str("side", string(req.Side)).
		Int64("quantity", req.Quantity).
		Msg("Simulated order accepted")

	return resp, nil
}

// Cancel implements domain.OrderExecutor. Simulated orders have no remote state.
func (e *SimulatedExecutor) Cancel(ctx context.Context, orderID string) error {
	e.log.Info().Str("order_id", orderID).Msg("Simulated order cancelled")
	return ctx.Err()
}

func (e *SimulatedExecutor) wait(ctx context.Context) error {
	delay := e.minDelay
	if span := e.maxDelay - e.minDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewOrderID returns ord_<unix-millis>_<random>
func NewOrderID(now time.Time) string {
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("ord_%d_%s", now.UnixMilli(), random)
}
