// Package catalog holds the in-memory working set of bonds and orders.
package catalog

import (
	"sort"
	"sync"
	"time"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Catalog is the authoritative store of Bonds and Orders for the process lifetime.
// Writes are serialized; reads run concurrently. Callers always receive copies.
type Catalog struct {
	bonds  map[string]*domain.Bond
	orders map[string]*domain.Order
	mu     sync.RWMutex
	now    func() time.Time
	log    zerolog.Logger
}

// New creates an empty catalog
func New(log zerolog.Logger) *Catalog {
	return &Catalog{
		bonds:  make(map[string]*domain.Bond),
		orders: make(map[string]*domain.Order),
		now:    time.Now,
		log:    log.With().Str("component", "catalog").Logger(),
	}
}

// SetClock overrides the time source used for filters and updated_at stamps
func (c *Catalog) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// AddBond upserts a bond by id, replacing any previous record wholesale
func (c *Catalog) AddBond(bond domain.Bond) error {
	if bond.ID == "" {
		return domain.NewValidationError("bond id is required")
	}
	stored := bond.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.bonds[bond.ID] = &stored
	return nil
}

// AddBondIfAbsent inserts the bond only when its id is not yet known.
// Reports whether the bond was inserted.
func (c *Catalog) AddBondIfAbsent(bond domain.Bond) (bool, error) {
	if bond.ID == "" {
		return false, domain.NewValidationError("bond id is required")
	}
	stored := bond.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.bonds[bond.ID]; exists {
		return false, nil
	}
	c.bonds[bond.ID] = &stored
	return true, nil
}

// GetBond returns the bond with the given id
func (c *Catalog) GetBond(id string) (*domain.Bond, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bond, ok := c.bonds[id]
	if !ok {
		return nil, false
	}
	out := bond.Clone()
	return &out, true
}

// GetBondByISIN scans for a bond with the given ISIN
func (c *Catalog) GetBondByISIN(isin string) (*domain.Bond, bool) {
	if isin == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, bond := range c.bonds {
		if bond.ISIN == isin {
			out := bond.Clone()
			return &out, true
		}
	}
	return nil, false
}

// AllBonds returns every bond ordered by id
func (c *Catalog) AllBonds() []domain.Bond {
	return c.SearchBonds(BondFilter{})
}

// BondCount returns the number of bonds held
func (c *Catalog) BondCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bonds)
}

// SearchBonds returns the bonds matching every supplied predicate, ordered by id
func (c *Catalog) SearchBonds(filter BondFilter) []domain.Bond {
	c.mu.RLock()
	now := c.now()
	results := make([]domain.Bond, 0, len(c.bonds))
	for _, bond := range c.bonds {
		if filter.Matches(bond, now) {
			results = append(results, bond.Clone())
		}
	}
	c.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results
}

// AddOrder stores a new order
func (c *Catalog) AddOrder(order domain.Order) error {
	if order.ID == "" {
		return domain.NewValidationError("order id is required")
	}
	stored := order.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[order.ID] = &stored
	return nil
}

// GetOrder returns the order with the given id
func (c *Catalog) GetOrder(id string) (*domain.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	order, ok := c.orders[id]
	if !ok {
		return nil, false
	}
	out := order.Clone()
	return &out, true
}

// OrderFilter narrows GetOrders; empty fields are not applied
type OrderFilter struct {
	UserID string
	Status domain.OrderStatus
}

// GetOrders returns matching orders, newest first.
// Orders created at the same instant are ordered by id descending.
func (c *Catalog) GetOrders(filter OrderFilter) []domain.Order {
	c.mu.RLock()
	results := make([]domain.Order, 0, len(c.orders))
	for _, order := range c.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		results = append(results, order.Clone())
	}
	c.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID > results[j].ID
	})
	return results
}

// OrderCount returns the number of orders held
func (c *Catalog) OrderCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orders)
}

// UpdateOrderStatus mutates an order in place and refreshes updated_at.
// Returns ErrNotFound for an unknown id.
func (c *Catalog) UpdateOrderStatus(id string, status domain.OrderStatus, filledQuantity int64, avgPrice *decimal.Decimal) (*domain.Order, error) {
	return c.updateOrder(id, "", status, filledQuantity, avgPrice)
}

// TransitionOrder is UpdateOrderStatus guarded by the order's current status.
// Returns ErrInvalidTransition when the order is not in the expected state.
func (c *Catalog) TransitionOrder(id string, from, to domain.OrderStatus, filledQuantity int64, avgPrice *decimal.Decimal) (*domain.Order, error) {
	return c.updateOrder(id, from, to, filledQuantity, avgPrice)
}

func (c *Catalog) updateOrder(id string, from, to domain.OrderStatus, filledQuantity int64, avgPrice *decimal.Decimal) (*domain.Order, error) {
	if !to.Valid() {
		return nil, domain.NewValidationError("unknown order status %q", to)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	order, ok := c.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if from != "" && order.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	if filledQuantity < 0 || filledQuantity > order.Quantity {
		return nil, domain.NewValidationError("filled quantity %d outside [0, %d]", filledQuantity, order.Quantity)
	}

	order.Status = to
	order.FilledQuantity = filledQuantity
	if avgPrice != nil {
		p := *avgPrice
		order.AverageFillPrice = &p
	}
	order.UpdatedAt = c.now()

	c.log.Debug().
		Str("order_id", id).
		Str("status", string(to)).
		Int64("filled_quantity", filledQuantity).
		Msg("Order status updated")

	out := order.Clone()
	return &out, nil
}
