package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestBondClone_Independent(t *testing.T) {
	maturity := time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)
	bond := Bond{ID: "US0001", Coupon: strPtr("4.5"), Sector: strPtr("Energy"), MaturityDate: &maturity}

	clone := bond.Clone()
	*clone.Coupon = "9.9"
	*clone.Sector = "Utilities"
	*clone.MaturityDate = maturity.AddDate(1, 0, 0)

	assert.Equal(t, "4.5", *bond.Coupon)
	assert.Equal(t, "Energy", *bond.Sector)
	assert.Equal(t, maturity, *bond.MaturityDate)
	assert.Nil(t, clone.Rating)
}

func TestOrderClone_Independent(t *testing.T) {
	price := decimal.RequireFromString("101.25")
	order := Order{ID: "ord_1", Price: &price}

	clone := order.Clone()
	*clone.Price = decimal.NewFromInt(1)

	assert.True(t, order.Price.Equal(decimal.RequireFromString("101.25")))
	assert.Nil(t, clone.AverageFillPrice)
}

func TestEnumValid(t *testing.T) {
	assert.True(t, OrderSideBuy.Valid())
	assert.False(t, OrderSide("hold").Valid())
	assert.True(t, OrderTypeLimit.Valid())
	assert.False(t, OrderType("stop").Valid())
	assert.True(t, OrderStatusCancelled.Valid())
	assert.False(t, OrderStatus("open").Valid())
	assert.True(t, Frequency15Min.Valid())
	assert.False(t, PriceFrequency("1hour").Valid())
}
