package catalog

import (
	"time"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/shopspring/decimal"
)

// daysPerYear converts maturity filters in years to an absolute boundary
const daysPerYear = 365

// BondFilter holds the optional predicates for SearchBonds. A nil field is not applied.
type BondFilter struct {
	BondType *string
	Rating   *string
	Sector   *string
	Currency *string

	// MinYield and MaxYield bound the coupon, inclusively
	MinYield *decimal.Decimal
	MaxYield *decimal.Decimal

	// MinMaturity and MaxMaturity are whole years from now, inclusive
	MinMaturity *int
	MaxMaturity *int
}

// Matches reports whether the bond satisfies every supplied predicate
func (f BondFilter) Matches(bond *domain.Bond, now time.Time) bool {
	if !matchExact(f.BondType, bond.BondType) ||
		!matchOptional(f.Rating, bond.Rating) ||
		!matchOptional(f.Sector, bond.Sector) ||
		!matchExact(f.Currency, bond.Currency) {
		return false
	}

	if f.MinYield != nil || f.MaxYield != nil {
		coupon, ok := parseDecimal(bond.Coupon)
		if !ok {
			return false
		}
		if f.MinYield != nil && coupon.LessThan(*f.MinYield) {
			return false
		}
		if f.MaxYield != nil && coupon.GreaterThan(*f.MaxYield) {
			return false
		}
	}

	if f.MinMaturity != nil || f.MaxMaturity != nil {
		if bond.MaturityDate == nil {
			return false
		}
		if f.MinMaturity != nil && bond.MaturityDate.Before(MaturityBoundary(now, *f.MinMaturity)) {
			return false
		}
		if f.MaxMaturity != nil && bond.MaturityDate.After(MaturityBoundary(now, *f.MaxMaturity)) {
			return false
		}
	}

	return true
}

// MaturityBoundary returns now + years*365 days
func MaturityBoundary(now time.Time, years int) time.Time {
	return now.AddDate(0, 0, years*daysPerYear)
}

func matchExact(want *string, got string) bool {
	return want == nil || *want == got
}

func matchOptional(want *string, got *string) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}

// parseDecimal parses numeric text; absent or non-numeric values report false
func parseDecimal(s *string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
