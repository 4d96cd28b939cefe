package catalog

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Facets lists the distinct filterable values present in the catalog
type Facets struct {
	Sectors   []string `json:"sectors"`
	Ratings   []string `json:"ratings"`
	BondTypes []string `json:"bond_types"`
	Stats     Stats    `json:"stats"`
}

// Stats summarizes catalog contents
type Stats struct {
	BondCount    int      `json:"bond_count"`
	OrderCount   int      `json:"order_count"`
	CouponCount  int      `json:"coupon_count"`
	CouponMean   *float64 `json:"coupon_mean"`
	CouponStdDev *float64 `json:"coupon_stddev"`
	CouponMin    *float64 `json:"coupon_min"`
	CouponMax    *float64 `json:"coupon_max"`
}

// Sectors returns the sorted distinct sectors
func (c *Catalog) Sectors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	set := make(map[string]struct{})
	for _, bond := range c.bonds {
		if bond.Sector != nil {
			set[*bond.Sector] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Ratings returns the sorted distinct ratings
func (c *Catalog) Ratings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	set := make(map[string]struct{})
	for _, bond := range c.bonds {
		if bond.Rating != nil {
			set[*bond.Rating] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// BondTypes returns the sorted distinct bond types
func (c *Catalog) BondTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	set := make(map[string]struct{})
	for _, bond := range c.bonds {
		set[bond.BondType] = struct{}{}
	}
	return sortedKeys(set)
}

// Stats returns counts plus coupon distribution over bonds with a numeric coupon
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	coupons := make([]float64, 0, len(c.bonds))
	for _, bond := range c.bonds {
		if d, ok := parseDecimal(bond.Coupon); ok {
			coupons = append(coupons, d.InexactFloat64())
		}
	}

	s := Stats{
		BondCount:   len(c.bonds),
		OrderCount:  len(c.orders),
		CouponCount: len(coupons),
	}
	if len(coupons) == 0 {
		return s
	}

	mean, std := stat.MeanStdDev(coupons, nil)
	if math.IsNaN(std) {
		std = 0
	}
	sort.Float64s(coupons)
	minC, maxC := coupons[0], coupons[len(coupons)-1]
	s.CouponMean = &mean
	s.CouponStdDev = &std
	s.CouponMin = &minC
	s.CouponMax = &maxC
	return s
}

// Facets gathers all facet lists and stats
func (c *Catalog) Facets() Facets {
	return Facets{
		Sectors:   c.Sectors(),
		Ratings:   c.Ratings(),
		BondTypes: c.BondTypes(),
		Stats:     c.Stats(),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
