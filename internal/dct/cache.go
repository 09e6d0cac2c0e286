package dct

import (
	"sync"
)

// Cache shares the length-dependent twiddle tables between transforms.
// The tables are read-only, so a Cache is safe for concurrent use.
type Cache struct {
	data sync.Map
}

func NewCache() *Cache {
	var c Cache
	return &c
}

// New returns a DCT of length n whose tables come from the cache.
func (c *Cache) New(n int) *DCT {
	if v, ok := c.data.Load(n); ok {
		return newDCT(n, v.(*basis))
	}
	actual, _ := c.data.LoadOrStore(n, newBasis(n))
	return newDCT(n, actual.(*basis))
}

// NewPlan2D returns a 2D plan for rows x cols matrices backed by the cache.
func (c *Cache) NewPlan2D(rows, cols int) *Plan2D {
	return newPlan2D(rows, cols, c)
}
