package domain

import (
	"hash/fnv"
	"strconv"
)

const (
	MinOrderQuantityLow  = 1
	MinOrderQuantityHigh = 5
)

// QuantityFunc produces the minimum order quantity for a product. It must
// return a value in [MinOrderQuantityLow, MinOrderQuantityHigh] and must be
// stable for a given product.
type QuantityFunc func(p Product) int

// HashQuantity derives the minimum order quantity from an FNV-1a hash of the
// product ID, so every product always gets the same value.
func HashQuantity(p Product) int {
	h := fnv.New32a()
	h.Write([]byte(strconv.Itoa(p.ID)))
	span := uint32(MinOrderQuantityHigh - MinOrderQuantityLow + 1)
	return MinOrderQuantityLow + int(h.Sum32()%span)
}

// Availability derives the availability label from the stock count
func Availability(stock int) string {
	if stock > 0 {
		return AvailabilityInStock
	}
	return AvailabilityOutOfStock
}

// Enricher attaches the fields the catalog does not reliably supply.
// Upstream values for those fields are always overwritten.
type Enricher struct {
	quantity QuantityFunc
}

// NewEnricher creates an Enricher; a nil QuantityFunc selects HashQuantity
func NewEnricher(q QuantityFunc) *Enricher {
	if q == nil {
		q = HashQuantity
	}
	return &Enricher{quantity: q}
}

func (e *Enricher) Enrich(p Product) Product {
	p.AvailabilityStatus = Availability(p.Stock)
	p.MinimumOrderQuantity = boundQuantity(e.quantity(p))
	return p
}

// EnrichAll returns an enriched copy of the collection
func (e *Enricher) EnrichAll(products Products) Products {
	out := make(Products, len(products))
	for i, p := range products {
		out[i] = e.Enrich(p)
	}
	return out
}

func (e *Enricher) EnrichDetail(d ProductDetail) ProductDetail {
	d.Product = e.Enrich(d.Product)
	return d
}

// boundQuantity keeps a misbehaving QuantityFunc inside the allowed range
func boundQuantity(q int) int {
	if q < MinOrderQuantityLow {
		return MinOrderQuantityLow
	}
	if q > MinOrderQuantityHigh {
		return MinOrderQuantityHigh
	}
	return q
}
