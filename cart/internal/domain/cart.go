// Package domain holds the cart aggregate: the item list, the derived totals
// and the mutation rules that keep them reconciled. It is pure and
// storage-agnostic; persistence and serialization live elsewhere.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	inErrors "github.com/moa/storefront/internal/errors"
)

// CartItem is one line of a cart. Name, ImageURL and Category are a snapshot
// of the catalog at insertion time and are never recomputed. UnitPriceMinor is
// the price of one unit in minor units (cents); money never touches a float.
type CartItem struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	Name           string    `json:"name"`
	ImageURL       string    `json:"imageUrl"`
	Category       string    `json:"category"`
	UnitPriceMinor int64     `json:"unitPriceMinor"`
	Quantity       int32     `json:"quantity"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Cart struct {
	ID            string     `json:"id"`
	CustomerKey   string     `json:"customerKey"`
	Items         []CartItem `json:"items"`
	SubtotalMinor int64      `json:"subtotalMinor"`
	TaxMinor      int64      `json:"taxMinor"`
	TotalMinor    int64      `json:"totalMinor"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func New(cartID string, customerKey string, now time.Time) Cart {
	return Cart{
		ID:          cartID,
		CustomerKey: customerKey,
		Items:       []CartItem{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddItem merges quantity into an existing line for the same product, or
// appends item as a new line. item.ID must already be minted by the caller;
// on a merge it is discarded and the existing line keeps its id. Repeated adds
// are additive.
func (c *Cart) AddItem(
	item CartItem,
	quantity int32,
	taxRate decimal.Decimal,
	now time.Time,
) error {
	if quantity < 1 {
		return inErrors.ErrInvalidQuantity
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		item.Quantity = quantity
		item.CreatedAt = now
		c.Items = append(c.Items, item)
	}

	c.recomputeTotals(taxRate)
	c.UpdatedAt = now
	return nil
}

// UpdateItemQuantity sets the line's quantity to exactly newQuantity, in
// contrast with AddItem's additive merge. A quantity of zero or less removes
// the line; addressing a missing line is an error because it means the caller
// is working from stale state.
func (c *Cart) UpdateItemQuantity(
	itemID string,
	newQuantity int32,
	taxRate decimal.Decimal,
	now time.Time,
) error {
	index := -1
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			index = i
			break
		}
	}
	if index < 0 {
		return inErrors.ErrItemNotFound
	}

	if newQuantity <= 0 {
		c.Items = append(c.Items[:index], c.Items[index+1:]...)
	} else {
		c.Items[index].Quantity = newQuantity
	}

	c.recomputeTotals(taxRate)
	c.UpdatedAt = now
	return nil
}

// RemoveItem deletes the line if present. Absence is a no-op, not an error,
// so removal is safe to retry; totals and UpdatedAt are refreshed either way.
func (c *Cart) RemoveItem(itemID string, taxRate decimal.Decimal, now time.Time) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.recomputeTotals(taxRate)
	c.UpdatedAt = now
}

// Clear empties the cart. Always succeeds.
func (c *Cart) Clear(taxRate decimal.Decimal, now time.Time) {
	c.Items = []CartItem{}
	c.recomputeTotals(taxRate)
	c.UpdatedAt = now
}

// recomputeTotals re-derives every total from the full item list rather than
// incrementally, so the invariant holds even if prior state was corrupted
// out-of-band. Tax is rounded half-up at the minor-unit boundary:
// decimal.Round rounds half away from zero, which is half-up for the
// non-negative amounts produced here.
func (c *Cart) recomputeTotals(taxRate decimal.Decimal) {
	var subtotal int64
	for _, item := range c.Items {
		subtotal += item.UnitPriceMinor * int64(item.Quantity)
	}
	tax := decimal.NewFromInt(subtotal).Mul(taxRate).Round(0).IntPart()
	c.SubtotalMinor = subtotal
	c.TaxMinor = tax
	c.TotalMinor = subtotal + tax
}

// Clone returns a deep copy. Stores hand clones across their boundary and
// checkout consumes one as its point-in-time snapshot.
func (c Cart) Clone() Cart {
	clone := c
	clone.Items = make([]CartItem, len(c.Items))
	copy(clone.Items, c.Items)
	return clone
}
