package domain

import (
	"time"
)

// Order is the immutable record cut from a cart at checkout. Totals are
// copied, not recomputed, so the order always matches what the customer saw.
type Order struct {
	Code          string     `json:"code"`
	CustomerKey   string     `json:"customerKey"`
	Items         []CartItem `json:"items"`
	SubtotalMinor int64      `json:"subtotalMinor"`
	TaxMinor      int64      `json:"taxMinor"`
	TotalMinor    int64      `json:"totalMinor"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func NewOrder(code string, cart Cart, now time.Time) Order {
	snapshot := cart.Clone()
	return Order{
		Code:          code,
		CustomerKey:   snapshot.CustomerKey,
		Items:         snapshot.Items,
		SubtotalMinor: snapshot.SubtotalMinor,
		TaxMinor:      snapshot.TaxMinor,
		TotalMinor:    snapshot.TotalMinor,
		CreatedAt:     now,
	}
}
