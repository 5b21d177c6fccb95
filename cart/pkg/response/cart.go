package response

import (
	"time"
)

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
