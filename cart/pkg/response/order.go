package response

import (
	"time"
)

type Order struct {
	Code          string     `json:"code"`
	CustomerKey   string     `json:"customerKey"`
	Items         []CartItem `json:"items"`
	SubtotalMinor int64      `json:"subtotalMinor"`
	TaxMinor      int64      `json:"taxMinor"`
	TotalMinor    int64      `json:"totalMinor"`
	CreatedAt     time.Time  `json:"createdAt"`
}
