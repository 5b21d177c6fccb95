package request

// AddItem carries the catalog collaborator's point-in-time snapshot of the
// product. The cart never re-fetches the catalog, so price and display fields
// travel with the request.
type AddItem struct {
	ProductID      string `validate:"required"       json:"productId"`
	Name           string `validate:"required"       json:"name"`
	ImageURL       string `json:"imageUrl"`
	Category       string `json:"category"`
	UnitPriceMinor int64  `validate:"gte=0"          json:"unitPriceMinor"`
	Quantity       int32  `validate:"required,gte=1" json:"quantity"`
}

// UpdateItem replaces the line's quantity outright. Zero or negative means
// remove, so quantity is deliberately unvalidated here.
type UpdateItem struct {
	Quantity int32 `json:"quantity"`
}
