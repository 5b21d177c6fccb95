package response

import (
	"github.com/moa/storefront/cart/internal/domain"
)

func NewOrder(order domain.Order) Order {
	items := make([]CartItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = CartItem{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			ImageURL:       item.ImageURL,
			Category:       item.Category,
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       item.Quantity,
			CreatedAt:      item.CreatedAt,
		}
	}
	return Order{
		Code:          order.Code,
		CustomerKey:   order.CustomerKey,
		Items:         items,
		SubtotalMinor: order.SubtotalMinor,
		TaxMinor:      order.TaxMinor,
		TotalMinor:    order.TotalMinor,
		CreatedAt:     order.CreatedAt,
	}
}

func NewCart(cart domain.Cart) Cart {
	items := make([]CartItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItem{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			ImageURL:       item.ImageURL,
			Category:       item.Category,
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       item.Quantity,
			CreatedAt:      item.CreatedAt,
		}
	}
	return Cart{
		ID:            cart.ID,
		CustomerKey:   cart.CustomerKey,
		Items:         items,
		SubtotalMinor: cart.SubtotalMinor,
		TaxMinor:      cart.TaxMinor,
		TotalMinor:    cart.TotalMinor,
		CreatedAt:     cart.CreatedAt,
		UpdatedAt:     cart.UpdatedAt,
	}
}
