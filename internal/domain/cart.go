package domain

import "github.com/shopspring/decimal"

// CartLineItem is a product snapshot plus the quantity in the cart.
type CartLineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price * quantity for the line.
func (i CartLineItem) Subtotal() float64 {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity))).InexactFloat64()
}

type CartState struct {
	Items []CartLineItem `json:"items"`
	Total float64        `json:"total"`
}

// Recalculate recomputes Total from the items. Totals are never patched
// incrementally.
func (s *CartState) Recalculate() {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	s.Total = total.InexactFloat64()
}

// ItemCount is the sum of all quantities.
func (s CartState) ItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0
}

// Find returns the index of the line item for productID or -1.
func (s CartState) Find(productID string) int {
	for i := range s.Items {
		if s.Items[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers cannot mutate the owner's items.
func (s CartState) Clone() CartState {
	items := make([]CartLineItem, len(s.Items))
	copy(items, s.Items)
	return CartState{Items: items, Total: s.Total}
}
