package domain

import "time"

type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type Address struct {
	Name      string `json:"name"`
	Street    string `json:"street"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// AddressFromShipping flattens a shipping draft into an order address.
func AddressFromShipping(d ShippingDetails) Address {
	return Address{
		Name:      d.FullName(),
		Street:    d.Address,
		Apartment: d.Apartment,
		City:      d.City,
		State:     d.State,
		Zip:       d.ZipCode,
		Country:   d.Country,
	}
}

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Status          OrderStatus `json:"status"`
	Items           []OrderItem `json:"items"`
	Total           float64     `json:"total"`
	PaymentMethod   string      `json:"payment_method"`
	ShippingAddress Address     `json:"shipping_address"`
	Email           string      `json:"email,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderDraft is what checkout hands to the order service.
type OrderDraft struct {
	UserID          string
	Items           []OrderItem
	Total           float64
	PaymentMethod   string
	ShippingAddress Address
	Email           string
}

// OrderItemsFromCart snapshots the cart line items.
func OrderItemsFromCart(state CartState) []OrderItem {
	items := make([]OrderItem, len(state.Items))
	for i, line := range state.Items {
		items[i] = OrderItem{Product: line.Product, Quantity: line.Quantity}
	}
	return items
}
