package orders

import (
	"time"

	"github.com/fjod/storefront/internal/domain"
)

// SampleOrders builds the demo order history owned by userID. products must
// be the stock catalog in catalog order.
func SampleOrders(userID string, products []domain.Product) []*domain.Order {
	if len(products) < 12 {
		return nil
	}
	address := domain.Address{
		Name:    "John Doe",
		Street:  "123 Main St",
		City:    "Anuradhapura",
		State:   "North Central",
		Zip:     "50000",
		Country: "Sri Lanka",
	}
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	order := func(id string, date time.Time, status domain.OrderStatus, total float64, method string, items ...domain.OrderItem) *domain.Order {
		return &domain.Order{
			ID:              id,
			UserID:          userID,
			Status:          status,
			Items:           items,
			Total:           total,
			PaymentMethod:   method,
			ShippingAddress: address,
			CreatedAt:       date,
			UpdatedAt:       date,
		}
	}
	one := func(p domain.Product) domain.OrderItem {
		return domain.OrderItem{Product: p, Quantity: 1}
	}

	return []*domain.Order{
		order("ORD-1234-5678", day(2023, time.April, 15), domain.OrderStatusDelivered, 329.98,
			domain.PaymentCreditCard.Label(), one(products[0]), one(products[2])),
		order("ORD-2345-6789", day(2023, time.May, 20), domain.OrderStatusShipped, 149.99,
			domain.PaymentPayPal.Label(), one(products[11])),
		order("ORD-3456-7890", day(2023, time.June, 10), domain.OrderStatusProcessing, 279.97,
			domain.PaymentCreditCard.Label(), one(products[3]), one(products[5]), one(products[6])),
	}
}
