package domain

import (
	"fmt"
	"strings"
)

// OrderStatus is the canonical four state order lifecycle. The order service
// vocabulary (pending, shipped, delivered) is a subset of it.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// ParseOrderStatus accepts any casing plus the "confirmed" and "placed"
// aliases, which both mean pending.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch v := OrderStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return v, nil
	case "confirmed", "placed":
		return OrderStatusPending, nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

// Rank is the zero based position in the lifecycle, -1 when unknown.
func (s OrderStatus) Rank() int {
	if r, ok := orderStatusRank[s]; ok {
		return r
	}
	return -1
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered
}

func (s OrderStatus) String() string {
	return string(s)
}
