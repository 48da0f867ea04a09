package orders

import "github.com/fjod/storefront/internal/domain"

type Step struct {
	Label     string             `json:"label"`
	Status    domain.OrderStatus `json:"status"`
	Completed bool               `json:"completed"`
	Current   bool               `json:"current"`
}

var steps = []struct {
	label  string
	status domain.OrderStatus
}{
	{"Order Placed", domain.OrderStatusPending},
	{"Processing", domain.OrderStatusProcessing},
	{"Shipped", domain.OrderStatusShipped},
	{"Delivered", domain.OrderStatusDelivered},
}

// Progress lists the tracking steps with every step up to and including the
// current status marked completed. Unknown statuses render as pending.
func Progress(status domain.OrderStatus) []Step {
	rank := status.Rank()
	if rank < 0 {
		rank = 0
	}
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = Step{
			Label:     s.label,
			Status:    s.status,
			Completed: i <= rank,
			Current:   i == rank,
		}
	}
	return out
}

func CompletedSteps(status domain.OrderStatus) int {
	rank := status.Rank()
	if rank < 0 {
		return 1
	}
	return rank + 1
}
