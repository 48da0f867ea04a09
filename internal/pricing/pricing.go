package pricing

import "github.com/shopspring/decimal"

// Policy is the fixed display formula shared by the cart and checkout views.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

type Breakdown struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// FreeShipping reports whether the shipping line is waived.
func (b Breakdown) FreeShipping() bool {
	return b.Shipping == 0
}

// Default ships free above 100 and charges 10 otherwise, with 7% tax.
func Default() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.07"),
	}
}

func (p Policy) Quote(subtotal float64) Breakdown {
	sub := decimal.NewFromFloat(subtotal)

	shipping := p.ShippingFee
	if sub.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := sub.Mul(p.TaxRate)
	total := sub.Add(shipping).Add(tax)

	return Breakdown{
		Subtotal: sub.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}
