package pricing

// Policy holds the charge constants applied to every order. Amounts are
// whole currency units, the tax rate is in basis points.
type Policy struct {
	FlatDeliveryFee       int64
	FreeDeliveryThreshold int64
	TaxRateBasisPoints    int64
	CODSurcharge          int64
}

func DefaultPolicy() Policy {
	return Policy{
		FlatDeliveryFee:       50,
		FreeDeliveryThreshold: 500,
		TaxRateBasisPoints:    900,
		CODSurcharge:          20,
	}
}

type Quote struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

// Compute is a pure function of (unitPrice, quantity, policy): no clock,
// no randomness. Delivery is free only when the subtotal strictly exceeds
// the threshold. Tax is rounded half-up to the whole currency unit.
func Compute(unitPrice int64, quantity int, p Policy) Quote {
	subtotal := unitPrice * int64(quantity)

	fee := p.FlatDeliveryFee
	if subtotal > p.FreeDeliveryThreshold {
		fee = 0
	}

	tax := (subtotal*p.TaxRateBasisPoints + 5000) / 10000

	return Quote{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       subtotal + fee + tax,
	}
}
