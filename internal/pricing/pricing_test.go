package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	tests := []struct {
		name      string
		unitPrice int64
		quantity  int
		want      Quote
	}{
		{
			name:      "fee charged below threshold",
			unitPrice: 25,
			quantity:  10,
			want:      Quote{Subtotal: 250, DeliveryFee: 50, Tax: 23, Total: 323},
		},
		{
			name:      "subtotal equal to threshold still pays fee",
			unitPrice: 500,
			quantity:  1,
			want:      Quote{Subtotal: 500, DeliveryFee: 50, Tax: 45, Total: 595},
		},
		{
			name:      "free delivery above threshold",
			unitPrice: 501,
			quantity:  1,
			want:      Quote{Subtotal: 501, DeliveryFee: 0, Tax: 45, Total: 546},
		},
		{
			name:      "tax rounds half up",
			unitPrice: 50,
			quantity:  1,
			want:      Quote{Subtotal: 50, DeliveryFee: 50, Tax: 5, Total: 105},
		},
		{
			name:      "large order",
			unitPrice: 30,
			quantity:  100,
			want:      Quote{Subtotal: 3000, DeliveryFee: 0, Tax: 270, Total: 3270},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Compute(tt.unitPrice, tt.quantity, p)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Total, got.Subtotal+got.DeliveryFee+got.Tax)
		})
	}
}

func TestComputeFeeIsFlatOrZero(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	for qty := 1; qty <= 40; qty++ {
		q := Compute(17, qty, p)
		require.Contains(t, []int64{0, p.FlatDeliveryFee}, q.DeliveryFee)
		if q.Subtotal > p.FreeDeliveryThreshold {
			require.Zero(t, q.DeliveryFee)
		} else {
			require.Equal(t, p.FlatDeliveryFee, q.DeliveryFee)
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	first := Compute(123, 7, p)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Compute(123, 7, p))
	}
}
