package order

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress() ShippingAddress {
	return ShippingAddress{FullName: "Ann Lee", Address: "1 Main St", City: "Austin", PostalCode: "73301", Country: "US"}
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	items := []Item{{LaptopID: 1, Name: "XPS 13", Price: 99900, Quantity: 2}, {LaptopID: 2, Name: "MacBook Air", Price: 109900, Quantity: 1}}
	o, err := NewOrder(GenerateOrderNo(), 7, items, testAddress(), PaymentPayPal, Totals{})
	require.NoError(t, err)
	return o
}

func TestNewOrderValidation(t *testing.T) {
	o := newTestOrder(t)
	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, strings.HasPrefix(o.OrderNo, "ORD"))
	assert.Equal(t, int64(309700), o.ItemsSubtotal())
	assert.True(t, o.HoldsStock())

	_, err := NewOrder("ORD1", 1, nil, testAddress(), PaymentPayPal, Totals{})
	assert.ErrorIs(t, err, ErrEmptyItems)

	_, err = NewOrder("ORD1", 1, []Item{{LaptopID: 1, Quantity: 0}}, testAddress(), PaymentPayPal, Totals{})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	addr := testAddress()
	addr.City = " "
	_, err = NewOrder("ORD1", 1, []Item{{LaptopID: 1, Quantity: 1}}, addr, PaymentPayPal, Totals{})
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = NewOrder("ORD1", 1, []Item{{LaptopID: 1, Quantity: 1}}, testAddress(), PaymentMethod("bitcoin"), Totals{})
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestApplyStatusDelivered(t *testing.T) {
	o := newTestOrder(t)
	now := time.Now()

	eff, err := o.ApplyStatus(StatusDelivered, now)
	require.NoError(t, err)
	assert.True(t, eff.MarkDelivered)
	assert.True(t, o.IsDelivered)
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, now, *o.DeliveredAt)
	assert.False(t, o.HoldsStock())
}

func TestApplyStatusCancelTwiceIsNoOp(t *testing.T) {
	o := newTestOrder(t)

	eff, err := o.ApplyStatus(StatusCancelled, time.Now())
	require.NoError(t, err)
	assert.True(t, eff.Restock)

	eff, err = o.ApplyStatus(StatusCancelled, time.Now())
	require.NoError(t, err)
	assert.True(t, eff.NoOp)
	assert.False(t, eff.Restock, "重复取消不能再次回补库存")
}

func TestMarkPaid(t *testing.T) {
	o := newTestOrder(t)

	_, err := o.MarkPaid(&PaymentResult{ID: "PAY-1", Status: "COMPLETED"}, time.Now())
	require.NoError(t, err)
	assert.True(t, o.IsPaid)
	assert.NotNil(t, o.PaidAt)
	assert.Equal(t, StatusProcessing, o.Status)

	_, err = o.MarkPaid(nil, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	cancelled := newTestOrder(t)
	_, err = cancelled.ApplyStatus(StatusCancelled, time.Now())
	require.NoError(t, err)
	_, err = cancelled.MarkPaid(nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetShipping(t *testing.T) {
	o := newTestOrder(t)
	eta := time.Now().Add(72 * time.Hour)

	_, err := o.SetShipping("  ", &eta, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTracking)

	_, err = o.SetShipping("1Z999", &eta, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.Status)
	assert.Equal(t, "1Z999", o.TrackingNumber)

	_, err = o.ApplyStatus(StatusDelivered, time.Now())
	require.NoError(t, err)
	_, err = o.SetShipping("1Z000", nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPricingCompute(t *testing.T) {
	p, err := NewPricing("0.08", 1500, 50000)
	require.NoError(t, err)

	small := p.Compute([]Item{{Price: 1999, Quantity: 1}})
	assert.Equal(t, Totals{Subtotal: 1999, Tax: 160, ShippingCost: 1500, TotalPrice: 3659}, small)

	big := p.Compute([]Item{{Price: 99900, Quantity: 2}})
	assert.Equal(t, int64(199800), big.Subtotal)
	assert.Equal(t, int64(15984), big.Tax)
	assert.Zero(t, big.ShippingCost, "达到门槛包邮")
	assert.Equal(t, int64(215784), big.TotalPrice)

	_, err = NewPricing("abc", 0, 0)
	assert.Error(t, err)
	_, err = NewPricing("-0.1", 0, 0)
	assert.Error(t, err)
}

func TestGenerateOrderNoUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		no := GenerateOrderNo()
		assert.False(t, seen[no], "订单号重复: %s", no)
		seen[no] = true
	}
	assert.True(t, strings.HasPrefix(GenerateTrackingNumber(), "TH"))
}
