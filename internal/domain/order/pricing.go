package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Pricing 服务端金额计算规则（单位：分）
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingFlat          int64
	FreeShippingThreshold int64
}

// NewPricing 创建计价规则，taxRate 为小数形式（"0.08" 表示 8%）
func NewPricing(taxRate string, shippingFlat, freeShippingThreshold int64) (Pricing, error) {
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return Pricing{}, fmt.Errorf("无效的税率 %q: %w", taxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return Pricing{}, fmt.Errorf("税率超出范围: %s", taxRate)
	}
	return Pricing{
		TaxRate:               rate,
		ShippingFlat:          shippingFlat,
		FreeShippingThreshold: freeShippingThreshold,
	}, nil
}

// Compute 根据订单项计算金额
// tax 四舍五入到分；小计达到包邮门槛时免运费
func (p Pricing) Compute(items []Item) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}

	tax := decimal.NewFromInt(subtotal).Mul(p.TaxRate).Round(0).IntPart()

	shipping := p.ShippingFlat
	if p.FreeShippingThreshold > 0 && subtotal >= p.FreeShippingThreshold {
		shipping = 0
	}

	return Totals{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: shipping,
		TotalPrice:   subtotal + tax + shipping,
	}
}
