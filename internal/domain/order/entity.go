package order

import (
	"strings"
	"time"
)

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// ParsePaymentMethod 解析支付方式
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch pm := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); pm {
	case PaymentCreditCard, PaymentPayPal, PaymentCashOnDelivery, PaymentBankTransfer:
		return pm, nil
	}
	return "", ErrInvalidPayment
}

// ShippingAddress 收货地址，Phone 之外均为必填
type ShippingAddress struct {
	FullName   string
	Address    string
	City       string
	PostalCode string
	Country    string
	Phone      string
}

// Validate 校验必填字段
func (a ShippingAddress) Validate() error {
	for _, v := range []string{a.FullName, a.Address, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidAddress
		}
	}
	return nil
}

// Item 订单项，Name/Price/Image 为下单时的商品快照
type Item struct {
	ID       uint
	OrderID  uint
	LaptopID uint
	Name     string
	Price    int64
	Image    string
	Quantity int
}

// LineTotal 行小计（分）
func (i Item) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// PaymentResult 支付网关回传结果
type PaymentResult struct {
	ID           string
	Status       string
	UpdateTime   string
	EmailAddress string
}

// Totals 订单金额（分）
type Totals struct {
	Subtotal     int64
	Tax          int64
	ShippingCost int64
	TotalPrice   int64
}

// Order 订单实体（聚合根）
type Order struct {
	ID                uint
	OrderNo           string
	UserID            uint
	Items             []Item
	ShippingAddress   ShippingAddress
	PaymentMethod     PaymentMethod
	Totals            Totals
	Status            Status
	IsPaid            bool
	PaidAt            *time.Time
	PaymentResult     *PaymentResult
	IsDelivered       bool
	DeliveredAt       *time.Time
	TrackingNumber    string
	EstimatedDelivery *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewOrder 创建订单（工厂方法），初始状态为pending
func NewOrder(orderNo string, userID uint, items []Item, addr ShippingAddress, pm PaymentMethod, totals Totals) (*Order, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParsePaymentMethod(string(pm)); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Order{
		OrderNo:         orderNo,
		UserID:          userID,
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   pm,
		Totals:          totals,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ValidateItems 订单项基础校验
func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if it.Price < 0 {
			return ErrInvalidPrice
		}
	}
	return nil
}

// ApplyStatus 按状态机变更状态，返回需要执行的副作用
func (o *Order) ApplyStatus(to Status, now time.Time) (Effects, error) {
	eff, err := Transition(o.Status, to)
	if err != nil || eff.NoOp {
		return eff, err
	}
	o.Status = to
	if eff.MarkDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
	return eff, nil
}

// MarkPaid 标记已支付，pending 订单进入 processing
func (o *Order) MarkPaid(result *PaymentResult, now time.Time) (Effects, error) {
	if o.Status == StatusCancelled {
		return Effects{}, ErrCancelledNotPayable
	}
	if o.IsPaid {
		return Effects{}, ErrAlreadyPaid
	}
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = result
	o.UpdatedAt = now
	if o.Status == StatusPending {
		return o.ApplyStatus(StatusProcessing, now)
	}
	return Effects{}, nil
}

// SetShipping 写入物流信息，未发货的订单进入 shipped
func (o *Order) SetShipping(trackingNumber string, eta *time.Time, now time.Time) (Effects, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return Effects{}, ErrInvalidTracking
	}
	if o.Status.IsTerminal() {
		return Effects{}, ErrInvalidTransition
	}
	o.TrackingNumber = trackingNumber
	o.EstimatedDelivery = eta
	o.UpdatedAt = now
	if o.Status != StatusShipped {
		return o.ApplyStatus(StatusShipped, now)
	}
	return Effects{}, nil
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// HoldsStock 订单是否仍占用库存（未发货且未取消）
func (o *Order) HoldsStock() bool {
	return o.Status.Cancellable()
}

// ItemsSubtotal 按订单项计算商品小计
func (o *Order) ItemsSubtotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.LineTotal()
	}
	return total
}
