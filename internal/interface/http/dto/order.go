package dto

import (
	"time"

	"github.com/xiebiao/techhaven/internal/domain/order"
)

// ShippingAddress 收货地址，phone 可选
type ShippingAddress struct {
	FullName   string `json:"fullName" binding:"required,max=100" example:"张三"`
	Address    string `json:"address" binding:"required,max=300" example:"科技园路1号"`
	City       string `json:"city" binding:"required,max=100" example:"深圳"`
	PostalCode string `json:"postalCode" binding:"required,max=20" example:"518000"`
	Country    string `json:"country" binding:"required,max=100" example:"中国"`
	Phone      string `json:"phone" binding:"omitempty,max=30" example:"13800000000"`
}

// ToDomain 转为领域值对象
func (a ShippingAddress) ToDomain() order.ShippingAddress {
	return order.ShippingAddress{
		FullName:   a.FullName,
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// CreateOrderItemRequest 订单明细项，price 为用户看到的单价（分）
type CreateOrderItemRequest struct {
	LaptopID uint  `json:"laptopId" binding:"required" example:"1"`
	Quantity int   `json:"quantity" binding:"required,min=1,max=999" example:"1"`
	Price    int64 `json:"price" binding:"min=0" example:"129999"`
}

// CreateOrderRequest HTTP下单请求
// 金额字段仅用于和服务端计算结果比对
type CreateOrderRequest struct {
	OrderItems      []CreateOrderItemRequest `json:"orderItems" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddress          `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required" example:"credit_card"`
	Subtotal        *int64                   `json:"subtotal"`
	Tax             *int64                   `json:"tax"`
	ShippingCost    *int64                   `json:"shippingCost"`
	TotalPrice      *int64                   `json:"totalPrice"`
}

// ClientTotals 前端是否带了完整金额
func (r *CreateOrderRequest) ClientTotals() *order.Totals {
	if r.Subtotal == nil || r.Tax == nil || r.ShippingCost == nil || r.TotalPrice == nil {
		return nil
	}
	return &order.Totals{
		Subtotal:     *r.Subtotal,
		Tax:          *r.Tax,
		ShippingCost: *r.ShippingCost,
		TotalPrice:   *r.TotalPrice,
	}
}

// ListOrdersRequest 订单列表查询
type ListOrdersRequest struct {
	Status   string `form:"status" example:"pending"`
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100" example:"10"`
}

// UpdateStatusRequest 修改订单状态
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"shipped"`
}

// PayOrderRequest 支付结果回传，均可选
type PayOrderRequest struct {
	ID           string `json:"id" example:"PAY-123"`
	Status       string `json:"status" example:"COMPLETED"`
	UpdateTime   string `json:"update_time" example:"2024-01-15T10:30:00Z"`
	EmailAddress string `json:"email_address" binding:"omitempty,email" example:"buyer@example.com"`
}

// UpdateShippingRequest 物流信息
type UpdateShippingRequest struct {
	TrackingNumber    string     `json:"trackingNumber" binding:"omitempty,max=64" example:"SF1234567890"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

// OrderItemResponse 订单项
type OrderItemResponse struct {
	LaptopID uint   `json:"laptopId"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
}

// PaymentResultResponse 支付结果
type PaymentResultResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// OrderResponse 订单详情
type OrderResponse struct {
	ID                uint                   `json:"id" example:"1"`
	OrderNo           string                 `json:"orderNo" example:"ORD01HV4Z6Q8M7"`
	UserID            uint                   `json:"userId" example:"1"`
	OrderItems        []OrderItemResponse    `json:"orderItems"`
	ShippingAddress   ShippingAddress        `json:"shippingAddress"`
	PaymentMethod     string                 `json:"paymentMethod" example:"credit_card"`
	Subtotal          int64                  `json:"subtotal" example:"129999"`
	Tax               int64                  `json:"tax" example:"10400"`
	ShippingCost      int64                  `json:"shippingCost" example:"0"`
	TotalPrice        int64                  `json:"totalPrice" example:"140399"`
	TotalDisplay      string                 `json:"totalDisplay" example:"1403.99"`
	Status            string                 `json:"status" example:"pending"`
	IsPaid            bool                   `json:"isPaid"`
	PaidAt            *time.Time             `json:"paidAt,omitempty"`
	PaymentResult     *PaymentResultResponse `json:"paymentResult,omitempty"`
	IsDelivered       bool                   `json:"isDelivered"`
	DeliveredAt       *time.Time             `json:"deliveredAt,omitempty"`
	TrackingNumber    string                 `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time             `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// NewOrderResponse 领域实体 → 响应
func NewOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			LaptopID: it.LaptopID,
			Name:     it.Name,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}
	a := o.ShippingAddress
	resp := &OrderResponse{
		ID:         o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		OrderItems: items,
		ShippingAddress: ShippingAddress{
			FullName:   a.FullName,
			Address:    a.Address,
			City:       a.City,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Phone:      a.Phone,
		},
		PaymentMethod:     string(o.PaymentMethod),
		Subtotal:          o.Totals.Subtotal,
		Tax:               o.Totals.Tax,
		ShippingCost:      o.Totals.ShippingCost,
		TotalPrice:        o.Totals.TotalPrice,
		TotalDisplay:      FormatPrice(o.Totals.TotalPrice),
		Status:            string(o.Status),
		IsPaid:            o.IsPaid,
		PaidAt:            o.PaidAt,
		IsDelivered:       o.IsDelivered,
		DeliveredAt:       o.DeliveredAt,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if pr := o.PaymentResult; pr != nil {
		resp.PaymentResult = &PaymentResultResponse{
			ID:           pr.ID,
			Status:       pr.Status,
			UpdateTime:   pr.UpdateTime,
			EmailAddress: pr.EmailAddress,
		}
	}
	return resp
}

// NewOrderList 批量转换
func NewOrderList(orders []*order.Order) []*OrderResponse {
	list := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		list = append(list, NewOrderResponse(o))
	}
	return list
}
