package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/techhaven/internal/domain/order"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// orderRepository 订单仓储实现
// 订单头与订单项同一次Create写入（GORM关联自动插入）
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	for i := range model.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.findOne(dbFrom(ctx, r.db).Preload("Items").Where("id = ?", id))
}

func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return r.findOne(dbFrom(ctx, r.db).Preload("Items").Where("order_no = ?", orderNo))
}

// LockByID 锁定订单头，并发的状态变更在此串行化
func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.findOne(dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").Where("id = ?", id))
}

func (r *orderRepository) findOne(query *gorm.DB) (*order.Order, error) {
	var model OrderModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// Update 只写订单头的可变字段
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	result := dbFrom(ctx, r.db).Model(&OrderModel{ID: o.ID}).
		Select("status", "is_paid", "paid_at", "payment_result", "is_delivered", "delivered_at",
			"tracking_number", "estimated_delivery", "updated_at").
		Updates(model)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

// Delete 物理删除订单与订单项
func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&OrderItemModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除订单项失败")
		}
		result := tx.Delete(&OrderModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除订单失败")
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrOrderNotFound
		}
		return nil
	})
}

// List 按创建时间倒序分页
func (r *orderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	query := dbFrom(ctx, r.db).Model(&OrderModel{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计订单失败")
	}

	var models []OrderModel
	err := query.Preload("Items").
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toOrderEntity(&models[i]))
	}
	return orders, total, nil
}

func (r *orderRepository) HasDeliveredItem(ctx context.Context, userID, laptopID uint) (bool, error) {
	var n int64
	err := dbFrom(ctx, r.db).Model(&OrderItemModel{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.laptop_id = ?",
			userID, string(order.StatusDelivered), laptopID).
		Count(&n).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询购买记录失败")
	}
	return n > 0, nil
}

func toOrderModel(o *order.Order) *OrderModel {
	m := &OrderModel{
		ID:      o.ID,
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
		Shipping: ShippingModel{
			FullName:   o.ShippingAddress.FullName,
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
			Phone:      o.ShippingAddress.Phone,
		},
		PaymentMethod:     string(o.PaymentMethod),
		Subtotal:          o.Totals.Subtotal,
		Tax:               o.Totals.Tax,
		ShippingCost:      o.Totals.ShippingCost,
		TotalPrice:        o.Totals.TotalPrice,
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
	if o.PaymentResult != nil {
		m.PaymentResult = &PaymentResultModel{
			ID:           o.PaymentResult.ID,
			Status:       o.PaymentResult.Status,
			UpdateTime:   o.PaymentResult.UpdateTime,
			EmailAddress: o.PaymentResult.EmailAddress,
		}
	}
	for _, it := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:       it.ID,
			OrderID:  it.OrderID,
			LaptopID: it.LaptopID,
			Name:     it.Name,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}
	return m
}

func toOrderEntity(m *OrderModel) *order.Order {
	o := &order.Order{
		ID:      m.ID,
		OrderNo: m.OrderNo,
		UserID:  m.UserID,
		ShippingAddress: order.ShippingAddress{
			FullName:   m.Shipping.FullName,
			Address:    m.Shipping.Address,
			City:       m.Shipping.City,
			PostalCode: m.Shipping.PostalCode,
			Country:    m.Shipping.Country,
			Phone:      m.Shipping.Phone,
		},
		PaymentMethod: order.PaymentMethod(m.PaymentMethod),
		Totals: order.Totals{
			Subtotal:     m.Subtotal,
			Tax:          m.Tax,
			ShippingCost: m.ShippingCost,
			TotalPrice:   m.TotalPrice,
		},
		Status:            order.Status(m.Status),
		IsPaid:            m.IsPaid,
		PaidAt:            m.PaidAt,
		IsDelivered:       m.IsDelivered,
		DeliveredAt:       m.DeliveredAt,
		TrackingNumber:    m.TrackingNumber,
		EstimatedDelivery: m.EstimatedDelivery,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Items:             make([]order.Item, 0, len(m.Items)),
	}
	if m.PaymentResult != nil {
		o.PaymentResult = &order.PaymentResult{
			ID:           m.PaymentResult.ID,
			Status:       m.PaymentResult.Status,
			UpdateTime:   m.PaymentResult.UpdateTime,
			EmailAddress: m.PaymentResult.EmailAddress,
		}
	}
	for _, it := range m.Items {
		o.Items = append(o.Items, order.Item{
			ID:       it.ID,
			OrderID:  it.OrderID,
			LaptopID: it.LaptopID,
			Name:     it.Name,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}
	return o
}
