package gormdb

import (
	"time"

	"gorm.io/gorm"
)

// =========================================
// 用户
// =========================================

// UserModel 用户表
type UserModel struct {
	ID        uint           `gorm:"primaryKey;comment:用户ID"`
	Name      string         `gorm:"type:varchar(50);not null;comment:用户名"`
	Email     string         `gorm:"type:varchar(100);uniqueIndex;not null;comment:邮箱"`
	Password  string         `gorm:"type:varchar(255);not null;comment:bcrypt哈希"`
	Role      string         `gorm:"type:varchar(10);not null;default:user;comment:角色 user/admin"`
	Avatar    string         `gorm:"type:varchar(255);comment:头像"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:软删除时间"`
}

func (UserModel) TableName() string {
	return "users"
}

// =========================================
// 分类
// =========================================

// CategoryModel 分类表
type CategoryModel struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null;comment:分类名称"`
	Slug        string    `gorm:"type:varchar(60);uniqueIndex;not null;comment:URL标识"`
	Description string    `gorm:"type:text;comment:描述"`
	ParentID    *uint     `gorm:"index;comment:上级分类"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CategoryModel) TableName() string {
	return "categories"
}

// =========================================
// 商品
// =========================================

// SpecsModel 规格字段，以 spec_ 前缀平铺在商品表
type SpecsModel struct {
	Processor string `gorm:"type:varchar(100);comment:处理器"`
	RAM       string `gorm:"type:varchar(50);comment:内存"`
	Storage   string `gorm:"type:varchar(50);comment:存储"`
	Display   string `gorm:"type:varchar(100);comment:屏幕"`
	Graphics  string `gorm:"type:varchar(100);comment:显卡"`
	Battery   string `gorm:"type:varchar(50);comment:电池"`
	Weight    string `gorm:"type:varchar(50);comment:重量"`
	OS        string `gorm:"type:varchar(50);comment:操作系统"`
}

// LaptopModel 商品表
// is_available 与 stock 在同一条UPDATE中维护
type LaptopModel struct {
	ID            uint           `gorm:"primaryKey"`
	Name          string         `gorm:"type:varchar(200);not null;index;comment:商品名称"`
	Brand         string         `gorm:"type:varchar(30);not null;index;comment:品牌"`
	Type          string         `gorm:"type:varchar(30);not null;index;comment:机型分类"`
	Specs         SpecsModel     `gorm:"embedded;embeddedPrefix:spec_"`
	Description   string         `gorm:"type:text;not null;comment:描述"`
	Price         int64          `gorm:"not null;index;comment:价格（分）"`
	Stock         int            `gorm:"not null;default:0;comment:库存"`
	IsAvailable   bool           `gorm:"not null;default:false;index;comment:是否可售"`
	Images        []string       `gorm:"serializer:json;type:text;comment:图片"`
	Features      []string       `gorm:"serializer:json;type:text;comment:卖点"`
	CategoryID    *uint          `gorm:"index;comment:分类ID"`
	AverageRating float64        `gorm:"not null;default:0;comment:平均评分"`
	NumReviews    int            `gorm:"not null;default:0;comment:评价数"`
	CreatedAt     time.Time      `gorm:"index"`
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (LaptopModel) TableName() string {
	return "laptops"
}

// =========================================
// 订单
// =========================================

// ShippingModel 收货地址，以 shipping_ 前缀平铺在订单表
type ShippingModel struct {
	FullName   string `gorm:"type:varchar(100)"`
	Address    string `gorm:"type:varchar(255)"`
	City       string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(100)"`
	Phone      string `gorm:"type:varchar(30)"`
}

// PaymentResultModel 支付回传，JSON存储
type PaymentResultModel struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// OrderModel 订单表
type OrderModel struct {
	ID                uint                `gorm:"primaryKey"`
	OrderNo           string              `gorm:"type:varchar(32);uniqueIndex;not null;comment:订单号"`
	UserID            uint                `gorm:"not null;index;comment:下单用户"`
	Shipping          ShippingModel       `gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod     string              `gorm:"type:varchar(30);not null;comment:支付方式"`
	Subtotal          int64               `gorm:"not null;comment:商品小计（分）"`
	Tax               int64               `gorm:"not null;comment:税费（分）"`
	ShippingCost      int64               `gorm:"not null;comment:运费（分）"`
	TotalPrice        int64               `gorm:"not null;comment:总金额（分）"`
	Status            string              `gorm:"type:varchar(20);not null;default:pending;index;comment:pending/processing/shipped/delivered/cancelled"`
	IsPaid            bool                `gorm:"not null;default:false"`
	PaidAt            *time.Time          `gorm:"comment:支付时间"`
	PaymentResult     *PaymentResultModel `gorm:"serializer:json;type:text"`
	IsDelivered       bool                `gorm:"not null;default:false"`
	DeliveredAt       *time.Time          `gorm:"comment:签收时间"`
	TrackingNumber    string              `gorm:"type:varchar(64);comment:物流单号"`
	EstimatedDelivery *time.Time          `gorm:"comment:预计送达"`
	CreatedAt         time.Time           `gorm:"index"`
	UpdatedAt         time.Time
	Items             []OrderItemModel    `gorm:"foreignKey:OrderID"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 订单项表，保存下单时的商品快照
type OrderItemModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"not null;index"`
	LaptopID  uint   `gorm:"not null;index"`
	Name      string `gorm:"type:varchar(200);not null;comment:商品名称快照"`
	Price     int64  `gorm:"not null;comment:单价快照（分）"`
	Image     string `gorm:"type:varchar(255);comment:图片快照"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// =========================================
// 购物车
// =========================================

// CartModel 购物车表，每个用户一行
type CartModel struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"uniqueIndex;not null"`
	Items     []CartItemModel `gorm:"foreignKey:CartID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel 购物车条目表
type CartItemModel struct {
	ID       uint   `gorm:"primaryKey"`
	CartID   uint   `gorm:"not null;index"`
	LaptopID uint   `gorm:"not null"`
	Quantity int    `gorm:"not null"`
	Price    int64  `gorm:"not null;comment:加入时单价（分）"`
	Warranty string `gorm:"type:varchar(20);not null;default:none"`
}

func (CartItemModel) TableName() string {
	return "cart_items"
}

// =========================================
// 评价
// =========================================

// ReviewModel 评价表，(user_id, laptop_id) 唯一
type ReviewModel struct {
	ID                 uint   `gorm:"primaryKey"`
	UserID             uint   `gorm:"not null;uniqueIndex:idx_review_user_laptop"`
	LaptopID           uint   `gorm:"not null;uniqueIndex:idx_review_user_laptop;index"`
	Rating             int    `gorm:"not null"`
	Title              string `gorm:"type:varchar(100);not null"`
	Comment            string `gorm:"type:text;not null"`
	IsVerifiedPurchase bool   `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// 查询时关联users表得到
	UserName string `gorm:"->;-:migration"`
}

func (ReviewModel) TableName() string {
	return "reviews"
}
