package dto

import (
	"github.com/xiebiao/techhaven/internal/domain/cart"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
)

// AddCartItemRequest 加入购物车
type AddCartItemRequest struct {
	LaptopID uint   `json:"laptopId" binding:"required" example:"1"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=99" example:"1"`
	Warranty string `json:"warranty" example:"extended"`
}

// UpdateCartItemRequest 修改购物车条目
type UpdateCartItemRequest struct {
	Quantity int     `json:"quantity" binding:"required,min=1,max=99" example:"2"`
	Warranty *string `json:"warranty" example:"premium"`
}

// CartLaptop 条目关联的商品摘要，商品下架后为nil
type CartLaptop struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Image       string `json:"image"`
	Stock       int    `json:"stock"`
	IsAvailable bool   `json:"isAvailable"`
}

// CartItemResponse 购物车条目
type CartItemResponse struct {
	ID            uint        `json:"id"`
	LaptopID      uint        `json:"laptopId"`
	Quantity      int         `json:"quantity"`
	Price         int64       `json:"price"`
	Warranty      string      `json:"warranty"`
	WarrantyPrice int64       `json:"warrantyPrice"`
	LineTotal     int64       `json:"lineTotal"`
	Laptop        *CartLaptop `json:"laptop"`
}

// CartResponse 购物车，subtotal/totalItems 实时计算
type CartResponse struct {
	ID              uint                `json:"id"`
	UserID          uint                `json:"userId"`
	Items           []CartItemResponse  `json:"items"`
	TotalItems      int                 `json:"totalItems"`
	Subtotal        int64               `json:"subtotal"`
	SubtotalDisplay string              `json:"subtotalDisplay"`
	WarrantyPlans   []cart.WarrantyPlan `json:"warrantyPlans"`
}

// NewCartResponse laptops 为条目关联的商品
func NewCartResponse(c *cart.Cart, laptops map[uint]*laptop.Laptop) *CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		item := CartItemResponse{
			ID:            it.ID,
			LaptopID:      it.LaptopID,
			Quantity:      it.Quantity,
			Price:         it.Price,
			Warranty:      string(it.Warranty),
			WarrantyPrice: it.Warranty.Price(),
			LineTotal:     it.LineTotal(),
		}
		if l, ok := laptops[it.LaptopID]; ok {
			item.Laptop = &CartLaptop{
				ID:          l.ID,
				Name:        l.Name,
				Brand:       string(l.Brand),
				Stock:       l.Stock,
				IsAvailable: l.IsAvailable,
			}
			if len(l.Images) > 0 {
				item.Laptop.Image = l.Images[0]
			}
		}
		items = append(items, item)
	}
	return &CartResponse{
		ID:              c.ID,
		UserID:          c.UserID,
		Items:           items,
		TotalItems:      c.TotalItems(),
		Subtotal:        c.Subtotal(),
		SubtotalDisplay: FormatPrice(c.Subtotal()),
		WarrantyPlans:   cart.WarrantyPlans,
	}
}
