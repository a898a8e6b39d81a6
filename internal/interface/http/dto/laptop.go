package dto

import (
	"time"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
)

// Specs 硬件规格
type Specs struct {
	Processor string `json:"processor" example:"Intel Core i7-1360P"`
	RAM       string `json:"ram" example:"16GB LPDDR5"`
	Storage   string `json:"storage" example:"512GB SSD"`
	Display   string `json:"display" example:"13.4\" FHD+"`
	Graphics  string `json:"graphics" example:"Intel Iris Xe"`
	Battery   string `json:"battery" example:"55Wh"`
	Weight    string `json:"weight" example:"1.19kg"`
	OS        string `json:"os" example:"Windows 11"`
}

func (s Specs) toDomain() laptop.Specs {
	return laptop.Specs{
		Processor: s.Processor,
		RAM:       s.RAM,
		Storage:   s.Storage,
		Display:   s.Display,
		Graphics:  s.Graphics,
		Battery:   s.Battery,
		Weight:    s.Weight,
		OS:        s.OS,
	}
}

func fromSpecs(s laptop.Specs) Specs {
	return Specs{
		Processor: s.Processor,
		RAM:       s.RAM,
		Storage:   s.Storage,
		Display:   s.Display,
		Graphics:  s.Graphics,
		Battery:   s.Battery,
		Weight:    s.Weight,
		OS:        s.OS,
	}
}

// CreateLaptopRequest 创建商品请求（JSON或multipart）
// multipart 时 specs/features/images 可为JSON字符串，图片文件放在 images 字段
type CreateLaptopRequest struct {
	Name        string   `json:"name" binding:"required,max=200" example:"Dell XPS 13"`
	Brand       string   `json:"brand" binding:"required" example:"Dell"`
	Type        string   `json:"type" binding:"required" example:"Ultrabook"`
	Specs       Specs    `json:"specs"`
	Description string   `json:"description" binding:"required,max=5000" example:"轻薄旗舰"`
	Price       int64    `json:"price" binding:"min=0" example:"129999"` // 价格(分)
	Stock       int      `json:"stock" binding:"min=0" example:"10"`
	Images      []string `json:"images" binding:"omitempty,dive,max=500"`
	Features    []string `json:"features" binding:"omitempty,dive,max=200"`
	CategoryID  *uint    `json:"categoryId" example:"1"`
}

// DomainSpecs 规格转换
func (r *CreateLaptopRequest) DomainSpecs() laptop.Specs {
	return r.Specs.toDomain()
}

// UpdateLaptopRequest 更新商品请求，缺省字段保持不变
type UpdateLaptopRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=200"`
	Brand       *string  `json:"brand"`
	Type        *string  `json:"type"`
	Specs       *Specs   `json:"specs"`
	Description *string  `json:"description" binding:"omitempty,max=5000"`
	Price       *int64   `json:"price" binding:"omitempty,min=0"`
	Stock       *int     `json:"stock" binding:"omitempty,min=0"`
	Images      []string `json:"images" binding:"omitempty,dive,max=500"`
	Features    []string `json:"features" binding:"omitempty,dive,max=200"`
	CategoryID  *uint    `json:"categoryId"` // 0 表示移出分类
}

// DomainSpecs 规格转换，未传时返回nil
func (r *UpdateLaptopRequest) DomainSpecs() *laptop.Specs {
	if r.Specs == nil {
		return nil
	}
	s := r.Specs.toDomain()
	return &s
}

// SetStockRequest 库存调整
type SetStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0" example:"25"`
}

// LaptopResponse 商品详情
type LaptopResponse struct {
	ID            uint      `json:"id" example:"1"`
	Name          string    `json:"name" example:"Dell XPS 13"`
	Brand         string    `json:"brand" example:"Dell"`
	Type          string    `json:"type" example:"Ultrabook"`
	Specs         Specs     `json:"specs"`
	Description   string    `json:"description"`
	Price         int64     `json:"price" example:"129999"`
	PriceDisplay  string    `json:"priceDisplay" example:"1299.99"`
	Stock         int       `json:"stock" example:"10"`
	IsAvailable   bool      `json:"isAvailable" example:"true"`
	Images        []string  `json:"images"`
	Features      []string  `json:"features"`
	CategoryID    *uint     `json:"categoryId,omitempty"`
	AverageRating float64   `json:"averageRating" example:"4.5"`
	NumReviews    int       `json:"numReviews" example:"12"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewLaptopResponse 领域实体 → 响应
func NewLaptopResponse(l *laptop.Laptop) *LaptopResponse {
	return &LaptopResponse{
		ID:            l.ID,
		Name:          l.Name,
		Brand:         string(l.Brand),
		Type:          string(l.Type),
		Specs:         fromSpecs(l.Specs),
		Description:   l.Description,
		Price:         l.Price,
		PriceDisplay:  FormatPrice(l.Price),
		Stock:         l.Stock,
		IsAvailable:   l.IsAvailable,
		Images:        nonNil(l.Images),
		Features:      nonNil(l.Features),
		CategoryID:    l.CategoryID,
		AverageRating: l.AverageRating,
		NumReviews:    l.NumReviews,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// NewLaptopList 列表项；fields 非空时只输出所选字段（id 始终返回）
func NewLaptopList(laptops []*laptop.Laptop, fields []string) []interface{} {
	list := make([]interface{}, 0, len(laptops))
	for _, l := range laptops {
		if len(fields) == 0 {
			list = append(list, NewLaptopResponse(l))
			continue
		}
		list = append(list, projectLaptop(l, fields))
	}
	return list
}

func projectLaptop(l *laptop.Laptop, fields []string) map[string]interface{} {
	full := NewLaptopResponse(l)
	out := map[string]interface{}{"id": full.ID}
	for _, f := range fields {
		switch f {
		case "name":
			out[f] = full.Name
		case "brand":
			out[f] = full.Brand
		case "type":
			out[f] = full.Type
		case "specs":
			out[f] = full.Specs
		case "description":
			out[f] = full.Description
		case "price":
			out[f] = full.Price
			out["priceDisplay"] = full.PriceDisplay
		case "stock":
			out[f] = full.Stock
		case "isAvailable":
			out[f] = full.IsAvailable
		case "images":
			out[f] = full.Images
		case "features":
			out[f] = full.Features
		case "category":
			out["categoryId"] = full.CategoryID
		case "averageRating":
			out[f] = full.AverageRating
		case "numReviews":
			out[f] = full.NumReviews
		case "createdAt":
			out[f] = full.CreatedAt
		case "updatedAt":
			out[f] = full.UpdatedAt
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
