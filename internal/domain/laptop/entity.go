package laptop

import (
	"strings"
	"time"
)

// Brand 品牌枚举
type Brand string

const (
	BrandApple     Brand = "Apple"
	BrandDell      Brand = "Dell"
	BrandHP        Brand = "HP"
	BrandLenovo    Brand = "Lenovo"
	BrandASUS      Brand = "ASUS"
	BrandAcer      Brand = "Acer"
	BrandMSI       Brand = "MSI"
	BrandMicrosoft Brand = "Microsoft"
	BrandSamsung   Brand = "Samsung"
	BrandRazer     Brand = "Razer"
	BrandOther     Brand = "Other"
)

// Brands 全部品牌，顺序即前端展示顺序
var Brands = []Brand{
	BrandApple, BrandDell, BrandHP, BrandLenovo, BrandASUS, BrandAcer,
	BrandMSI, BrandMicrosoft, BrandSamsung, BrandRazer, BrandOther,
}

// ParseBrand 忽略大小写解析品牌
func ParseBrand(s string) (Brand, bool) {
	for _, b := range Brands {
		if strings.EqualFold(string(b), strings.TrimSpace(s)) {
			return b, true
		}
	}
	return "", false
}

// Type 机型分类枚举
type Type string

const (
	TypeGaming      Type = "Gaming"
	TypeBusiness    Type = "Business"
	TypeUltrabook   Type = "Ultrabook"
	Type2in1        Type = "2-in-1"
	TypeWorkstation Type = "Workstation"
	TypeChromebook  Type = "Chromebook"
	TypeBudget      Type = "Budget"
)

var Types = []Type{
	TypeGaming, TypeBusiness, TypeUltrabook, Type2in1, TypeWorkstation, TypeChromebook, TypeBudget,
}

// ParseType 忽略大小写解析机型
func ParseType(s string) (Type, bool) {
	for _, t := range Types {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// Specs 硬件规格
type Specs struct {
	Processor string
	RAM       string
	Storage   string
	Display   string
	Graphics  string
	Battery   string
	Weight    string
	OS        string
}

// Laptop 商品实体（聚合根）
// 价格单位为分；IsAvailable 始终等于 Stock > 0
// AverageRating/NumReviews 由评价聚合计算，不允许直接修改
type Laptop struct {
	ID            uint
	Name          string
	Brand         Brand
	Type          Type
	Specs         Specs
	Description   string
	Price         int64
	Stock         int
	IsAvailable   bool
	Images        []string
	Features      []string
	CategoryID    *uint
	AverageRating float64
	NumReviews    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewLaptop 创建商品（工厂方法），返回前完成校验
func NewLaptop(name string, brand Brand, typ Type, specs Specs, description string,
	price int64, stock int, images, features []string, categoryID *uint) (*Laptop, error) {
	now := time.Now()
	l := &Laptop{
		Name:        strings.TrimSpace(name),
		Brand:       brand,
		Type:        typ,
		Specs:       specs,
		Description: strings.TrimSpace(description),
		Price:       price,
		Stock:       stock,
		IsAvailable: IsAvailable(stock),
		Images:      compact(images),
		Features:    compact(features),
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// IsAvailable 可售状态的唯一推导规则
func IsAvailable(stock int) bool {
	return stock > 0
}

// Validate 校验商品字段
func (l *Laptop) Validate() error {
	switch {
	case l.Name == "" || len(l.Name) > 200:
		return ErrInvalidName
	case !isKnownBrand(l.Brand):
		return ErrInvalidBrand
	case !isKnownType(l.Type):
		return ErrInvalidType
	case l.Specs.Processor == "" || l.Specs.RAM == "" || l.Specs.Storage == "" || l.Specs.Display == "":
		return ErrInvalidSpecs
	case l.Description == "":
		return ErrInvalidDescription
	case l.Price < 0:
		return ErrInvalidPrice
	case l.Stock < 0:
		return ErrInvalidStock
	case len(l.Images) == 0:
		return ErrImagesRequired
	case len(l.Features) == 0:
		return ErrFeaturesRequired
	}
	return nil
}

// SyncAvailability 按库存修正可售状态，返回是否发生变化
func (l *Laptop) SyncAvailability() bool {
	want := IsAvailable(l.Stock)
	if l.IsAvailable == want {
		return false
	}
	l.IsAvailable = want
	return true
}

// SetStock 管理员调整库存
func (l *Laptop) SetStock(stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	l.Stock = stock
	l.IsAvailable = IsAvailable(stock)
	l.UpdatedAt = time.Now()
	return nil
}

// Update 局部更新，nil 字段保持不变
func (l *Laptop) Update(p UpdateParams) error {
	if p.Name != nil {
		l.Name = strings.TrimSpace(*p.Name)
	}
	if p.Brand != nil {
		l.Brand = *p.Brand
	}
	if p.Type != nil {
		l.Type = *p.Type
	}
	if p.Specs != nil {
		l.Specs = *p.Specs
	}
	if p.Description != nil {
		l.Description = strings.TrimSpace(*p.Description)
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Stock != nil {
		l.Stock = *p.Stock
	}
	if p.Images != nil {
		l.Images = compact(p.Images)
	}
	if p.Features != nil {
		l.Features = compact(p.Features)
	}
	if p.CategoryID != nil {
		if *p.CategoryID == 0 {
			l.CategoryID = nil
		} else {
			id := *p.CategoryID
			l.CategoryID = &id
		}
	}
	l.IsAvailable = IsAvailable(l.Stock)
	l.UpdatedAt = time.Now()
	return l.Validate()
}

// UpdateParams 商品更新参数，CategoryID 为 0 表示移出分类
type UpdateParams struct {
	Name        *string
	Brand       *Brand
	Type        *Type
	Specs       *Specs
	Description *string
	Price       *int64
	Stock       *int
	Images      []string
	Features    []string
	CategoryID  *uint
}

func isKnownBrand(b Brand) bool {
	parsed, ok := ParseBrand(string(b))
	return ok && parsed == b
}

func isKnownType(t Type) bool {
	parsed, ok := ParseType(string(t))
	return ok && parsed == t
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
