package cart

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

var (
	ErrInvalidQuantity = apperrors.ErrInvalidParams.WithMessage("数量必须大于0")
	ErrInvalidWarranty = apperrors.ErrInvalidParams.WithMessage("不支持的延保方案")
	ErrUnavailable     = apperrors.ErrInsufficientStock.WithMessage("商品已售罄")
)

// Warranty 延保方案
type Warranty string

const (
	WarrantyNone     Warranty = "none"
	WarrantyExtended Warranty = "extended"
	WarrantyPremium  Warranty = "premium"
)

// WarrantyPlan 延保方案详情，价格单位为分
type WarrantyPlan struct {
	Code   Warranty `json:"code"`
	Name   string   `json:"name"`
	Months int      `json:"months"`
	Price  int64    `json:"price"`
}

// WarrantyPlans 可选延保方案
var WarrantyPlans = []WarrantyPlan{
	{Code: WarrantyNone, Name: "Standard", Months: 0, Price: 0},
	{Code: WarrantyExtended, Name: "Extended (1 year)", Months: 12, Price: 9900},
	{Code: WarrantyPremium, Name: "Premium (3 years)", Months: 36, Price: 19900},
}

// ParseWarranty 解析延保方案，空值视为不选
func ParseWarranty(s string) (Warranty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return WarrantyNone, nil
	}
	for _, p := range WarrantyPlans {
		if string(p.Code) == s {
			return p.Code, nil
		}
	}
	return "", ErrInvalidWarranty
}

// Price 延保单价（分）
func (w Warranty) Price() int64 {
	for _, p := range WarrantyPlans {
		if p.Code == w {
			return p.Price
		}
	}
	return 0
}

// Item 购物车条目，Price 为加入时的商品单价快照
type Item struct {
	ID       uint
	LaptopID uint
	Quantity int
	Price    int64
	Warranty Warranty
}

// LineTotal （商品单价 + 延保单价）× 数量
func (i Item) LineTotal() int64 {
	return (i.Price + i.Warranty.Price()) * int64(i.Quantity)
}

// Cart 购物车，每个用户一个
// Subtotal/TotalItems 按条目实时计算，不落库
type Cart struct {
	ID        uint
	UserID    uint
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCart 创建空购物车
func NewCart(userID uint) *Cart {
	now := time.Now()
	return &Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}
}

// TotalItems 商品总件数
func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal 购物车小计（分）
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.LineTotal()
	}
	return total
}

// LaptopIDs 去重后的商品ID
func (c *Cart) LaptopIDs() []uint {
	seen := make(map[uint]bool, len(c.Items))
	ids := make([]uint, 0, len(c.Items))
	for _, it := range c.Items {
		if !seen[it.LaptopID] {
			seen[it.LaptopID] = true
			ids = append(ids, it.LaptopID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// LaptopState 对账所需的商品当前状态
type LaptopState struct {
	Price     int64
	Stock     int
	Available bool
}

// AddItem 加入购物车，同一商品同一延保方案合并数量，合并后不超过库存
func (c *Cart) AddItem(laptopID uint, qty int, warranty Warranty, state LaptopState) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if !state.Available || state.Stock < 1 {
		return ErrUnavailable
	}

	reserved := 0
	for _, it := range c.Items {
		if it.LaptopID == laptopID {
			reserved += it.Quantity
		}
	}
	if reserved+qty > state.Stock {
		return apperrors.ErrInsufficientStock
	}

	for i := range c.Items {
		if c.Items[i].LaptopID == laptopID && c.Items[i].Warranty == warranty {
			c.Items[i].Quantity += qty
			c.Items[i].Price = state.Price
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	c.Items = append(c.Items, Item{LaptopID: laptopID, Quantity: qty, Price: state.Price, Warranty: warranty})
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateItem 修改条目数量和延保方案
func (c *Cart) UpdateItem(itemID uint, qty int, warranty *Warranty, state LaptopState) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return apperrors.ErrCartItemNotFound
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}

	laptopID := c.Items[idx].LaptopID
	others := 0
	for i, it := range c.Items {
		if i != idx && it.LaptopID == laptopID {
			others += it.Quantity
		}
	}
	if !state.Available || others+qty > state.Stock {
		return apperrors.ErrInsufficientStock
	}

	c.Items[idx].Quantity = qty
	c.Items[idx].Price = state.Price
	if warranty != nil {
		c.Items[idx].Warranty = *warranty
	}
	c.UpdatedAt = time.Now()
	return nil
}

// RemoveItem 删除条目
func (c *Cart) RemoveItem(itemID uint) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return apperrors.ErrCartItemNotFound
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.UpdatedAt = time.Now()
	return nil
}

// Clear 清空
func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now()
}

func (c *Cart) indexOf(itemID uint) int {
	for i, it := range c.Items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

// Reconcile 读取购物车时对账：
// 商品已删除或不可售的条目移除；数量超过库存的按库存截断；价格快照同步为当前售价。
// 返回是否有变化，调用方据此决定是否持久化。
func Reconcile(c *Cart, laptops map[uint]LaptopState) bool {
	changed := false
	kept := c.Items[:0]
	remaining := make(map[uint]int, len(laptops))
	for id, st := range laptops {
		remaining[id] = st.Stock
	}

	for _, it := range c.Items {
		st, ok := laptops[it.LaptopID]
		if !ok || !st.Available || remaining[it.LaptopID] <= 0 {
			changed = true
			continue
		}
		if it.Quantity > remaining[it.LaptopID] {
			it.Quantity = remaining[it.LaptopID]
			changed = true
		}
		remaining[it.LaptopID] -= it.Quantity
		if it.Price != st.Price {
			it.Price = st.Price
			changed = true
		}
		kept = append(kept, it)
	}

	c.Items = kept
	if changed {
		c.UpdatedAt = time.Now()
	}
	return changed
}
