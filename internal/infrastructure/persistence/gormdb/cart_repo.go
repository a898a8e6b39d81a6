package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/techhaven/internal/domain/cart"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	var model CartModel
	err := dbFrom(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.NewCart(userID), nil
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

// Save 购物车行按需创建，条目先删后插
func (r *cartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if c.ID == 0 {
			if err := r.ensureCart(tx, c); err != nil {
				return err
			}
		} else if err := tx.Model(&CartModel{ID: c.ID}).Update("updated_at", time.Now()).Error; err != nil {
			return apperrors.Wrap(err, "更新购物车失败")
		}

		if err := tx.Where("cart_id = ?", c.ID).Delete(&CartItemModel{}).Error; err != nil {
			return apperrors.Wrap(err, "清理购物车条目失败")
		}
		if len(c.Items) == 0 {
			return nil
		}

		// 已有条目保留原ID，新条目由数据库分配，两批分别插入
		var kept, added []CartItemModel
		var addedIdx []int
		for i, it := range c.Items {
			m := CartItemModel{
				ID:       it.ID,
				CartID:   c.ID,
				LaptopID: it.LaptopID,
				Quantity: it.Quantity,
				Price:    it.Price,
				Warranty: string(it.Warranty),
			}
			if it.ID == 0 {
				added = append(added, m)
				addedIdx = append(addedIdx, i)
			} else {
				kept = append(kept, m)
			}
		}
		if len(kept) > 0 {
			if err := tx.Create(&kept).Error; err != nil {
				return apperrors.Wrap(err, "保存购物车条目失败")
			}
		}
		if len(added) > 0 {
			if err := tx.Create(&added).Error; err != nil {
				return apperrors.Wrap(err, "保存购物车条目失败")
			}
			for j, i := range addedIdx {
				c.Items[i].ID = added[j].ID
			}
		}
		return nil
	})
}

// ensureCart 并发首次加购时唯一索引冲突，回读已存在的购物车
func (r *cartRepository) ensureCart(tx *gorm.DB, c *cart.Cart) error {
	model := &CartModel{UserID: c.UserID}
	// 嵌套事务即Savepoint，冲突后外层事务仍可继续（PostgreSQL）
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(model).Error
	})
	if err == nil {
		c.ID = model.ID
		c.CreatedAt = model.CreatedAt
		return nil
	}
	if !isDuplicateError(err) {
		return apperrors.Wrap(err, "创建购物车失败")
	}
	var existing CartModel
	if err := tx.Where("user_id = ?", c.UserID).First(&existing).Error; err != nil {
		return apperrors.Wrap(err, "查询购物车失败")
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID uint) error {
	sub := dbFrom(ctx, r.db).Model(&CartModel{}).Select("id").Where("user_id = ?", userID)
	if err := dbFrom(ctx, r.db).Where("cart_id IN (?)", sub).Delete(&CartItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "清空购物车失败")
	}
	return nil
}

func toCartEntity(m *CartModel) *cart.Cart {
	c := &cart.Cart{
		ID:        m.ID,
		UserID:    m.UserID,
		Items:     make([]cart.Item, 0, len(m.Items)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, it := range m.Items {
		c.Items = append(c.Items, cart.Item{
			ID:       it.ID,
			LaptopID: it.LaptopID,
			Quantity: it.Quantity,
			Price:    it.Price,
			Warranty: cart.Warranty(it.Warranty),
		})
	}
	return c
}
