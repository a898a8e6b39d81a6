package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// laptopRepository 商品仓储实现
// 库存变更全部使用带条件的单条UPDATE，is_available 与 stock 同时写入
type laptopRepository struct {
	db *gorm.DB
}

// NewLaptopRepository 创建商品仓储
func NewLaptopRepository(db *gorm.DB) laptop.Repository {
	return &laptopRepository{db: db}
}

func (r *laptopRepository) Create(ctx context.Context, l *laptop.Laptop) error {
	model := toLaptopModel(l)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建商品失败")
	}
	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *laptopRepository) FindByID(ctx context.Context, id uint) (*laptop.Laptop, error) {
	var model LaptopModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLaptopNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}
	return toLaptopEntity(&model), nil
}

func (r *laptopRepository) FindByIDs(ctx context.Context, ids []uint) ([]*laptop.Laptop, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []LaptopModel
	if err := dbFrom(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "批量查询商品失败")
	}
	return toLaptopEntities(models), nil
}

// Update 更新商品资料，评分字段由UpdateRating单独维护
func (r *laptopRepository) Update(ctx context.Context, l *laptop.Laptop) error {
	model := toLaptopModel(l)
	result := dbFrom(ctx, r.db).Model(&LaptopModel{ID: l.ID}).
		Select("name", "brand", "type", "spec_processor", "spec_ram", "spec_storage", "spec_display",
			"spec_graphics", "spec_battery", "spec_weight", "spec_os", "description", "price", "stock",
			"is_available", "images", "features", "category_id", "updated_at").
		Updates(model)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新商品失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLaptopNotFound
	}
	return nil
}

func (r *laptopRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&LaptopModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除商品失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLaptopNotFound
	}
	return nil
}

// List 条件过滤 + 字段投影 + 排序 + 分页
func (r *laptopRepository) List(ctx context.Context, q laptop.ListQuery) ([]*laptop.Laptop, int64, error) {
	base := applyLaptopFilters(dbFrom(ctx, r.db).Model(&LaptopModel{}), q).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计商品失败")
	}
	if total == 0 {
		return []*laptop.Laptop{}, 0, nil
	}

	query := base
	if cols := q.Columns(); len(cols) > 0 {
		query = query.Select(cols)
	}
	for _, s := range q.Sort {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
	}

	var models []LaptopModel
	if err := query.Offset(q.Offset()).Limit(q.Limit).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品列表失败")
	}
	return toLaptopEntities(models), total, nil
}

func applyLaptopFilters(db *gorm.DB, q laptop.ListQuery) *gorm.DB {
	if len(q.Brands) > 0 {
		db = db.Where("brand IN ?", q.Brands)
	}
	if len(q.Types) > 0 {
		db = db.Where("type IN ?", q.Types)
	}
	if q.Price.GT != nil {
		db = db.Where("price > ?", *q.Price.GT)
	}
	if q.Price.GTE != nil {
		db = db.Where("price >= ?", *q.Price.GTE)
	}
	if q.Price.LT != nil {
		db = db.Where("price < ?", *q.Price.LT)
	}
	if q.Price.LTE != nil {
		db = db.Where("price <= ?", *q.Price.LTE)
	}
	if q.CategoryID != nil {
		db = db.Where("category_id = ?", *q.CategoryID)
	}
	if q.InStock {
		db = db.Where("stock > 0")
	}
	if q.MinRating != nil {
		db = db.Where("average_rating >= ?", *q.MinRating)
	}
	if q.Search != "" {
		p := containsPattern(q.Search)
		db = db.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(brand) LIKE ? ESCAPE '!' OR "+
			"LOWER(spec_processor) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", p, p, p, p)
	}
	return db
}

func (r *laptopRepository) ListAll(ctx context.Context) ([]*laptop.Laptop, error) {
	var models []LaptopModel
	if err := dbFrom(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询商品失败")
	}
	return toLaptopEntities(models), nil
}

// LockByID SELECT ... FOR UPDATE
func (r *laptopRepository) LockByID(ctx context.Context, id uint) (*laptop.Laptop, error) {
	var model LaptopModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLaptopNotFound
		}
		return nil, apperrors.Wrap(err, "锁定商品失败")
	}
	return toLaptopEntity(&model), nil
}

// DecrStock 条件扣减
// is_available 放在 stock 之前赋值：MySQL按从左到右求值，PostgreSQL/SQLite使用旧值，两种语义结果一致
func (r *laptopRepository) DecrStock(ctx context.Context, id uint, qty int) error {
	if qty <= 0 {
		return laptop.ErrInvalidQuantity
	}
	result := dbFrom(ctx, r.db).Exec(
		"UPDATE laptops SET is_available = (stock - ? > 0), stock = stock - ?, updated_at = ? "+
			"WHERE id = ? AND stock >= ? AND deleted_at IS NULL",
		qty, qty, time.Now(), id, qty,
	)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "扣减库存失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrInsufficientStock
	}
	return nil
}

// IncrStock 回补库存，已删除商品同样回补
func (r *laptopRepository) IncrStock(ctx context.Context, id uint, qty int) error {
	if qty <= 0 {
		return laptop.ErrInvalidQuantity
	}
	result := dbFrom(ctx, r.db).Exec(
		"UPDATE laptops SET is_available = (stock + ? > 0), stock = stock + ?, updated_at = ? WHERE id = ?",
		qty, qty, time.Now(), id,
	)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "回补库存失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLaptopNotFound
	}
	return nil
}

func (r *laptopRepository) SetStock(ctx context.Context, id uint, stock int) error {
	if stock < 0 {
		return laptop.ErrInvalidStock
	}
	result := dbFrom(ctx, r.db).Model(&LaptopModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stock":        stock,
		"is_available": laptop.IsAvailable(stock),
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLaptopNotFound
	}
	return nil
}

// SyncAvailability 仅在与库存不一致时写入
func (r *laptopRepository) SyncAvailability(ctx context.Context, id uint, available bool) error {
	cond := "stock <= 0"
	if available {
		cond = "stock > 0"
	}
	err := dbFrom(ctx, r.db).Model(&LaptopModel{}).
		Where("id = ? AND is_available = ? AND "+cond, id, !available).
		Update("is_available", available).Error
	if err != nil {
		return apperrors.Wrap(err, "修正可售状态失败")
	}
	return nil
}

func (r *laptopRepository) UpdateRating(ctx context.Context, id uint, average float64, count int) error {
	err := dbFrom(ctx, r.db).Model(&LaptopModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"average_rating": average,
		"num_reviews":    count,
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新商品评分失败")
	}
	return nil
}

func (r *laptopRepository) DetachCategory(ctx context.Context, categoryID uint) error {
	err := dbFrom(ctx, r.db).Unscoped().Model(&LaptopModel{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
	if err != nil {
		return apperrors.Wrap(err, "解除商品分类失败")
	}
	return nil
}

func toLaptopModel(l *laptop.Laptop) *LaptopModel {
	return &LaptopModel{
		ID:    l.ID,
		Name:  l.Name,
		Brand: string(l.Brand),
		Type:  string(l.Type),
		Specs: SpecsModel{
			Processor: l.Specs.Processor,
			RAM:       l.Specs.RAM,
			Storage:   l.Specs.Storage,
			Display:   l.Specs.Display,
			Graphics:  l.Specs.Graphics,
			Battery:   l.Specs.Battery,
			Weight:    l.Specs.Weight,
			OS:        l.Specs.OS,
		},
		Description:   l.Description,
		Price:         l.Price,
		Stock:         l.Stock,
		IsAvailable:   l.IsAvailable,
		Images:        l.Images,
		Features:      l.Features,
		CategoryID:    l.CategoryID,
		AverageRating: l.AverageRating,
		NumReviews:    l.NumReviews,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func toLaptopEntity(m *LaptopModel) *laptop.Laptop {
	return &laptop.Laptop{
		ID:    m.ID,
		Name:  m.Name,
		Brand: laptop.Brand(m.Brand),
		Type:  laptop.Type(m.Type),
		Specs: laptop.Specs{
			Processor: m.Specs.Processor,
			RAM:       m.Specs.RAM,
			Storage:   m.Specs.Storage,
			Display:   m.Specs.Display,
			Graphics:  m.Specs.Graphics,
			Battery:   m.Specs.Battery,
			Weight:    m.Specs.Weight,
			OS:        m.Specs.OS,
		},
		Description:   m.Description,
		Price:         m.Price,
		Stock:         m.Stock,
		IsAvailable:   m.IsAvailable,
		Images:        m.Images,
		Features:      m.Features,
		CategoryID:    m.CategoryID,
		AverageRating: m.AverageRating,
		NumReviews:    m.NumReviews,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toLaptopEntities(models []LaptopModel) []*laptop.Laptop {
	list := make([]*laptop.Laptop, 0, len(models))
	for i := range models {
		list = append(list, toLaptopEntity(&models[i]))
	}
	return list
}
