package category

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/category"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/shared"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/logger"
)

// ListCategoriesUseCase 分类列表
type ListCategoriesUseCase struct {
	categoryRepo category.Repository
}

// NewListCategoriesUseCase 创建分类列表用例
func NewListCategoriesUseCase(categoryRepo category.Repository) *ListCategoriesUseCase {
	return &ListCategoriesUseCase{categoryRepo: categoryRepo}
}

// Execute tree=true 时返回根节点（子分类挂在Children下），否则按名称平铺
func (uc *ListCategoriesUseCase) Execute(ctx context.Context, tree bool) ([]*category.Category, error) {
	all, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if tree {
		return category.BuildTree(all), nil
	}
	return all, nil
}

// CategoryDetail 分类详情：直接子分类与分类下的商品
type CategoryDetail struct {
	*category.Category
	Laptops []*laptop.Laptop
}

// GetCategoryUseCase 按ID或slug查询分类
type GetCategoryUseCase struct {
	categoryRepo  category.Repository
	laptopService laptop.Service
}

// NewGetCategoryUseCase 创建分类详情用例
func NewGetCategoryUseCase(categoryRepo category.Repository, laptopService laptop.Service) *GetCategoryUseCase {
	return &GetCategoryUseCase{categoryRepo: categoryRepo, laptopService: laptopService}
}

// Execute 纯数字按ID查询，其余按slug查询
func (uc *GetCategoryUseCase) Execute(ctx context.Context, idOrSlug string) (*CategoryDetail, error) {
	key := strings.TrimSpace(idOrSlug)
	var (
		c   *category.Category
		err error
	)
	if id, convErr := strconv.ParseUint(key, 10, 64); convErr == nil {
		c, err = uc.categoryRepo.FindByID(ctx, uint(id))
	} else {
		c, err = uc.categoryRepo.FindBySlug(ctx, strings.ToLower(key))
	}
	if err != nil {
		return nil, err
	}

	all, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range all {
		if other.ParentID != nil && *other.ParentID == c.ID {
			c.Children = append(c.Children, other)
		}
	}

	id := c.ID
	laptops, _, err := uc.laptopService.List(ctx, laptop.ListQuery{
		CategoryID: &id,
		Sort:       []laptop.SortField{{Column: "name"}},
		Page:       1,
		Limit:      laptop.MaxLimit,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryDetail{Category: c, Laptops: laptops}, nil
}

// CategoryInput 分类创建参数
type CategoryInput struct {
	Name        string
	Description string
	ParentID    *uint
}

// CreateCategoryUseCase 创建分类
type CreateCategoryUseCase struct {
	categoryRepo category.Repository
}

// NewCreateCategoryUseCase 创建分类用例
func NewCreateCategoryUseCase(categoryRepo category.Repository) *CreateCategoryUseCase {
	return &CreateCategoryUseCase{categoryRepo: categoryRepo}
}

// Execute 父分类必须存在；名称重复返回ErrCategoryDuplicate
func (uc *CreateCategoryUseCase) Execute(ctx context.Context, in CategoryInput) (*category.Category, error) {
	parentID := normalizeParent(in.ParentID)
	if parentID != nil {
		if _, err := uc.categoryRepo.FindByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	c, err := category.NewCategory(in.Name, in.Description, parentID)
	if err != nil {
		return nil, err
	}
	if err := uc.categoryRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CategoryPatch 分类更新参数，ParentID 为0表示改为根分类
type CategoryPatch struct {
	Name        *string
	Description *string
	ParentID    *uint
}

// UpdateCategoryUseCase 更新分类
type UpdateCategoryUseCase struct {
	categoryRepo category.Repository
}

// NewUpdateCategoryUseCase 创建分类更新用例
func NewUpdateCategoryUseCase(categoryRepo category.Repository) *UpdateCategoryUseCase {
	return &UpdateCategoryUseCase{categoryRepo: categoryRepo}
}

// Execute 修改父分类时检查层级是否成环
func (uc *UpdateCategoryUseCase) Execute(ctx context.Context, id uint, patch CategoryPatch) (*category.Category, error) {
	c, err := uc.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if err := c.Rename(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		c.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ParentID != nil {
		parentID := normalizeParent(patch.ParentID)
		if parentID != nil {
			all, err := uc.categoryRepo.List(ctx)
			if err != nil {
				return nil, err
			}
			if !containsCategory(all, *parentID) {
				return nil, apperrors.ErrCategoryNotFound
			}
			if category.CreatesCycle(all, id, *parentID) {
				return nil, apperrors.ErrCategoryCycle
			}
		}
		c.ParentID = parentID
	}
	if err := uc.categoryRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategoryUseCase 删除分类
type DeleteCategoryUseCase struct {
	categoryRepo category.Repository
	laptopRepo   laptop.Repository
	txManager    shared.TxManager
}

// NewDeleteCategoryUseCase 创建分类删除用例
func NewDeleteCategoryUseCase(
	categoryRepo category.Repository,
	laptopRepo laptop.Repository,
	txManager shared.TxManager,
) *DeleteCategoryUseCase {
	return &DeleteCategoryUseCase{
		categoryRepo: categoryRepo,
		laptopRepo:   laptopRepo,
		txManager:    txManager,
	}
}

// Execute 存在子分类时拒绝删除；分类下的商品移出分类
func (uc *DeleteCategoryUseCase) Execute(ctx context.Context, id uint) error {
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.categoryRepo.FindByID(ctx, id); err != nil {
			return err
		}
		n, err := uc.categoryRepo.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.ErrCategoryHasChildren
		}
		if err := uc.laptopRepo.DetachCategory(ctx, id); err != nil {
			return err
		}
		return uc.categoryRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("分类已删除", zap.Uint("category_id", id))
	return nil
}

func normalizeParent(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}

func containsCategory(all []*category.Category, id uint) bool {
	for _, c := range all {
		if c.ID == id {
			return true
		}
	}
	return false
}
