package laptop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/category"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/media"
	"github.com/xiebiao/techhaven/pkg/logger"
	"github.com/xiebiao/techhaven/pkg/metrics"
	"github.com/xiebiao/techhaven/pkg/saga"
)

const sagaTimeout = 30 * time.Second

// Upload 随表单上传的图片
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// LaptopInput 商品创建参数
type LaptopInput struct {
	Name        string
	Brand       string
	Type        string
	Specs       laptop.Specs
	Description string
	Price       int64
	Stock       int
	Images      []string
	Features    []string
	CategoryID  *uint
}

// LaptopPatch 商品更新参数，nil 字段保持不变；CategoryID 为0表示移出分类
type LaptopPatch struct {
	Name        *string
	Brand       *string
	Type        *string
	Specs       *laptop.Specs
	Description *string
	Price       *int64
	Stock       *int
	Images      []string
	Features    []string
	CategoryID  *uint
}

// CreateLaptopUseCase 创建商品
// 带图片上传时按Saga执行：逐张保存图片 → 写库；写库失败时删除已保存的图片
type CreateLaptopUseCase struct {
	laptopService laptop.Service
	categoryRepo  category.Repository
	store         media.Store
	metrics       *metrics.Metrics
}

// NewCreateLaptopUseCase 创建商品用例
func NewCreateLaptopUseCase(
	laptopService laptop.Service,
	categoryRepo category.Repository,
	store media.Store,
	m *metrics.Metrics,
) *CreateLaptopUseCase {
	return &CreateLaptopUseCase{
		laptopService: laptopService,
		categoryRepo:  categoryRepo,
		store:         store,
		metrics:       m,
	}
}

// Execute 执行创建
func (uc *CreateLaptopUseCase) Execute(ctx context.Context, in LaptopInput, uploads []Upload) (*laptop.Laptop, error) {
	brand, ok := laptop.ParseBrand(in.Brand)
	if !ok {
		return nil, laptop.ErrInvalidBrand
	}
	typ, ok := laptop.ParseType(in.Type)
	if !ok {
		return nil, laptop.ErrInvalidType
	}
	if err := ensureCategory(ctx, uc.categoryRepo, in.CategoryID); err != nil {
		return nil, err
	}

	var (
		created *laptop.Laptop
		saved   []string
	)
	s := saga.New("create-laptop", logger.FromContext(ctx), saga.WithTimeout(sagaTimeout), saga.WithObserver(uc.metrics))
	addImageSteps(s, uc.store, uploads, &saved)
	s.AddStep("insert-laptop", func(ctx context.Context) error {
		images := append(append([]string{}, in.Images...), saved...)
		l, err := laptop.NewLaptop(in.Name, brand, typ, in.Specs, in.Description,
			in.Price, in.Stock, images, in.Features, in.CategoryID)
		if err != nil {
			return err
		}
		if err := uc.laptopService.Create(ctx, l); err != nil {
			return err
		}
		created = l
		return nil
	}, nil)

	if err := s.Execute(ctx); err != nil {
		return nil, unwrapStep(ctx, err)
	}
	logger.FromContext(ctx).Info("商品已创建", zap.Uint("laptop_id", created.ID), zap.Int("uploaded", len(saved)))
	return created, nil
}

// UpdateLaptopUseCase 更新商品，上传的图片追加到图片列表末尾
type UpdateLaptopUseCase struct {
	laptopService laptop.Service
	categoryRepo  category.Repository
	store         media.Store
	cache         laptop.Cache
	metrics       *metrics.Metrics
}

// NewUpdateLaptopUseCase 创建更新用例
func NewUpdateLaptopUseCase(
	laptopService laptop.Service,
	categoryRepo category.Repository,
	store media.Store,
	cache laptop.Cache,
	m *metrics.Metrics,
) *UpdateLaptopUseCase {
	return &UpdateLaptopUseCase{
		laptopService: laptopService,
		categoryRepo:  categoryRepo,
		store:         store,
		cache:         cache,
		metrics:       m,
	}
}

// Execute 执行更新
func (uc *UpdateLaptopUseCase) Execute(ctx context.Context, id uint, patch LaptopPatch, uploads []Upload) (*laptop.Laptop, error) {
	params := laptop.UpdateParams{
		Name:        patch.Name,
		Specs:       patch.Specs,
		Description: patch.Description,
		Price:       patch.Price,
		Stock:       patch.Stock,
		Images:      patch.Images,
		Features:    patch.Features,
		CategoryID:  patch.CategoryID,
	}
	if patch.Brand != nil {
		b, ok := laptop.ParseBrand(*patch.Brand)
		if !ok {
			return nil, laptop.ErrInvalidBrand
		}
		params.Brand = &b
	}
	if patch.Type != nil {
		t, ok := laptop.ParseType(*patch.Type)
		if !ok {
			return nil, laptop.ErrInvalidType
		}
		params.Type = &t
	}
	if patch.CategoryID != nil && *patch.CategoryID != 0 {
		if err := ensureCategory(ctx, uc.categoryRepo, patch.CategoryID); err != nil {
			return nil, err
		}
	}

	current, err := uc.laptopService.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		updated *laptop.Laptop
		saved   []string
	)
	s := saga.New("update-laptop", logger.FromContext(ctx), saga.WithTimeout(sagaTimeout), saga.WithObserver(uc.metrics))
	addImageSteps(s, uc.store, uploads, &saved)
	s.AddStep("update-laptop", func(ctx context.Context) error {
		if len(saved) > 0 {
			base := params.Images
			if base == nil {
				base = current.Images
			}
			params.Images = append(append([]string{}, base...), saved...)
		}
		l, err := uc.laptopService.Update(ctx, id, params)
		if err != nil {
			return err
		}
		updated = l
		return nil
	}, nil)

	if err := s.Execute(ctx); err != nil {
		return nil, unwrapStep(ctx, err)
	}
	uc.cache.Invalidate(ctx, id)
	return updated, nil
}

// DeleteLaptopUseCase 软删除商品，已下单的订单保留商品快照
type DeleteLaptopUseCase struct {
	laptopService laptop.Service
	cache         laptop.Cache
}

// NewDeleteLaptopUseCase 创建删除用例
func NewDeleteLaptopUseCase(laptopService laptop.Service, cache laptop.Cache) *DeleteLaptopUseCase {
	return &DeleteLaptopUseCase{laptopService: laptopService, cache: cache}
}

// Execute 执行删除
func (uc *DeleteLaptopUseCase) Execute(ctx context.Context, id uint) error {
	if err := uc.laptopService.Delete(ctx, id); err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, id)
	return nil
}

// SetStockUseCase 管理员调整库存，可售状态随库存同步
type SetStockUseCase struct {
	laptopService laptop.Service
	cache         laptop.Cache
}

// NewSetStockUseCase 创建库存调整用例
func NewSetStockUseCase(laptopService laptop.Service, cache laptop.Cache) *SetStockUseCase {
	return &SetStockUseCase{laptopService: laptopService, cache: cache}
}

// Execute 执行库存调整
func (uc *SetStockUseCase) Execute(ctx context.Context, id uint, stock int) (*laptop.Laptop, error) {
	l, err := uc.laptopService.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, id)
	return l, nil
}

func ensureCategory(ctx context.Context, repo category.Repository, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := repo.FindByID(ctx, *id)
	return err
}

// addImageSteps 每张图片一个步骤，失败时只补偿已保存成功的图片
func addImageSteps(s *saga.Saga, store media.Store, uploads []Upload, saved *[]string) {
	for i, up := range uploads {
		var url string
		s.AddStep(fmt.Sprintf("save-image-%d", i), func(ctx context.Context) error {
			rc, err := up.Open()
			if err != nil {
				return err
			}
			defer rc.Close()
			url, err = store.Save(ctx, media.KindLaptops, rc)
			if err != nil {
				return err
			}
			*saved = append(*saved, url)
			return nil
		}, func(ctx context.Context) error {
			return store.Delete(ctx, url)
		})
	}
}

// unwrapStep 对外返回步骤的原始错误，保留业务错误码
func unwrapStep(ctx context.Context, err error) error {
	var stepErr *saga.StepError
	if !errors.As(err, &stepErr) {
		return err
	}
	if stepErr.Compensation != nil {
		logger.FromContext(ctx).Error("saga补偿未完成，可能残留上传文件",
			zap.String("saga", stepErr.Saga),
			zap.Error(stepErr.Compensation),
		)
	}
	return stepErr.Err
}
