package laptop

import (
	"context"
)

// Service 商品领域服务
type Service interface {
	Create(ctx context.Context, laptop *Laptop) error
	Get(ctx context.Context, id uint) (*Laptop, error)

	// List 分页查询，返回前修复可售状态与库存不一致的记录
	List(ctx context.Context, q ListQuery) ([]*Laptop, int64, error)

	Update(ctx context.Context, id uint, p UpdateParams) (*Laptop, error)
	Delete(ctx context.Context, id uint) error
	SetStock(ctx context.Context, id uint, stock int) (*Laptop, error)
}

type service struct {
	repo Repository
}

// NewService 创建商品领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, l *Laptop) error {
	if err := l.Validate(); err != nil {
		return err
	}
	l.SyncAvailability()
	return s.repo.Create(ctx, l)
}

func (s *service) Get(ctx context.Context, id uint) (*Laptop, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.SyncAvailability() {
		if err := s.repo.SyncAvailability(ctx, l.ID, l.IsAvailable); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (s *service) List(ctx context.Context, q ListQuery) ([]*Laptop, int64, error) {
	laptops, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	for _, l := range laptops {
		if !l.SyncAvailability() {
			continue
		}
		if err := s.repo.SyncAvailability(ctx, l.ID, l.IsAvailable); err != nil {
			return nil, 0, err
		}
	}
	return laptops, total, nil
}

func (s *service) Update(ctx context.Context, id uint, p UpdateParams) (*Laptop, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.Update(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) SetStock(ctx context.Context, id uint, stock int) (*Laptop, error) {
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	if err := s.repo.SetStock(ctx, id, stock); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}
