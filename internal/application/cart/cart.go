package cart

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/cart"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/shared"
	"github.com/xiebiao/techhaven/pkg/logger"
)

// CartView 购物车及条目对应的商品信息（名称、图片等用于展示）
type CartView struct {
	*cart.Cart
	Laptops map[uint]*laptop.Laptop
}

// AddItemRequest 加购请求
type AddItemRequest struct {
	LaptopID uint
	Quantity int
	Warranty string
}

// UpdateItemRequest 修改条目请求，Warranty 为nil时保持不变
type UpdateItemRequest struct {
	Quantity int
	Warranty *string
}

// CartUseCase 购物车用例
// 读取时按商品当前状态对账，有变化才写回；写操作在事务内读改写
type CartUseCase struct {
	cartRepo   cart.Repository
	laptopRepo laptop.Repository
	txManager  shared.TxManager
}

// NewCartUseCase 创建购物车用例
func NewCartUseCase(cartRepo cart.Repository, laptopRepo laptop.Repository, txManager shared.TxManager) *CartUseCase {
	return &CartUseCase{cartRepo: cartRepo, laptopRepo: laptopRepo, txManager: txManager}
}

// Get 获取购物车，清理失效条目
func (uc *CartUseCase) Get(ctx context.Context, userID uint) (*CartView, error) {
	var view *CartView
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		c, err := uc.cartRepo.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		laptops, err := uc.loadLaptops(ctx, c.LaptopIDs())
		if err != nil {
			return err
		}
		if cart.Reconcile(c, states(laptops)) && c.ID != 0 {
			logger.FromContext(ctx).Info("购物车已按库存对账", zap.Uint("user_id", userID))
			if err := uc.cartRepo.Save(ctx, c); err != nil {
				return err
			}
		}
		view = &CartView{Cart: c, Laptops: laptops}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddItem 加入购物车，同商品同延保合并数量
func (uc *CartUseCase) AddItem(ctx context.Context, userID uint, req AddItemRequest) (*CartView, error) {
	warranty, err := cart.ParseWarranty(req.Warranty)
	if err != nil {
		return nil, err
	}
	return uc.mutate(ctx, userID, func(ctx context.Context, c *cart.Cart) error {
		l, err := uc.laptopRepo.FindByID(ctx, req.LaptopID)
		if err != nil {
			return err
		}
		return c.AddItem(l.ID, req.Quantity, warranty, stateOf(l))
	})
}

// UpdateItem 修改条目数量或延保方案
func (uc *CartUseCase) UpdateItem(ctx context.Context, userID, itemID uint, req UpdateItemRequest) (*CartView, error) {
	var warranty *cart.Warranty
	if req.Warranty != nil {
		w, err := cart.ParseWarranty(*req.Warranty)
		if err != nil {
			return nil, err
		}
		warranty = &w
	}
	return uc.mutate(ctx, userID, func(ctx context.Context, c *cart.Cart) error {
		var laptopID uint
		for _, it := range c.Items {
			if it.ID == itemID {
				laptopID = it.LaptopID
			}
		}
		state := cart.LaptopState{}
		if laptopID != 0 {
			l, err := uc.laptopRepo.FindByID(ctx, laptopID)
			if err != nil {
				return err
			}
			state = stateOf(l)
		}
		return c.UpdateItem(itemID, req.Quantity, warranty, state)
	})
}

// RemoveItem 删除条目
func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, itemID uint) (*CartView, error) {
	return uc.mutate(ctx, userID, func(_ context.Context, c *cart.Cart) error {
		return c.RemoveItem(itemID)
	})
}

// Clear 清空购物车
func (uc *CartUseCase) Clear(ctx context.Context, userID uint) error {
	return uc.cartRepo.Clear(ctx, userID)
}

// mutate 在事务内读改写购物车，fn 收到的 ctx 携带事务
func (uc *CartUseCase) mutate(ctx context.Context, userID uint, fn func(ctx context.Context, c *cart.Cart) error) (*CartView, error) {
	var view *CartView
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		c, err := uc.cartRepo.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(ctx, c); err != nil {
			return err
		}
		if err := uc.cartRepo.Save(ctx, c); err != nil {
			return err
		}
		laptops, err := uc.loadLaptops(ctx, c.LaptopIDs())
		if err != nil {
			return err
		}
		view = &CartView{Cart: c, Laptops: laptops}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (uc *CartUseCase) loadLaptops(ctx context.Context, ids []uint) (map[uint]*laptop.Laptop, error) {
	byID := make(map[uint]*laptop.Laptop, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	laptops, err := uc.laptopRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range laptops {
		byID[l.ID] = l
	}
	return byID, nil
}

func states(laptops map[uint]*laptop.Laptop) map[uint]cart.LaptopState {
	m := make(map[uint]cart.LaptopState, len(laptops))
	for id, l := range laptops {
		m[id] = stateOf(l)
	}
	return m
}

func stateOf(l *laptop.Laptop) cart.LaptopState {
	return cart.LaptopState{Price: l.Price, Stock: l.Stock, Available: l.IsAvailable && l.Stock > 0}
}
