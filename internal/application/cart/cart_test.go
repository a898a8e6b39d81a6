package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/techhaven/internal/domain/cart"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb/gormdbtest"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

func setup(t *testing.T) (*CartUseCase, laptop.Repository, uint, *laptop.Laptop, *laptop.Laptop) {
	t.Helper()
	db := gormdbtest.NewDB(t)
	u := gormdbtest.SeedUser(t, db, "Buyer", "buyer@example.com", user.RoleUser)
	a := gormdbtest.SeedLaptop(t, db, "ThinkPad X1", 149900, 3)
	b := gormdbtest.SeedLaptop(t, db, "MacBook Air", 109900, 5)
	laptopRepo := gormdb.NewLaptopRepository(db)
	uc := NewCartUseCase(gormdb.NewCartRepository(db), laptopRepo, gormdb.NewTxManager(db))
	return uc, laptopRepo, u.ID, a, b
}

func TestAddItemMergesAndChecksStock(t *testing.T) {
	uc, _, userID, a, b := setup(t)
	ctx := context.Background()

	view, err := uc.AddItem(ctx, userID, AddItemRequest{LaptopID: a.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.NotZero(t, view.Items[0].ID)
	assert.Equal(t, "ThinkPad X1", view.Laptops[a.ID].Name)

	view, err = uc.AddItem(ctx, userID, AddItemRequest{LaptopID: a.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, view.Items, 1, "同商品同延保合并")
	assert.Equal(t, 2, view.Items[0].Quantity)

	view, err = uc.AddItem(ctx, userID, AddItemRequest{LaptopID: b.ID, Quantity: 1, Warranty: "premium"})
	require.NoError(t, err)
	assert.Equal(t, 3, view.TotalItems())
	assert.Equal(t, int64(149900*2+109900+19900), view.Subtotal())

	_, err = uc.AddItem(ctx, userID, AddItemRequest{LaptopID: a.ID, Quantity: 2, Warranty: "extended"})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock, "不同延保方案合计也不能超过库存")

	_, err = uc.AddItem(ctx, userID, AddItemRequest{LaptopID: a.ID, Quantity: 1, Warranty: "lifetime"})
	assert.ErrorIs(t, err, cart.ErrInvalidWarranty)

	_, err = uc.AddItem(ctx, userID, AddItemRequest{LaptopID: 999, Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrLaptopNotFound)
}

// 连接池只有一个连接，事务内查询商品若未使用事务上下文会一直等待
func TestMutationsQueryLaptopInsideTransaction(t *testing.T) {
	uc, _, userID, a, _ := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	view, err := uc.AddItem(ctx, userID, AddItemRequest{LaptopID: a.ID, Quantity: 1})
	require.NoError(t, err, "新购物车加购不应阻塞")
	require.Len(t, view.Items, 1)

	view, err = uc.UpdateItem(ctx, userID, view.Items[0].ID, UpdateItemRequest{Quantity: 2})
	require.NoError(t, err, "修改条目不应阻塞")
	assert.Equal(t, 2, view.Items[0].Quantity)

	_, err = uc.RemoveItem(ctx, userID, view.Items[0].ID)
	require.NoError(t, err)
	require.NoError(t, ctx.Err())
}

func TestUpdateAndRemoveItem(t *testing.T) {
	uc, _, userID, a, _ := setup(t)
	ctx := context.Background()

	view, err := uc.AddItem(ctx, userID, AddItemRequest{LaptopID: a.ID, Quantity: 1})
	require.NoError(t, err)
	itemID := view.Items[0].ID

	extended := "extended"
	view, err = uc.UpdateItem(ctx, userID, itemID, UpdateItemRequest{Quantity: 3, Warranty: &extended})
	require.NoError(t, err)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, cart.WarrantyExtended, view.Items[0].Warranty)
	assert.Equal(t, itemID, view.Items[0].ID, "修改后条目ID不变")

	_, err = uc.UpdateItem(ctx, userID, itemID, UpdateItemRequest{Quantity: 4})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	_, err = uc.UpdateItem(ctx, userID, 12345, UpdateItemRequest{Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrCartItemNotFound)

	view, err = uc.RemoveItem(ctx, userID, itemID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = uc.RemoveItem(ctx, userID, itemID)
	assert.ErrorIs(t, err, apperrors.ErrCartItemNotFound)
}

func TestGetReconcilesWithCatalog(t *testing.T) {
	uc, laptopRepo, userID, a, b := setup(t)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, userID, AddItemRequest{LaptopID: a.ID, Quantity: 3})
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, userID, AddItemRequest{LaptopID: b.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, laptopRepo.SetStock(ctx, a.ID, 1))
	require.NoError(t, laptopRepo.Delete(ctx, b.ID))

	view, err := uc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1, "已删除商品被移除")
	assert.Equal(t, 1, view.Items[0].Quantity, "数量按库存截断")

	again, err := uc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, again.Items, 1, "对账结果已持久化")
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestGetEmptyAndClear(t *testing.T) {
	uc, _, userID, a, _ := setup(t)
	ctx := context.Background()

	view, err := uc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Subtotal())

	_, err = uc.AddItem(ctx, userID, AddItemRequest{LaptopID: a.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, uc.Clear(ctx, userID))

	view, err = uc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
