package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/domain/review"
	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb/gormdbtest"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

type invalidations struct {
	laptop.NopCache
	ids []uint
}

func (c *invalidations) Invalidate(_ context.Context, ids ...uint) {
	c.ids = append(c.ids, ids...)
}

type fixture struct {
	db         *gorm.DB
	uc         *ReviewUseCase
	laptopRepo laptop.Repository
	cache      *invalidations
	alice      *user.User
	bob        *user.User
	laptop     *laptop.Laptop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := gormdbtest.NewDB(t)
	f := &fixture{
		db:         db,
		laptopRepo: gormdb.NewLaptopRepository(db),
		cache:      &invalidations{},
		alice:      gormdbtest.SeedUser(t, db, "Alice", "alice@example.com", user.RoleUser),
		bob:        gormdbtest.SeedUser(t, db, "Bob", "bob@example.com", user.RoleUser),
		laptop:     gormdbtest.SeedLaptop(t, db, "ZenBook 14", 89900, 10),
	}
	f.uc = NewReviewUseCase(
		gormdb.NewReviewRepository(db),
		f.laptopRepo,
		gormdb.NewOrderRepository(db),
		gormdb.NewTxManager(db),
		f.cache,
	)
	return f
}

func (f *fixture) deliver(t *testing.T, userID uint) {
	t.Helper()
	o, err := order.NewOrder(order.GenerateOrderNo(), userID, []order.Item{{
		LaptopID: f.laptop.ID, Name: f.laptop.Name, Price: f.laptop.Price, Quantity: 1,
	}}, order.ShippingAddress{
		FullName: "Alice", Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US",
	}, order.PaymentCreditCard, order.Totals{Subtotal: f.laptop.Price, TotalPrice: f.laptop.Price})
	require.NoError(t, err)
	o.Status = order.StatusDelivered
	o.IsDelivered = true
	require.NoError(t, gormdb.NewOrderRepository(f.db).Create(context.Background(), o))
}

func (f *fixture) rating(t *testing.T) (float64, int) {
	t.Helper()
	l, err := f.laptopRepo.FindByID(context.Background(), f.laptop.ID)
	require.NoError(t, err)
	return l.AverageRating, l.NumReviews
}

func TestCreateReviewAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.deliver(t, f.alice.ID)

	r, err := f.uc.Create(ctx, CreateReviewRequest{
		UserID: f.alice.ID, LaptopID: f.laptop.ID, Rating: 5, Title: "<b>Great</b>", Comment: "Fast and light",
	})
	require.NoError(t, err)
	assert.True(t, r.IsVerifiedPurchase, "签收过该商品为已购评价")
	assert.Equal(t, "Alice", r.UserName)
	assert.Equal(t, "Great", r.Title)

	r2, err := f.uc.Create(ctx, CreateReviewRequest{
		UserID: f.bob.ID, LaptopID: f.laptop.ID, Rating: 4, Title: "Good", Comment: "Nice screen",
	})
	require.NoError(t, err)
	assert.False(t, r2.IsVerifiedPurchase)

	avg, n := f.rating(t)
	assert.InDelta(t, 4.5, avg, 0.0001)
	assert.Equal(t, 2, n)
	assert.Contains(t, f.cache.ids, f.laptop.ID)

	_, err = f.uc.Create(ctx, CreateReviewRequest{
		UserID: f.alice.ID, LaptopID: f.laptop.ID, Rating: 1, Title: "Again", Comment: "Second try",
	})
	assert.ErrorIs(t, err, apperrors.ErrReviewDuplicate)

	_, err = f.uc.Create(ctx, CreateReviewRequest{
		UserID: f.alice.ID, LaptopID: 999, Rating: 3, Title: "Ghost", Comment: "No such laptop",
	})
	assert.ErrorIs(t, err, apperrors.ErrLaptopNotFound)

	_, err = f.uc.Create(ctx, CreateReviewRequest{
		UserID: f.alice.ID, LaptopID: f.laptop.ID, Rating: 6, Title: "Bad", Comment: "Out of range",
	})
	assert.ErrorIs(t, err, review.ErrInvalidRating)
}

func TestUpdateReviewOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.uc.Create(ctx, CreateReviewRequest{
		UserID: f.alice.ID, LaptopID: f.laptop.ID, Rating: 5, Title: "Great", Comment: "Love it",
	})
	require.NoError(t, err)

	two := 2
	_, err = f.uc.Update(ctx, r.ID, Author{UserID: f.bob.ID}, UpdateReviewRequest{Rating: &two})
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	_, err = f.uc.Update(ctx, r.ID, Author{UserID: f.bob.ID, IsAdmin: true}, UpdateReviewRequest{Rating: &two})
	assert.ErrorIs(t, err, apperrors.ErrNotOwner, "管理员也不能修改他人评价")

	updated, err := f.uc.Update(ctx, r.ID, Author{UserID: f.alice.ID}, UpdateReviewRequest{Rating: &two})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, "Love it", updated.Comment)

	avg, n := f.rating(t)
	assert.InDelta(t, 2.0, avg, 0.0001)
	assert.Equal(t, 1, n)

	_, err = f.uc.Update(ctx, 999, Author{UserID: f.alice.ID}, UpdateReviewRequest{Rating: &two})
	assert.ErrorIs(t, err, apperrors.ErrReviewNotFound)
}

func TestDeleteReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine, err := f.uc.Create(ctx, CreateReviewRequest{
		UserID: f.alice.ID, LaptopID: f.laptop.ID, Rating: 3, Title: "OK", Comment: "Average",
	})
	require.NoError(t, err)
	theirs, err := f.uc.Create(ctx, CreateReviewRequest{
		UserID: f.bob.ID, LaptopID: f.laptop.ID, Rating: 5, Title: "Great", Comment: "Excellent",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.Delete(ctx, theirs.ID, Author{UserID: f.alice.ID}), apperrors.ErrNotOwner)
	require.NoError(t, f.uc.Delete(ctx, theirs.ID, Author{UserID: f.alice.ID, IsAdmin: true}))

	avg, n := f.rating(t)
	assert.InDelta(t, 3.0, avg, 0.0001)
	assert.Equal(t, 1, n)

	require.NoError(t, f.uc.Delete(ctx, mine.ID, Author{UserID: f.alice.ID}))
	avg, n = f.rating(t)
	assert.Zero(t, avg, "没有评价时评分归零")
	assert.Zero(t, n)
}

func TestListReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, u := range []*user.User{f.alice, f.bob} {
		_, err := f.uc.Create(ctx, CreateReviewRequest{
			UserID: u.ID, LaptopID: f.laptop.ID, Rating: 4, Title: "Title", Comment: "Comment",
		})
		require.NoError(t, err)
	}

	page, err := f.uc.ListByLaptop(ctx, f.laptop.ID, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Reviews, 1)

	_, err = f.uc.ListByLaptop(ctx, 999, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrLaptopNotFound)

	mine, err := f.uc.ListMine(ctx, f.bob.ID, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 100, mine.PageSize, "每页上限与其他列表一致")
	require.Len(t, mine.Reviews, 1)
	assert.Equal(t, f.bob.ID, mine.Reviews[0].UserID)
}
