package gormdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/review"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

func TestReviewRepository_UniquePerUserAndLaptop(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "Ann", "ann@example.com")
	l := seedLaptop(t, db, "XPS 13", laptop.BrandDell, 129900, 3)

	first, err := review.NewReview(u.ID, l.ID, 5, "Great", "Fast and light")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := review.NewReview(u.ID, l.ID, 1, "Changed my mind", "Nope")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, second), apperrors.ErrReviewDuplicate)

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", found.UserName, "关联出评价人名称")
}

func TestReviewRepository_Summarize(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()
	l := seedLaptop(t, db, "XPS 13", laptop.BrandDell, 129900, 3)

	empty, err := repo.Summarize(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, review.Summary{}, empty)

	for i, rating := range []int{5, 4, 4} {
		u := seedUser(t, db, "U", string(rune('a'+i))+"@example.com")
		r, err := review.NewReview(u.ID, l.ID, rating, "Title", "Comment")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, r))
	}

	sum, err := repo.Summarize(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, 13.0/3.0, sum.Average, 1e-9)

	list, total, err := repo.ListByLaptop(ctx, l.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 2)
}

func TestReviewRepository_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "Ann", "ann@example.com")
	l := seedLaptop(t, db, "XPS 13", laptop.BrandDell, 129900, 3)

	r, err := review.NewReview(u.ID, l.ID, 3, "OK", "Average")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, r))

	rating := 4
	require.NoError(t, r.Edit(&rating, nil, nil))
	require.NoError(t, repo.Update(ctx, r))

	mine, total, err := repo.ListByUser(ctx, u.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 4, mine[0].Rating)

	require.NoError(t, repo.Delete(ctx, r.ID))
	assert.ErrorIs(t, repo.Delete(ctx, r.ID), apperrors.ErrReviewNotFound)
}
