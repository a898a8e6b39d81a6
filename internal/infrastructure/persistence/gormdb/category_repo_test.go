package gormdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/techhaven/internal/domain/category"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

func TestCategoryRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	root, err := category.NewCategory("Gaming Laptops", "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, root))

	child, err := category.NewCategory("RTX Series", "", &root.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, child))

	dup, err := category.NewCategory("Gaming Laptops", "", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), apperrors.ErrCategoryDuplicate)

	bySlug, err := repo.FindBySlug(ctx, root.Slug)
	require.NoError(t, err)
	assert.Equal(t, root.ID, bySlug.ID)

	n, err := repo.CountChildren(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, child.ID))
	_, err = repo.FindByID(ctx, child.ID)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestLaptopRepository_DetachCategory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat, err := category.NewCategory("Business", "", nil)
	require.NoError(t, err)
	require.NoError(t, NewCategoryRepository(db).Create(ctx, cat))

	laptops := NewLaptopRepository(db)
	l := seedLaptop(t, db, "Latitude", laptop.BrandDell, 99900, 1)
	l.CategoryID = &cat.ID
	require.NoError(t, laptops.Update(ctx, l))

	require.NoError(t, laptops.DetachCategory(ctx, cat.ID))
	found, err := laptops.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Nil(t, found.CategoryID)
}
