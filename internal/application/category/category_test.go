package category

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/techhaven/internal/domain/category"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb/gormdbtest"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

type fixture struct {
	laptops laptop.Service
	list    *ListCategoriesUseCase
	get     *GetCategoryUseCase
	create  *CreateCategoryUseCase
	update  *UpdateCategoryUseCase
	remove  *DeleteCategoryUseCase
	seed    func(name string) *laptop.Laptop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := gormdbtest.NewDB(t)
	categoryRepo := gormdb.NewCategoryRepository(db)
	laptopRepo := gormdb.NewLaptopRepository(db)
	svc := laptop.NewService(laptopRepo)
	return &fixture{
		laptops: svc,
		list:    NewListCategoriesUseCase(categoryRepo),
		get:     NewGetCategoryUseCase(categoryRepo, svc),
		create:  NewCreateCategoryUseCase(categoryRepo),
		update:  NewUpdateCategoryUseCase(categoryRepo),
		remove:  NewDeleteCategoryUseCase(categoryRepo, laptopRepo, gormdb.NewTxManager(db)),
		seed: func(name string) *laptop.Laptop {
			return gormdbtest.SeedLaptop(t, db, name, 99900, 3)
		},
	}
}

func (f *fixture) mustCreate(t *testing.T, name string, parent *category.Category) *category.Category {
	t.Helper()
	in := CategoryInput{Name: name}
	if parent != nil {
		in.ParentID = &parent.ID
	}
	c, err := f.create.Execute(context.Background(), in)
	require.NoError(t, err)
	return c
}

func (f *fixture) assign(t *testing.T, l *laptop.Laptop, c *category.Category) {
	t.Helper()
	id := c.ID
	_, err := f.laptops.Update(context.Background(), l.ID, laptop.UpdateParams{CategoryID: &id})
	require.NoError(t, err)
}

func TestCreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustCreate(t, "Laptops", nil)
	f.mustCreate(t, "Gaming Laptops", root)
	f.mustCreate(t, "Accessories", nil)

	_, err := f.create.Execute(ctx, CategoryInput{Name: "Laptops"})
	assert.ErrorIs(t, err, apperrors.ErrCategoryDuplicate)

	missing := uint(99)
	_, err = f.create.Execute(ctx, CategoryInput{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	flat, err := f.list.Execute(ctx, false)
	require.NoError(t, err)
	assert.Len(t, flat, 3)

	tree, err := f.list.Execute(ctx, true)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Accessories", tree[0].Name)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "gaming-laptops", tree[1].Children[0].Slug)
}

func TestGetByIDOrSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustCreate(t, "Laptops", nil)
	f.mustCreate(t, "Gaming", root)
	l := f.seed("XPS 13")
	f.assign(t, l, root)
	f.seed("Unassigned")

	byID, err := f.get.Execute(ctx, strconv.FormatUint(uint64(root.ID), 10))
	require.NoError(t, err)
	assert.Equal(t, "Laptops", byID.Name)
	require.Len(t, byID.Children, 1)
	require.Len(t, byID.Laptops, 1)
	assert.Equal(t, "XPS 13", byID.Laptops[0].Name)

	bySlug, err := f.get.Execute(ctx, "Laptops")
	require.NoError(t, err)
	assert.Equal(t, root.ID, bySlug.ID)

	_, err = f.get.Execute(ctx, "no-such-category")
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestUpdateRejectsCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustCreate(t, "A", nil)
	b := f.mustCreate(t, "B", a)
	c := f.mustCreate(t, "C", b)

	_, err := f.update.Execute(ctx, a.ID, CategoryPatch{ParentID: &c.ID})
	assert.ErrorIs(t, err, apperrors.ErrCategoryCycle)

	_, err = f.update.Execute(ctx, a.ID, CategoryPatch{ParentID: &a.ID})
	assert.ErrorIs(t, err, apperrors.ErrCategoryCycle)

	root := uint(0)
	name := "C Renamed"
	moved, err := f.update.Execute(ctx, c.ID, CategoryPatch{Name: &name, ParentID: &root})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID, "ParentID为0时改为根分类")
	assert.Equal(t, "c-renamed", moved.Slug)

	dup := "A"
	_, err = f.update.Execute(ctx, b.ID, CategoryPatch{Name: &dup})
	assert.ErrorIs(t, err, apperrors.ErrCategoryDuplicate)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.mustCreate(t, "Laptops", nil)
	child := f.mustCreate(t, "Gaming", parent)
	l := f.seed("Legion")
	f.assign(t, l, child)

	assert.ErrorIs(t, f.remove.Execute(ctx, parent.ID), apperrors.ErrCategoryHasChildren)

	require.NoError(t, f.remove.Execute(ctx, child.ID))
	got, err := f.laptops.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID, "删除分类后商品移出分类")

	require.NoError(t, f.remove.Execute(ctx, parent.ID))
	assert.ErrorIs(t, f.remove.Execute(ctx, parent.ID), apperrors.ErrCategoryNotFound)
}
