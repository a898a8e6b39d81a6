package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v uint) *uint { return &v }

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Gaming Laptops", "gaming-laptops"},
		{"  2-in-1 & Convertibles ", "2-in-1-convertibles"},
		{"Ultrabook!!!", "ultrabook"},
		{"商务 笔记本", "商务-笔记本"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "输入 %q", tc.in)
	}
}

func TestNewCategory(t *testing.T) {
	c, err := NewCategory(" Workstations ", "移动工作站", nil)
	require.NoError(t, err)
	assert.Equal(t, "Workstations", c.Name)
	assert.Equal(t, "workstations", c.Slug)

	_, err = NewCategory("   ", "", nil)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestBuildTree(t *testing.T) {
	all := []*Category{
		{ID: 1, Name: "Laptops"},
		{ID: 2, Name: "Gaming", ParentID: ptr(1)},
		{ID: 3, Name: "Business", ParentID: ptr(1)},
		{ID: 4, Name: "Accessories"},
		{ID: 5, Name: "Orphan", ParentID: ptr(99)},
	}

	roots := BuildTree(all)
	require.Len(t, roots, 3)
	assert.Equal(t, "Accessories", roots[0].Name)
	assert.Equal(t, "Laptops", roots[1].Name)
	require.Len(t, roots[1].Children, 2)
	assert.Equal(t, "Business", roots[1].Children[0].Name)
	assert.Equal(t, "Orphan", roots[2].Name)
}

func TestCreatesCycle(t *testing.T) {
	all := []*Category{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B", ParentID: ptr(1)},
		{ID: 3, Name: "C", ParentID: ptr(2)},
	}

	assert.True(t, CreatesCycle(all, 1, 1), "不能挂到自己下面")
	assert.True(t, CreatesCycle(all, 1, 3), "不能挂到子孙节点下面")
	assert.False(t, CreatesCycle(all, 3, 1))
	assert.False(t, CreatesCycle(all, 2, 99))
}
