package laptop

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

func TestParseListQueryDefaults(t *testing.T) {
	q, err := ParseListQuery(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 12, q.Limit)
	assert.Equal(t, 0, q.Offset())
	assert.Equal(t, []SortField{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}}, q.Sort)
	assert.Nil(t, q.Columns())
	assert.True(t, q.Price.IsZero())
}

func TestParseListQueryFilters(t *testing.T) {
	values, err := url.ParseQuery("brand=apple,Dell&type=gaming&type=Business&minPrice=50000&price[lt]=200000" +
		"&category=3&inStock=true&minRating=4&search=%20RTX%20&page=2&limit=500")
	require.NoError(t, err)

	q, err := ParseListQuery(values)
	require.NoError(t, err)

	assert.Equal(t, []Brand{BrandApple, BrandDell}, q.Brands)
	assert.Equal(t, []Type{TypeGaming, TypeBusiness}, q.Types)
	require.NotNil(t, q.Price.GTE)
	assert.Equal(t, int64(50000), *q.Price.GTE)
	require.NotNil(t, q.Price.LT)
	assert.Equal(t, int64(200000), *q.Price.LT)
	assert.Nil(t, q.Price.GT)
	require.NotNil(t, q.CategoryID)
	assert.Equal(t, uint(3), *q.CategoryID)
	assert.True(t, q.InStock)
	require.NotNil(t, q.MinRating)
	assert.Equal(t, 4.0, *q.MinRating)
	assert.Equal(t, "RTX", q.Search)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, MaxLimit, q.Limit, "limit超过上限时截断")
	assert.Equal(t, MaxLimit, q.Offset())
}

func TestParseListQuerySortAndSelect(t *testing.T) {
	q, err := ParseListQuery(url.Values{"sort": {"-price,name"}, "select": {"name,price,average_rating"}})
	require.NoError(t, err)

	assert.Equal(t, []SortField{
		{Column: "price", Desc: true},
		{Column: "name", Desc: false},
		{Column: "id", Desc: false},
	}, q.Sort)
	assert.Equal(t, []string{"name", "price", "averageRating"}, q.Fields)
	assert.Equal(t, []string{"id", "stock", "is_available", "name", "price", "average_rating"}, q.Columns())

	alias, err := ParseListQuery(url.Values{"sort": {"price_desc"}})
	require.NoError(t, err)
	assert.Equal(t, SortField{Column: "price", Desc: true}, alias.Sort[0])
}

func TestParseListQueryRejectsBadInput(t *testing.T) {
	bad := []url.Values{
		{"brand": {"Nokia"}},
		{"type": {"Tablet"}},
		{"minPrice": {"-1"}},
		{"price[gte]": {"abc"}},
		{"minPrice": {"900"}, "maxPrice": {"100"}},
		{"sort": {"password"}},
		{"select": {"secret"}},
		{"page": {"0"}},
		{"limit": {"x"}},
		{"category": {"abc"}},
		{"minRating": {"7"}},
	}
	for _, v := range bad {
		_, err := ParseListQuery(v)
		require.Error(t, err, "输入 %v 应被拒绝", v)
		assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
	}
}
