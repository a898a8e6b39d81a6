package laptop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

func validSpecs() Specs {
	return Specs{Processor: "Intel i7-13700H", RAM: "16GB", Storage: "1TB SSD", Display: "15.6\" FHD"}
}

func newTestLaptop(t *testing.T, stock int) *Laptop {
	t.Helper()
	l, err := NewLaptop("ROG Strix G16", BrandASUS, TypeGaming, validSpecs(), "高刷电竞本",
		159900, stock, []string{"/uploads/laptops/a.jpg"}, []string{"240Hz"}, nil)
	require.NoError(t, err)
	return l
}

func TestNewLaptopDerivesAvailability(t *testing.T) {
	assert.True(t, newTestLaptop(t, 3).IsAvailable)
	assert.False(t, newTestLaptop(t, 0).IsAvailable)
}

func TestNewLaptopValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Laptop)
		want   error
	}{
		{"负价格", func(l *Laptop) { l.Price = -1 }, ErrInvalidPrice},
		{"负库存", func(l *Laptop) { l.Stock = -1 }, ErrInvalidStock},
		{"没有图片", func(l *Laptop) { l.Images = nil }, ErrImagesRequired},
		{"没有卖点", func(l *Laptop) { l.Features = []string{} }, ErrFeaturesRequired},
		{"未知品牌", func(l *Laptop) { l.Brand = "Nokia" }, ErrInvalidBrand},
		{"品牌大小写不规范", func(l *Laptop) { l.Brand = "asus" }, ErrInvalidBrand},
		{"未知机型", func(l *Laptop) { l.Type = "Tablet" }, ErrInvalidType},
		{"缺少处理器", func(l *Laptop) { l.Specs.Processor = "" }, ErrInvalidSpecs},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLaptop(t, 1)
			tc.mutate(l)
			err := l.Validate()
			require.Error(t, err)
			assert.Equal(t, tc.want.Error(), err.Error())
			assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
		})
	}
}

func TestSyncAvailability(t *testing.T) {
	l := newTestLaptop(t, 2)
	assert.False(t, l.SyncAvailability(), "一致时不需要修复")

	l.Stock = 0
	assert.True(t, l.SyncAvailability())
	assert.False(t, l.IsAvailable)

	l.Stock = 4
	l.IsAvailable = false
	assert.True(t, l.SyncAvailability())
	assert.True(t, l.IsAvailable)
}

func TestUpdateKeepsAvailabilityDerived(t *testing.T) {
	l := newTestLaptop(t, 2)
	zero := 0
	price := int64(149900)
	detach := uint(0)
	cat := uint(9)
	l.CategoryID = &cat

	require.NoError(t, l.Update(UpdateParams{Stock: &zero, Price: &price, CategoryID: &detach}))
	assert.False(t, l.IsAvailable)
	assert.Equal(t, price, l.Price)
	assert.Nil(t, l.CategoryID)

	neg := int64(-5)
	assert.Error(t, l.Update(UpdateParams{Price: &neg}))
}

func TestSetStock(t *testing.T) {
	l := newTestLaptop(t, 0)
	require.NoError(t, l.SetStock(5))
	assert.True(t, l.IsAvailable)
	assert.ErrorIs(t, l.SetStock(-1), apperrors.ErrInvalidParams)
}

func TestParseBrandAndType(t *testing.T) {
	b, ok := ParseBrand("lenovo")
	assert.True(t, ok)
	assert.Equal(t, BrandLenovo, b)

	typ, ok := ParseType("2-IN-1")
	assert.True(t, ok)
	assert.Equal(t, Type2in1, typ)

	_, ok = ParseType("phone")
	assert.False(t, ok)
}
