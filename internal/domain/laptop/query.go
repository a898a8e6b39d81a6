package laptop

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100

	maxSearchLen = 100
)

// 对外字段名 -> 数据库列
var fieldColumns = map[string][]string{
	"id":            {"id"},
	"name":          {"name"},
	"brand":         {"brand"},
	"type":          {"type"},
	"specs":         {"spec_processor", "spec_ram", "spec_storage", "spec_display", "spec_graphics", "spec_battery", "spec_weight", "spec_os"},
	"description":   {"description"},
	"price":         {"price"},
	"stock":         {"stock"},
	"isAvailable":   {"is_available"},
	"images":        {"images"},
	"features":      {"features"},
	"category":      {"category_id"},
	"averageRating": {"average_rating"},
	"numReviews":    {"num_reviews"},
	"createdAt":     {"created_at"},
	"updatedAt":     {"updated_at"},
}

var sortColumns = map[string]string{
	"name":          "name",
	"brand":         "brand",
	"type":          "type",
	"price":         "price",
	"stock":         "stock",
	"averageRating": "average_rating",
	"rating":        "average_rating",
	"numReviews":    "num_reviews",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

// 前端下拉框使用的排序别名
var sortAliases = map[string]string{
	"newest":     "-createdAt",
	"oldest":     "createdAt",
	"price_asc":  "price",
	"price_desc": "-price",
	"rating":     "-averageRating",
	"popular":    "-numReviews",
}

// 列表查询必须带出的列：主键与可售修复依赖的库存字段
var requiredColumns = []string{"id", "stock", "is_available"}

// PriceRange 价格区间（分），nil 表示不限
type PriceRange struct {
	GT  *int64
	GTE *int64
	LT  *int64
	LTE *int64
}

// IsZero 是否没有任何价格条件
func (p PriceRange) IsZero() bool {
	return p.GT == nil && p.GTE == nil && p.LT == nil && p.LTE == nil
}

// SortField 排序列
type SortField struct {
	Column string
	Desc   bool
}

// ListQuery 商品列表查询条件
type ListQuery struct {
	Brands     []Brand
	Types      []Type
	Price      PriceRange
	CategoryID *uint
	InStock    bool
	MinRating  *float64
	Search     string

	// Fields 为空表示返回全部字段
	Fields []string
	Sort   []SortField
	Page   int
	Limit  int
}

// Offset 分页偏移量
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Columns 投影需要查询的列，未指定select时返回nil
func (q ListQuery) Columns() []string {
	if len(q.Fields) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var cols []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, c := range requiredColumns {
		add(c)
	}
	for _, f := range q.Fields {
		for _, c := range fieldColumns[f] {
			add(c)
		}
	}
	return cols
}

// ParseListQuery 将查询字符串解析为列表查询条件
// 支持：brand、type（逗号分隔）、minPrice/maxPrice、price[gt|gte|lt|lte]、category、
// inStock、minRating、search、select、sort（逗号分隔，-前缀降序）、page、limit
func ParseListQuery(values url.Values) (ListQuery, error) {
	q := ListQuery{Page: DefaultPage, Limit: DefaultLimit}

	for _, raw := range splitList(values, "brand") {
		b, ok := ParseBrand(raw)
		if !ok {
			return q, invalidQuery("不支持的品牌: " + raw)
		}
		q.Brands = append(q.Brands, b)
	}

	for _, raw := range splitList(values, "type") {
		t, ok := ParseType(raw)
		if !ok {
			return q, invalidQuery("不支持的机型分类: " + raw)
		}
		q.Types = append(q.Types, t)
	}

	if err := parsePrice(values, &q.Price); err != nil {
		return q, err
	}

	if raw := strings.TrimSpace(values.Get("category")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return q, invalidQuery("分类ID格式错误")
		}
		cid := uint(id)
		q.CategoryID = &cid
	}

	if raw := strings.TrimSpace(values.Get("inStock")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return q, invalidQuery("inStock 只能为 true/false")
		}
		q.InStock = v
	}

	if raw := strings.TrimSpace(values.Get("minRating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 5 {
			return q, invalidQuery("minRating 取值范围为0-5")
		}
		q.MinRating = &v
	}

	q.Search = strings.TrimSpace(values.Get("search"))
	if utf8.RuneCountInString(q.Search) > maxSearchLen {
		return q, invalidQuery("搜索关键词过长")
	}

	for _, raw := range splitList(values, "select") {
		name, ok := canonicalField(raw, fieldColumns)
		if !ok {
			return q, invalidQuery("不支持的字段: " + raw)
		}
		q.Fields = append(q.Fields, name)
	}

	sort, err := parseSort(values.Get("sort"))
	if err != nil {
		return q, err
	}
	q.Sort = sort

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, invalidQuery("page 必须为正整数")
		}
		q.Page = page
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return q, invalidQuery("limit 必须为正整数")
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		q.Limit = limit
	}

	return q, nil
}

func parsePrice(values url.Values, p *PriceRange) error {
	bounds := []struct {
		keys   []string
		target **int64
	}{
		{[]string{"price[gt]"}, &p.GT},
		{[]string{"price[gte]", "minPrice"}, &p.GTE},
		{[]string{"price[lt]"}, &p.LT},
		{[]string{"price[lte]", "maxPrice"}, &p.LTE},
	}
	for _, b := range bounds {
		for _, key := range b.keys {
			raw := strings.TrimSpace(values.Get(key))
			if raw == "" {
				continue
			}
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || v < 0 {
				return invalidQuery(key + " 必须为非负整数（单位：分）")
			}
			*b.target = &v
		}
	}
	if p.GTE != nil && p.LTE != nil && *p.GTE > *p.LTE {
		return invalidQuery("最低价不能高于最高价")
	}
	return nil
}

func parseSort(raw string) ([]SortField, error) {
	raw = strings.TrimSpace(raw)
	if alias, ok := sortAliases[raw]; ok {
		raw = alias
	}
	if raw == "" {
		raw = "-createdAt"
	}

	var fields []SortField
	hasID := false
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimLeft(part, "-+")
		if strings.EqualFold(name, "id") {
			hasID = true
			fields = append(fields, SortField{Column: "id", Desc: desc})
			continue
		}
		key, ok := canonicalField(name, sortColumnsAsFields)
		if !ok {
			return nil, invalidQuery("不支持的排序字段: " + name)
		}
		fields = append(fields, SortField{Column: sortColumns[key], Desc: desc})
	}
	if len(fields) == 0 {
		fields = append(fields, SortField{Column: "created_at", Desc: true})
	}
	// 追加主键保证翻页结果稳定
	if !hasID {
		fields = append(fields, SortField{Column: "id", Desc: fields[len(fields)-1].Desc})
	}
	return fields, nil
}

var sortColumnsAsFields = func() map[string][]string {
	m := make(map[string][]string, len(sortColumns))
	for k, v := range sortColumns {
		m[k] = []string{v}
	}
	return m
}()

// canonicalField 忽略大小写与下划线匹配字段名，如 average_rating -> averageRating
func canonicalField(raw string, known map[string][]string) (string, bool) {
	norm := normalizeName(raw)
	for name := range known {
		if normalizeName(name) == norm {
			return name, true
		}
	}
	return "", false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}

func splitList(values url.Values, key string) []string {
	var out []string
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func invalidQuery(msg string) error {
	return apperrors.ErrInvalidQuery.WithMessage(msg)
}
