package category

import (
	"sort"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

var (
	ErrInvalidName = apperrors.ErrInvalidParams.WithMessage("分类名称长度应为1-50个字符")
)

// Category 商品分类，支持多级
// Slug 由名称推导，名称变更时同步更新
type Category struct {
	ID          uint
	Name        string
	Slug        string
	Description string
	ParentID    *uint
	Children    []*Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCategory 创建分类
func NewCategory(name, description string, parentID *uint) (*Category, error) {
	c := &Category{Description: strings.TrimSpace(description), ParentID: parentID}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	return c, nil
}

// Rename 修改名称并重新生成slug
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 50 {
		return ErrInvalidName
	}
	c.Name = name
	c.Slug = Slugify(name)
	c.UpdatedAt = time.Now()
	return nil
}

// Slugify 名称转URL友好的slug："Gaming Laptops & More" -> "gaming-laptops-more"
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// BuildTree 将平铺的分类组装为树，返回根节点（按名称排序）
// 父节点不存在的分类视为根节点
func BuildTree(all []*Category) []*Category {
	byID := make(map[uint]*Category, len(all))
	for _, c := range all {
		c.Children = nil
		byID[c.ID] = c
	}

	var roots []*Category
	for _, c := range all {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent.ID != c.ID {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}

	var sortLevel func([]*Category)
	sortLevel = func(nodes []*Category) {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
		for _, n := range nodes {
			sortLevel(n.Children)
		}
	}
	sortLevel(roots)
	return roots
}

// CreatesCycle 判断把 id 挂到 newParent 下是否会形成环
func CreatesCycle(all []*Category, id, newParent uint) bool {
	parentOf := make(map[uint]*uint, len(all))
	for _, c := range all {
		parentOf[c.ID] = c.ParentID
	}

	cur := newParent
	for steps := 0; steps <= len(all); steps++ {
		if cur == id {
			return true
		}
		p, ok := parentOf[cur]
		if !ok || p == nil {
			return false
		}
		cur = *p
	}
	return true
}
