package media

import (
	"context"
	"io"
	"strings"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// Kind 图片分类，对应存储目录
type Kind string

const (
	KindLaptops    Kind = "laptops"
	KindCategories Kind = "categories"
	KindAvatars    Kind = "avatars"
)

var ErrInvalidKind = apperrors.ErrInvalidParams.WithMessage("不支持的上传类型")

// ParseKind 解析上传类型
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindLaptops, KindCategories, KindAvatars:
		return k, nil
	}
	return "", ErrInvalidKind
}

// Store 图片存储，Save 返回可直接访问的URL路径
type Store interface {
	Save(ctx context.Context, kind Kind, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}
