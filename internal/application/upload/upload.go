package upload

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/media"
	"github.com/xiebiao/techhaven/pkg/logger"
)

// UploadImageUseCase 上传单张图片，返回可访问的URL
type UploadImageUseCase struct {
	store media.Store
}

// NewUploadImageUseCase 创建图片上传用例
func NewUploadImageUseCase(store media.Store) *UploadImageUseCase {
	return &UploadImageUseCase{store: store}
}

// Execute kind 为 laptops、categories、avatars 之一
func (uc *UploadImageUseCase) Execute(ctx context.Context, kind string, r io.Reader) (string, error) {
	k, err := media.ParseKind(kind)
	if err != nil {
		return "", err
	}
	url, err := uc.store.Save(ctx, k, r)
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Info("图片已上传", zap.String("kind", string(k)), zap.String("url", url))
	return url, nil
}
