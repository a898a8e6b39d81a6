package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // 注册PNG解码器
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/media"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// URLPrefix 静态文件访问前缀
const URLPrefix = "/uploads"

const jpegQuality = 80

// ImageStore 本地磁盘图片存储
// 上传的JPEG/PNG统一转为JPEG，宽度超过maxWidth时按比例缩放（Lanczos3）
// 文件路径：<dir>/<kind>/<uuid>.jpg，访问URL：/uploads/<kind>/<uuid>.jpg
type ImageStore struct {
	dir      string
	maxSize  int64
	maxWidth uint
	log      *zap.Logger
}

// NewImageStore 创建图片存储，上传目录不存在时自动创建
func NewImageStore(cfg *config.Config, log *zap.Logger) (*ImageStore, error) {
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &ImageStore{
		dir:      cfg.Upload.Dir,
		maxSize:  cfg.Upload.MaxSize,
		maxWidth: cfg.Upload.MaxWidth,
		log:      log,
	}, nil
}

// Dir 上传根目录，用于注册静态文件路由
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save 校验、缩放并保存图片
func (s *ImageStore) Save(ctx context.Context, kind media.Kind, r io.Reader) (string, error) {
	if _, err := media.ParseKind(string(kind)); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", apperrors.ErrStorageError.WithErr(err)
	}
	if int64(len(data)) > s.maxSize {
		return "", apperrors.ErrInvalidImage.WithMessage(fmt.Sprintf("图片不能超过%dMB", s.maxSize>>20))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil || (format != "jpeg" && format != "png") {
		return "", apperrors.ErrInvalidImage
	}

	if s.maxWidth > 0 && uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Lanczos3)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	kindDir := filepath.Join(s.dir, string(kind))
	if err := os.MkdirAll(kindDir, 0o755); err != nil {
		return "", apperrors.ErrStorageError.WithErr(err)
	}

	name := uuid.New().String() + ".jpg"
	fullPath := filepath.Join(kindDir, name)
	out, err := os.Create(fullPath)
	if err != nil {
		return "", apperrors.ErrStorageError.WithErr(err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = out.Close()
		_ = os.Remove(fullPath)
		return "", apperrors.ErrStorageError.WithErr(err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(fullPath)
		return "", apperrors.ErrStorageError.WithErr(err)
	}

	url := path.Join(URLPrefix, string(kind), name)
	s.log.Debug("图片已保存", zap.String("url", url), zap.Int("bytes", len(data)))
	return url, nil
}

// Delete 删除图片，只处理本存储生成的URL，文件不存在视为成功
func (s *ImageStore) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok {
		return nil
	}
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.ErrStorageError.WithErr(err)
	}
	return nil
}
