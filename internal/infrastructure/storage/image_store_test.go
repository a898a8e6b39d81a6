package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/media"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

func newTestStore(t *testing.T, maxSize int64) *ImageStore {
	t.Helper()
	cfg := &config.Config{Upload: config.UploadConfig{Dir: t.TempDir(), MaxSize: maxSize, MaxWidth: 100}}
	s, err := NewImageStore(cfg, zap.NewNop())
	require.NoError(t, err)
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageStore_SaveResizesAndConverts(t *testing.T) {
	s := newTestStore(t, 1<<20)

	url, err := s.Save(context.Background(), media.KindLaptops, bytes.NewReader(pngBytes(t, 400, 200)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/laptops/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	f, err := os.Open(filepath.Join(s.Dir(), "laptops", filepath.Base(url)))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err, "统一保存为JPEG")
	assert.Equal(t, 100, cfg.Width, "超过最大宽度时缩放")
	assert.Equal(t, 50, cfg.Height, "保持宽高比")
}

func TestImageStore_Rejects(t *testing.T) {
	s := newTestStore(t, 1<<20)
	ctx := context.Background()

	_, err := s.Save(ctx, media.KindLaptops, strings.NewReader("GIF89a not really"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)

	_, err = s.Save(ctx, media.Kind("docs"), bytes.NewReader(pngBytes(t, 10, 10)))
	assert.ErrorIs(t, err, media.ErrInvalidKind)

	small := newTestStore(t, 16)
	_, err = small.Save(ctx, media.KindAvatars, bytes.NewReader(pngBytes(t, 300, 300)))
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)
}

func TestImageStore_Delete(t *testing.T) {
	s := newTestStore(t, 1<<20)
	ctx := context.Background()

	url, err := s.Save(ctx, media.KindAvatars, bytes.NewReader(pngBytes(t, 20, 20)))
	require.NoError(t, err)
	full := filepath.Join(s.Dir(), "avatars", filepath.Base(url))
	require.FileExists(t, full)

	require.NoError(t, s.Delete(ctx, url))
	assert.NoFileExists(t, full)

	assert.NoError(t, s.Delete(ctx, url), "重复删除视为成功")
	assert.NoError(t, s.Delete(ctx, "/uploads/../../etc/passwd"))
	assert.NoError(t, s.Delete(ctx, "https://cdn.example.com/a.jpg"))
}
