package handler

import (
	"github.com/gin-gonic/gin"

	appupload "github.com/xiebiao/techhaven/internal/application/upload"
	"github.com/xiebiao/techhaven/internal/interface/http/dto"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/response"
)

// UploadHandler 图片上传
type UploadHandler struct {
	uploadUseCase *appupload.UploadImageUseCase
}

// NewUploadHandler 创建上传处理器
func NewUploadHandler(uploadUseCase *appupload.UploadImageUseCase) *UploadHandler {
	return &UploadHandler{uploadUseCase: uploadUseCase}
}

// Upload 上传图片（管理员）
// @Summary      上传图片
// @Description  仅支持JPEG/PNG，宽度超过上限时等比缩放，统一保存为JPEG
// @Tags         上传
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path     string true "图片分类" Enums(laptops, categories, avatars)
// @Param        image formData file   true "图片文件"
// @Success      201 {object} response.Response{data=dto.UploadResponse}
// @Failure      400 {object} response.ErrorBody "文件格式不支持"
// @Router       /api/uploads/{kind} [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error(c, apperrors.ErrBindError.WithMessage("请选择要上传的图片"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, apperrors.ErrStorageError.WithErr(err))
		return
	}
	defer f.Close()

	url, err := h.uploadUseCase.Execute(c.Request.Context(), c.Param("kind"), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, &dto.UploadResponse{URL: url})
}
