package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/techhaven/internal/application/order"
	appreview "github.com/xiebiao/techhaven/internal/application/review"
	"github.com/xiebiao/techhaven/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/response"
)

// Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应

// bindJSON 绑定并校验请求体，失败时直接写出错误响应
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperrors.ErrBindError.WithMessage("参数错误: "+err.Error()))
		return false
	}
	return true
}

// bindQuery 绑定查询参数
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.Error(c, apperrors.ErrBindError.WithMessage("参数错误: "+err.Error()))
		return false
	}
	return true
}

// paramID 解析路径中的ID
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, apperrors.ErrInvalidParams.WithMessage("无效的ID: "+c.Param(name)))
		return 0, false
	}
	return uint(id), true
}

func requester(c *gin.Context) apporder.Requester {
	return apporder.Requester{UserID: middleware.GetUserID(c), IsAdmin: middleware.IsAdmin(c)}
}

func author(c *gin.Context) appreview.Author {
	return appreview.Author{UserID: middleware.GetUserID(c), IsAdmin: middleware.IsAdmin(c)}
}
