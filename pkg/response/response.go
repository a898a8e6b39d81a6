package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/logger"
)

// Response 统一成功响应结构（Code=0表示成功）
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody 错误响应结构
// error 为错误分类（ValidationError / NotFound ...），statusCode 与HTTP状态码一致
type ErrorBody struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Detail     string `json:"detail,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	order, err := uc.Execute(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	if appErr.Err != nil || status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.Int("code", appErr.Code),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	body := ErrorBody{
		Code:       appErr.Code,
		Message:    appErr.Message,
		Error:      appErr.Kind(),
		StatusCode: status,
	}
	if gin.Mode() != gin.ReleaseMode && appErr.Err != nil {
		body.Detail = appErr.Err.Error()
	}

	c.AbortWithStatusJSON(status, body)
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize != 0 {
			totalPages++
		}
	}

	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(list, total, page, pageSize))
}

// PageRef 指向相邻页
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination 仅在存在相邻页时返回next/prev
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// ListData 商品列表响应：count为本页条数，total为总条数
type ListData struct {
	Count      int         `json:"count"`
	Total      int64       `json:"total"`
	Pagination Pagination  `json:"pagination"`
	Data       interface{} `json:"data"`
}

// NewListData 根据页码计算相邻页
func NewListData(data interface{}, count int, total int64, page, limit int) *ListData {
	var p Pagination
	if int64(page*limit) < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return &ListData{
		Count:      count,
		Total:      total,
		Pagination: p,
		Data:       data,
	}
}
