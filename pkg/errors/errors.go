package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// Code 为业务错误码，前三位即 HTTP 状态码（40401 -> 404）。
// Err 为内部错误，只进日志，不直接返回给客户端。
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，预定义错误派生出的副本仍然能被 errors.Is 识别
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus 由错误码推导 HTTP 状态码
func (e *AppError) HTTPStatus() int {
	status := e.Code / 100
	if status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// Kind 错误分类名称，随响应体返回
func (e *AppError) Kind() string {
	switch e.HTTPStatus() {
	case http.StatusBadRequest:
		return "ValidationError"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "NotFound"
	case http.StatusConflict:
		return "DuplicateKey"
	case http.StatusTooManyRequests:
		return "TooManyRequests"
	case http.StatusServiceUnavailable:
		return "ServiceUnavailable"
	default:
		return "ServerError"
	}
}

// WithMessage 复制错误并替换提示信息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Code: e.Code, Message: message, Err: e.Err}
}

// WithErr 复制错误并附带内部错误
func (e *AppError) WithErr(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：错误码 = HTTP状态码 * 100 + 序号

const (
	// 参数与业务规则（400xx）
	ErrCodeBusinessError       = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock   = 40001 // 库存不足
	ErrCodeInvalidOrderStatus  = 40002 // 订单状态取值非法
	ErrCodeInvalidOrderState   = 40003 // 当前状态不允许此操作
	ErrCodePriceMismatch       = 40004 // 下单价格与当前售价不一致
	ErrCodeWeakPassword        = 40005 // 密码强度不足
	ErrCodeInvalidParams       = 40006 // 参数错误
	ErrCodeBindError           = 40007 // 参数绑定失败
	ErrCodeEmptyOrder          = 40008 // 订单没有商品
	ErrCodeInvalidQuery        = 40009 // 查询参数非法
	ErrCodeCategoryHasChildren = 40010 // 分类存在子分类
	ErrCodeInvalidImage        = 40011 // 图片格式不支持
	ErrCodeOrderAlreadyPaid    = 40012 // 订单已支付
	ErrCodeCategoryCycle       = 40013 // 分类层级成环

	// 认证（401xx）
	ErrCodeUnauthorized       = 40100 // 未登录
	ErrCodeInvalidToken       = 40101 // Token无效
	ErrCodeTokenExpired       = 40102 // Token过期
	ErrCodeInvalidCredentials = 40103 // 邮箱或密码错误

	// 授权（403xx）
	ErrCodeForbidden = 40300 // 无权限
	ErrCodeNotOwner  = 40301 // 非资源所有者

	// 资源不存在（404xx）
	ErrCodeNotFound         = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound     = 40401 // 用户不存在
	ErrCodeLaptopNotFound   = 40402 // 商品不存在
	ErrCodeOrderNotFound    = 40403 // 订单不存在
	ErrCodeCategoryNotFound = 40404 // 分类不存在
	ErrCodeReviewNotFound   = 40405 // 评价不存在
	ErrCodeCartItemNotFound = 40406 // 购物车条目不存在

	// 唯一约束冲突（409xx）
	ErrCodeDuplicateEntry    = 40900 // 重复记录(通用)
	ErrCodeEmailDuplicate    = 40901 // 邮箱已存在
	ErrCodeCategoryDuplicate = 40902 // 分类名已存在
	ErrCodeReviewDuplicate   = 40903 // 已评价过该商品

	// 限流（429xx）
	ErrCodeTooManyRequests = 42900

	// 系统级错误（500xx / 503xx）
	ErrCodeInternal           = 50000 // 内部错误
	ErrCodeDatabaseError      = 50001 // 数据库错误
	ErrCodeRedisError         = 50002 // Redis错误
	ErrCodeStorageError       = 50003 // 文件存储错误
	ErrCodeServiceUnavailable = 50300 // 依赖服务不可用
)

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal           = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError      = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError         = New(ErrCodeRedisError, "缓存服务错误")
	ErrStorageError       = New(ErrCodeStorageError, "文件存储错误")
	ErrServiceUnavailable = New(ErrCodeServiceUnavailable, "服务暂不可用")

	// 认证授权
	ErrUnauthorized       = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "邮箱或密码错误")
	ErrForbidden          = New(ErrCodeForbidden, "无权限访问")
	ErrNotOwner           = New(ErrCodeNotOwner, "只能操作自己的资源")

	// 资源不存在
	ErrNotFound         = New(ErrCodeNotFound, "资源不存在")
	ErrUserNotFound     = New(ErrCodeUserNotFound, "用户不存在")
	ErrLaptopNotFound   = New(ErrCodeLaptopNotFound, "商品不存在")
	ErrOrderNotFound    = New(ErrCodeOrderNotFound, "订单不存在")
	ErrCategoryNotFound = New(ErrCodeCategoryNotFound, "分类不存在")
	ErrReviewNotFound   = New(ErrCodeReviewNotFound, "评价不存在")
	ErrCartItemNotFound = New(ErrCodeCartItemNotFound, "购物车条目不存在")

	// 业务规则
	ErrInsufficientStock   = New(ErrCodeInsufficientStock, "库存不足")
	ErrInvalidOrderStatus  = New(ErrCodeInvalidOrderStatus, "无效的订单状态")
	ErrInvalidOrderState   = New(ErrCodeInvalidOrderState, "订单当前状态不允许此操作")
	ErrPriceMismatch       = New(ErrCodePriceMismatch, "商品价格已变动，请刷新后重新下单")
	ErrWeakPassword        = New(ErrCodeWeakPassword, "密码强度不足（至少6位）")
	ErrEmptyOrder          = New(ErrCodeEmptyOrder, "订单中没有商品")
	ErrInvalidQuery        = New(ErrCodeInvalidQuery, "查询参数非法")
	ErrCategoryHasChildren = New(ErrCodeCategoryHasChildren, "该分类下存在子分类，无法删除")
	ErrCategoryCycle       = New(ErrCodeCategoryCycle, "分类不能挂在自身或其子分类下")
	ErrInvalidImage        = New(ErrCodeInvalidImage, "仅支持JPEG/PNG图片")
	ErrOrderAlreadyPaid    = New(ErrCodeOrderAlreadyPaid, "订单已支付")

	// 唯一约束
	ErrDuplicateEntry    = New(ErrCodeDuplicateEntry, "记录已存在")
	ErrEmailDuplicate    = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrCategoryDuplicate = New(ErrCodeCategoryDuplicate, "分类名称已存在")
	ErrReviewDuplicate   = New(ErrCodeReviewDuplicate, "您已经评价过该商品")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")

	ErrTooManyRequests = New(ErrCodeTooManyRequests, "请求过于频繁，请稍后再试")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// HasCode 判断错误链中是否包含指定错误码
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
