package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusAndKind(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		kind   string
	}{
		{ErrInsufficientStock, http.StatusBadRequest, "ValidationError"},
		{ErrPriceMismatch, http.StatusBadRequest, "ValidationError"},
		{ErrInvalidToken, http.StatusUnauthorized, "Unauthorized"},
		{ErrNotOwner, http.StatusForbidden, "Forbidden"},
		{ErrLaptopNotFound, http.StatusNotFound, "NotFound"},
		{ErrReviewDuplicate, http.StatusConflict, "DuplicateKey"},
		{ErrTooManyRequests, http.StatusTooManyRequests, "TooManyRequests"},
		{ErrServiceUnavailable, http.StatusServiceUnavailable, "ServiceUnavailable"},
		{ErrDatabaseError, http.StatusInternalServerError, "ServerError"},
		{New(12, "奇怪的错误码"), http.StatusInternalServerError, "ServerError"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus(), "错误码 %d", tc.err.Code)
		assert.Equal(t, tc.kind, tc.err.Kind(), "错误码 %d", tc.err.Code)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	derived := ErrInsufficientStock.WithMessage("商品 A 库存不足")
	wrapped := fmt.Errorf("下单失败: %w", derived)

	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
	assert.False(t, errors.Is(wrapped, ErrPriceMismatch))
	assert.Equal(t, "库存不足", ErrInsufficientStock.Message, "预定义错误不应被修改")
}

func TestGetAppError(t *testing.T) {
	plain := errors.New("connection reset")
	appErr := GetAppError(plain)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, plain)

	same := GetAppError(ErrOrderNotFound)
	assert.Same(t, ErrOrderNotFound, same)
}

func TestWithErrKeepsCode(t *testing.T) {
	cause := errors.New("duplicate key")
	err := ErrEmailDuplicate.WithErr(cause)

	assert.True(t, HasCode(err, ErrCodeEmailDuplicate))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "duplicate key")
}
