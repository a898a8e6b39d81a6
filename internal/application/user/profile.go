package user

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/xiebiao/techhaven/internal/domain/user"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// ProfileUseCase 当前用户资料
type ProfileUseCase struct {
	userRepo user.Repository
}

// NewProfileUseCase 创建资料用例
func NewProfileUseCase(userRepo user.Repository) *ProfileUseCase {
	return &ProfileUseCase{userRepo: userRepo}
}

// Get 查询资料
func (uc *ProfileUseCase) Get(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}

// UpdateProfileRequest 资料修改，空值保持不变
type UpdateProfileRequest struct {
	Name   string
	Avatar string
}

// Update 修改姓名和头像
func (uc *ProfileUseCase) Update(ctx context.Context, userID uint, req UpdateProfileRequest) (*UserInfo, error) {
	if name := strings.TrimSpace(req.Name); name != "" {
		if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
			return nil, apperrors.ErrInvalidParams.WithMessage("姓名长度应为2-50个字符")
		}
	}

	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.UpdateProfile(req.Name, strings.TrimSpace(req.Avatar))
	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}
