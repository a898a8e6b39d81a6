package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// bcrypt cost，测试中调低
var hashCost = 12

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Service 用户领域服务
type Service interface {
	// Register 用户注册，role由调用方根据管理员名单决定
	Register(ctx context.Context, name, email, password string, role Role) (*User, error)

	// Login 校验邮箱密码，邮箱不存在与密码错误返回同一错误
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验
// 2. 密码至少6位
// 3. 姓名2-50个字符
// 4. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, name, email, password string, role Role) (*User, error) {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, apperrors.ErrInvalidParams.WithMessage("邮箱格式不正确")
	}

	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < 2 || n > 50 {
		return nil, apperrors.ErrInvalidParams.WithMessage("姓名长度应为2-50个字符")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(name, email, string(hashed), role)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidCredentials
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

// validatePasswordStrength 密码6-72位（bcrypt上限72字节）
func validatePasswordStrength(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return apperrors.ErrWeakPassword
	}
	return nil
}
