package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/jwt"
	"github.com/xiebiao/techhaven/pkg/logger"
)

// LoginUseCase 用户登录用例
// 1. 验证邮箱密码
// 2. 生成JWT Token对
// 3. 保存会话到Redis
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return issueTokens(ctx, uc.jwtManager, uc.sessionStore, u, req.ClientIP)
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 删除会话并将Access Token加入黑名单（有效期为Token剩余时间）
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, claims.UserID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.RemainingTTL(claims))
}

// RefreshTokenUseCase 用Refresh Token换取新的Access Token
type RefreshTokenUseCase struct {
	userRepo     user.Repository
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewRefreshTokenUseCase 创建刷新Token用例
func NewRefreshTokenUseCase(userRepo user.Repository, jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{userRepo: userRepo, jwtManager: jwtManager, sessionStore: sessionStore}
}

// RefreshResponse 刷新结果
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// Execute 会话已登出或被新登录覆盖时返回ErrInvalidToken
// 角色从数据库重新读取，管理员权限变更在刷新后生效
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	ok, err := uc.sessionStore.ValidateSession(ctx, claims.UserID, refreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidToken.WithMessage("会话已失效，请重新登录")
	}

	u, err := uc.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, err := uc.jwtManager.GenerateAccessToken(jwt.Subject{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   string(u.Role),
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("刷新Access Token", zap.Uint("user_id", u.ID))
	return &RefreshResponse{
		AccessToken: access,
		ExpiresIn:   int64(uc.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}
