package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/techhaven/pkg/jwt"
	"github.com/xiebiao/techhaven/pkg/logger"
)

// RegisterUseCase 用户注册用例
// 管理员名单中的邮箱注册即为admin，其余为普通用户；注册成功直接签发Token
type RegisterUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
	authCfg      config.AuthConfig
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	cfg *config.Config,
) *RegisterUseCase {
	return &RegisterUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		authCfg:      cfg.Auth,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	ClientIP string
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := user.RoleUser
	if uc.authCfg.IsAdminEmail(req.Email) {
		role = user.RoleAdmin
	}

	u, err := uc.userService.Register(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("用户注册成功", zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)))
	return issueTokens(ctx, uc.jwtManager, uc.sessionStore, u, req.ClientIP)
}

// issueTokens 签发Token对并保存会话
func issueTokens(ctx context.Context, jm *jwt.Manager, store *redis.SessionStore, u *user.User, clientIP string) (*AuthResponse, error) {
	pair, err := jm.GenerateToken(jwt.Subject{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   string(u.Role),
	})
	if err != nil {
		return nil, err
	}

	// 会话保存失败不影响登录，只是Refresh Token无法使用
	if err := store.SaveSession(ctx, u.ID, pair.RefreshToken, clientIP, jm.RefreshTokenTTL()); err != nil {
		logger.FromContext(ctx).Warn("保存会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	return &AuthResponse{
		User:         toUserInfo(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
