package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/jwt"
	"github.com/xiebiao/techhaven/pkg/response"
)

const (
	ctxKeyClaims = "claims"
	ctxKeyToken  = "access_token"
)

// TokenBlacklist 已登出的Access Token
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthMiddleware {
	return newAuthMiddleware(jwtManager, sessionStore)
}

func newAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, blacklist: blacklist}
}

// RequireAuth 要求登录
// 格式：Authorization: Bearer <token>；WebSocket握手无法带Header，允许使用 ?token=
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			return
		}
		claims, err := m.authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}
		setIdentity(c, claims, token)
		c.Next()
	}
}

// OptionalAuth 有合法Token时注入用户信息，否则按匿名用户继续
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := extractToken(c); ok {
			if claims, err := m.authenticate(c.Request.Context(), token); err == nil {
				setIdentity(c, claims, token)
			}
		}
		c.Next()
	}
}

// RequireRole 要求指定角色，需放在 RequireAuth 之后
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Error(c, apperrors.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if claims.Role == string(r) {
				c.Next()
				return
			}
		}
		response.Error(c, apperrors.ErrForbidden)
	}
}

func (m *AuthMiddleware) authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	// 黑名单中的Token：用户已登出
	revoked, err := m.blacklist.IsInBlacklist(ctx, token)
	if err != nil {
		return nil, apperrors.ErrRedisError.WithErr(err)
	}
	if revoked {
		return nil, apperrors.ErrInvalidToken.WithMessage("Token已失效，请重新登录")
	}
	return m.jwtManager.ParseToken(token)
}

func extractToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if websocket.IsWebSocketUpgrade(c.Request) {
		if token := c.Query("token"); token != "" {
			return token, true
		}
	}
	return "", false
}

func setIdentity(c *gin.Context, claims *jwt.Claims, token string) {
	c.Set(ctxKeyClaims, claims)
	c.Set(ctxKeyToken, token)
}

// GetClaims 当前请求的Token声明，未登录返回nil
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(ctxKeyClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID 当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	if claims := GetClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

// IsAdmin 当前用户是否为管理员
func IsAdmin(c *gin.Context) bool {
	claims := GetClaims(c)
	return claims != nil && claims.Role == string(user.RoleAdmin)
}

// GetAccessToken 当前请求携带的Access Token
func GetAccessToken(c *gin.Context) string {
	return c.GetString(ctxKeyToken)
}
