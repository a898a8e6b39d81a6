package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Manager JWT管理器
// 双Token：Access Token 用于接口鉴权，Refresh Token 仅用于换取新的 Access Token，
// 两者使用不同的签名密钥。
type Manager struct {
	secret             []byte
	refreshSecret      []byte
	issuer             string
	accessTokenExpire  time.Duration
	refreshTokenExpire time.Duration
	now                func() time.Time
}

// NewManager 创建JWT管理器，refreshSecret 为空时沿用 secret
func NewManager(secret, refreshSecret, issuer string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	if refreshSecret == "" {
		refreshSecret = secret
	}
	return &Manager{
		secret:             []byte(secret),
		refreshSecret:      []byte(refreshSecret),
		issuer:             issuer,
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
		now:                time.Now,
	}
}

// Claims 自定义JWT Claims
type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Subject 令牌持有人信息
type Subject struct {
	UserID uint
	Email  string
	Name   string
	Role   string
}

// TokenPair Token对（Access + Refresh）
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Access Token过期时间（秒）
}

// GenerateToken 生成Token对
func (m *Manager) GenerateToken(sub Subject) (*TokenPair, error) {
	access, err := m.sign(sub, TokenTypeAccess, m.accessTokenExpire, m.secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Access Token失败")
	}

	// Refresh Token只带UserID
	refresh, err := m.sign(Subject{UserID: sub.UserID}, TokenTypeRefresh, m.refreshTokenExpire, m.refreshSecret)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Refresh Token失败")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTokenExpire.Seconds()),
	}, nil
}

// GenerateAccessToken 仅生成Access Token（刷新时使用）
func (m *Manager) GenerateAccessToken(sub Subject) (string, error) {
	token, err := m.sign(sub, TokenTypeAccess, m.accessTokenExpire, m.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "刷新Token失败")
	}
	return token, nil
}

func (m *Manager) sign(sub Subject, tokenType string, ttl time.Duration, key []byte) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:    sub.UserID,
		Email:     sub.Email,
		Name:      sub.Name,
		Role:      sub.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(uint64(sub.UserID), 10),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseToken 解析并验证Access Token
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, TokenTypeAccess, m.secret)
}

// ParseRefreshToken 解析并验证Refresh Token
func (m *Manager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, TokenTypeRefresh, m.refreshSecret)
}

func (m *Manager) parse(tokenString, tokenType string, key []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken.WithErr(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// AccessTokenTTL Access Token有效期
func (m *Manager) AccessTokenTTL() time.Duration {
	return m.accessTokenExpire
}

// RefreshTokenTTL Refresh Token有效期，会话过期时间与之一致
func (m *Manager) RefreshTokenTTL() time.Duration {
	return m.refreshTokenExpire
}

// RemainingTTL Token剩余有效期，用于黑名单过期时间
func (m *Manager) RemainingTTL(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl < 0 {
		return 0
	}
	return ttl
}
