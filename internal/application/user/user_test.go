package user

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb/gormdbtest"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/jwt"
)

type authFixture struct {
	register *RegisterUseCase
	login    *LoginUseCase
	logout   *LogoutUseCase
	refresh  *RefreshTokenUseCase
	profile  *ProfileUseCase
	jwt      *jwt.Manager
	sessions *redis.SessionStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := gormdbtest.NewDB(t)
	repo := gormdb.NewUserRepository(db)
	svc := user.NewService(repo)
	jm := jwt.NewManager("access", "refresh", "techhaven", time.Hour, 24*time.Hour)
	sessions := redis.NewSessionStore(client)
	cfg := &config.Config{Auth: config.AuthConfig{AdminEmails: []string{"Boss@TechHaven.com"}}}

	return &authFixture{
		register: NewRegisterUseCase(svc, jm, sessions, cfg),
		login:    NewLoginUseCase(svc, jm, sessions),
		logout:   NewLogoutUseCase(jm, sessions),
		refresh:  NewRefreshTokenUseCase(repo, jm, sessions),
		profile:  NewProfileUseCase(repo),
		jwt:      jm,
		sessions: sessions,
	}
}

func TestRegisterAssignsRole(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.register.Execute(ctx, RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user", resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	admin, err := f.register.Execute(ctx, RegisterRequest{Name: "Boss", Email: "boss@techhaven.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.User.Role, "管理员名单忽略大小写")

	claims, err := f.jwt.ParseToken(admin.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	_, err = f.register.Execute(ctx, RegisterRequest{Name: "Ann 2", Email: "ANN@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
}

func TestLoginRefreshLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.register.Execute(ctx, RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.login.Execute(ctx, LoginRequest{Email: "ann@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	resp, err := f.login.Execute(ctx, LoginRequest{Email: "Ann@Example.com", Password: "secret1", ClientIP: "10.0.0.1"})
	require.NoError(t, err)

	refreshed, err := f.refresh.Execute(ctx, resp.RefreshToken)
	require.NoError(t, err)
	claims, err := f.jwt.ParseToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = f.refresh.Execute(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "Access Token不能用于刷新")

	require.NoError(t, f.logout.Execute(ctx, claims, refreshed.AccessToken))
	blacklisted, err := f.sessions.IsInBlacklist(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	_, err = f.refresh.Execute(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "登出后会话失效")
}

func TestProfileUpdate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.register.Execute(ctx, RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.profile.Update(ctx, resp.User.ID, UpdateProfileRequest{Name: "A"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidParams))

	info, err := f.profile.Update(ctx, resp.User.ID, UpdateProfileRequest{Name: "Ann Lee", Avatar: "/uploads/avatars/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", info.Name)

	got, err := f.profile.Get(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/a.jpg", got.Avatar)

	_, err = f.profile.Get(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
