package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 8081
  client_url: "http://localhost:3000/, https://shop.example.com"
database:
  driver: postgres
  host: db
  port: 5432
  user: th
  password: secret
  dbname: techhaven
auth:
  admin_emails:
    - Admin@TechHaven.io
pricing:
  tax_rate: "0.1"
  shipping_flat: 999
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfig(t, sampleYAML)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.Server.AllowedOrigins())
	assert.Equal(t, "host=db port=5432 user=th password=secret dbname=techhaven sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Auth.IsAdminEmail("admin@techhaven.io"))
	assert.False(t, cfg.Auth.IsAdminEmail("someone@techhaven.io"))
	assert.Equal(t, "0.1", cfg.Pricing.TaxRate)
	assert.Equal(t, int64(999), cfg.Pricing.ShippingFlat)
	// 未配置的字段使用默认值
	assert.Equal(t, int64(50000), cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, cfg.JWT.Secret, cfg.JWT.RefreshSecret, "未配置refresh密钥时沿用access密钥")
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Contains(t, cfg.Database.DSN(), "@tcp(127.0.0.1:3306)/techhaven?charset=utf8mb4")
}

func TestLegacyEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("CLIENT_URL", "https://techhaven.io")
	t.Setenv("TECHHAVEN_REDIS_PORT", "6380")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "legacy-secret", cfg.JWT.Secret)
	assert.Equal(t, "session-secret", cfg.JWT.RefreshSecret)
	assert.Equal(t, []string{"https://techhaven.io"}, cfg.Server.AllowedOrigins())
	assert.Equal(t, "127.0.0.1:6380", cfg.Redis.Addr())
}

func TestReleaseModeRequiresSecret(t *testing.T) {
	t.Setenv("NODE_ENV", "production")

	_, err := Load(t.TempDir())
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	dir := writeConfig(t, "database:\n  driver: oracle\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}
