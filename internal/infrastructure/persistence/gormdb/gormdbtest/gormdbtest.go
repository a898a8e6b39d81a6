// Package gormdbtest 为应用层测试提供基于SQLite的真实仓储
package gormdbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb"
)

// NewDB 独立的SQLite文件库，单连接使并发事务串行执行
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "techhaven.db") + "?_busy_timeout=5000"
	db, err := gormdb.Open(sqlite.Open(dsn), false, zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gormdb.AutoMigrate(db))
	return db
}

// SeedUser 写入用户
func SeedUser(t testing.TB, db *gorm.DB, name, email string, role user.Role) *user.User {
	t.Helper()
	u := user.NewUser(name, email, "hashed", role)
	require.NoError(t, gormdb.NewUserRepository(db).Create(context.Background(), u))
	return u
}

// SeedLaptop 写入一台规格完整的商品
func SeedLaptop(t testing.TB, db *gorm.DB, name string, price int64, stock int) *laptop.Laptop {
	t.Helper()
	l, err := laptop.NewLaptop(name, laptop.BrandDell, laptop.TypeUltrabook, laptop.Specs{
		Processor: "Intel Core i7",
		RAM:       "16GB",
		Storage:   "512GB SSD",
		Display:   "14 inch",
	}, name+" description", price, stock, []string{"/uploads/laptops/" + name + ".jpg"}, []string{"Backlit keyboard"}, nil)
	require.NoError(t, err)
	require.NoError(t, gormdb.NewLaptopRepository(db).Create(context.Background(), l))
	time.Sleep(2 * time.Millisecond)
	return l
}
