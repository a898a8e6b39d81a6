package gormdb

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
)

// newTestDB 每个用例独立的SQLite文件库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "techhaven.db") + "?_busy_timeout=5000"
	db, err := Open(sqlite.Open(dsn), false, zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) *user.User {
	t.Helper()
	u := user.NewUser(name, email, "hashed", user.RoleUser)
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedLaptop(t *testing.T, db *gorm.DB, name string, brand laptop.Brand, price int64, stock int) *laptop.Laptop {
	t.Helper()
	l, err := laptop.NewLaptop(name, brand, laptop.TypeUltrabook, laptop.Specs{
		Processor: "Intel Core i7",
		RAM:       "16GB",
		Storage:   "512GB SSD",
		Display:   "14 inch",
	}, name+" description", price, stock, []string{"/uploads/laptops/a.jpg"}, []string{"Backlit keyboard"}, nil)
	require.NoError(t, err)
	require.NoError(t, NewLaptopRepository(db).Create(context.Background(), l))
	// 保证按创建时间排序稳定
	time.Sleep(2 * time.Millisecond)
	return l
}
