//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成 wire_gen.go

package main

import (
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appcart "github.com/xiebiao/techhaven/internal/application/cart"
	appcategory "github.com/xiebiao/techhaven/internal/application/category"
	applaptop "github.com/xiebiao/techhaven/internal/application/laptop"
	apporder "github.com/xiebiao/techhaven/internal/application/order"
	appreview "github.com/xiebiao/techhaven/internal/application/review"
	appupload "github.com/xiebiao/techhaven/internal/application/upload"
	appuser "github.com/xiebiao/techhaven/internal/application/user"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/media"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/domain/shared"
	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	"github.com/xiebiao/techhaven/internal/infrastructure/events"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/techhaven/internal/infrastructure/storage"
	"github.com/xiebiao/techhaven/internal/interface/http/handler"
	"github.com/xiebiao/techhaven/internal/interface/http/middleware"
	"github.com/xiebiao/techhaven/internal/interface/http/router"
	"github.com/xiebiao/techhaven/internal/interface/rpc"
	"github.com/xiebiao/techhaven/pkg/jwt"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖：数据库、Redis、缓存、文件存储、事件通道
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideMetrics,
	provideLaptopCache,
	storage.NewImageStore,
	events.NewHub,
	events.NewPublisher,
	events.NewRelay,
	wire.Bind(new(laptop.Cache), new(*redis.LaptopCache)),
	wire.Bind(new(media.Store), new(*storage.ImageStore)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	gormdb.NewUserRepository,
	gormdb.NewLaptopRepository,
	gormdb.NewCategoryRepository,
	gormdb.NewOrderRepository,
	gormdb.NewCartRepository,
	gormdb.NewReviewRepository,
	gormdb.NewTxManager,
	wire.Bind(new(shared.TxManager), new(*gormdb.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	laptop.NewService,
	providePricing,
)

// applicationSet 应用层依赖：所有Use Case
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewProfileUseCase,

	applaptop.NewListLaptopsUseCase,
	applaptop.NewGetLaptopUseCase,
	applaptop.NewCreateLaptopUseCase,
	applaptop.NewUpdateLaptopUseCase,
	applaptop.NewDeleteLaptopUseCase,
	applaptop.NewSetStockUseCase,
	applaptop.NewExportLaptopsUseCase,

	apporder.NewCreateOrderUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
	apporder.NewUpdateOrderStatusUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewPayOrderUseCase,
	apporder.NewUpdateShippingUseCase,
	apporder.NewDeleteOrderUseCase,

	appcart.NewCartUseCase,
	appreview.NewReviewUseCase,

	appcategory.NewListCategoriesUseCase,
	appcategory.NewGetCategoryUseCase,
	appcategory.NewCreateCategoryUseCase,
	appcategory.NewUpdateCategoryUseCase,
	appcategory.NewDeleteCategoryUseCase,

	appupload.NewUploadImageUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器与路由
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewLaptopHandler,
	handler.NewOrderHandler,
	handler.NewCartHandler,
	handler.NewReviewHandler,
	handler.NewCategoryHandler,
	handler.NewUploadHandler,
	handler.NewHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	rpc.NewServer,
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

// provideDB 创建数据库连接，cleanup时关闭连接池
func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := gormdb.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis 创建Redis客户端，cleanup时关闭
func provideRedis(cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideMetrics 进程级指标注册表，附带Go运行时指标
func provideMetrics() *metrics.Metrics {
	return metrics.NewDefault()
}

// provideLaptopCache 商品详情缓存，TTL来自配置
func provideLaptopCache(cfg *config.Config, client *goredis.Client, m *metrics.Metrics, log *zap.Logger) *redis.LaptopCache {
	return redis.NewLaptopCache(client, cfg.Redis.CacheTTL, m, log)
}

// providePricing 从配置创建计价规则
func providePricing(cfg *config.Config) (order.Pricing, error) {
	return order.NewPricing(cfg.Pricing.TaxRate, cfg.Pricing.ShippingFlat, cfg.Pricing.FreeShippingThreshold)
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// ========================================
// Injector (注入器)
// ========================================

// InitializeApp 组装整个应用，返回的cleanup按依赖逆序释放资源
func InitializeApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
