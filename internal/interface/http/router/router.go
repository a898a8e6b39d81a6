package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	"github.com/xiebiao/techhaven/internal/interface/http/handler"
	"github.com/xiebiao/techhaven/internal/interface/http/middleware"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

// Handlers 全部HTTP处理器，由wire按字段注入
type Handlers struct {
	User     *handler.UserHandler
	Laptop   *handler.LaptopHandler
	Order    *handler.OrderHandler
	Cart     *handler.CartHandler
	Review   *handler.ReviewHandler
	Category *handler.CategoryHandler
	Upload   *handler.UploadHandler
	Health   *handler.HealthHandler
}

// New 创建Gin引擎并注册全部路由
// 中间件顺序：Tracing → RequestLogger → Metrics → Recovery → CORS，
// Recovery 放在日志与指标之内，panic 产生的500也会被记录
func New(
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	h *Handlers,
	auth *middleware.AuthMiddleware,
) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(
		middleware.Tracing(),
		middleware.RequestLogger(log),
		middleware.Metrics(m),
		middleware.Recovery(),
		middleware.CORS(cfg),
	)
	r.MaxMultipartMemory = cfg.Upload.MaxSize

	// 运维
	r.GET("/ping", h.Health.Ping)
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.Static("/uploads", cfg.Upload.Dir)

	admin := middleware.RequireRole(user.RoleAdmin)
	limiter := middleware.NewIPRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", limiter.Middleware(), h.User.Register)
			authGroup.POST("/login", limiter.Middleware(), h.User.Login)
			authGroup.POST("/refresh", h.User.Refresh)
			authGroup.POST("/logout", auth.RequireAuth(), h.User.Logout)
			authGroup.GET("/me", auth.RequireAuth(), h.User.Me)
			authGroup.PUT("/me", auth.RequireAuth(), h.User.UpdateMe)
		}

		laptops := api.Group("/laptops")
		{
			laptops.GET("", h.Laptop.List)
			laptops.GET("/export", auth.RequireAuth(), admin, h.Laptop.Export)
			laptops.GET("/:id", h.Laptop.Get)
			laptops.POST("", auth.RequireAuth(), admin, h.Laptop.Create)
			laptops.PUT("/:id", auth.RequireAuth(), admin, h.Laptop.Update)
			laptops.DELETE("/:id", auth.RequireAuth(), admin, h.Laptop.Delete)
			laptops.PUT("/:id/stock", auth.RequireAuth(), admin, h.Laptop.SetStock)

			laptops.GET("/:id/reviews", h.Review.ListByLaptop)
			laptops.POST("/:id/reviews", auth.RequireAuth(), h.Review.Create)
		}

		reviews := api.Group("/reviews", auth.RequireAuth())
		{
			reviews.GET("/me", h.Review.ListMine)
			reviews.PUT("/:id", h.Review.Update)
			reviews.DELETE("/:id", h.Review.Delete)
		}

		orders := api.Group("/orders", auth.RequireAuth())
		{
			orders.GET("", h.Order.ListMine)
			orders.POST("", h.Order.Create)
			orders.GET("/all", admin, h.Order.ListAll)
			orders.GET("/ws", admin, h.Order.Subscribe)
			orders.GET("/:id", h.Order.Get)
			orders.PUT("/:id/status", admin, h.Order.UpdateStatus)
			orders.PUT("/:id/cancel", h.Order.Cancel)
			orders.PUT("/:id/pay", admin, h.Order.Pay)
			orders.PUT("/:id/shipping", admin, h.Order.UpdateShipping)
			orders.DELETE("/:id", admin, h.Order.Delete)
		}

		cart := api.Group("/cart", auth.RequireAuth())
		{
			cart.GET("", h.Cart.Get)
			cart.POST("", h.Cart.AddItem)
			cart.DELETE("", h.Cart.Clear)
			cart.PUT("/items/:itemId", h.Cart.UpdateItem)
			cart.DELETE("/items/:itemId", h.Cart.RemoveItem)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", h.Category.List)
			categories.GET("/:id", h.Category.Get)
			categories.POST("", auth.RequireAuth(), admin, h.Category.Create)
			categories.PUT("/:id", auth.RequireAuth(), admin, h.Category.Update)
			categories.DELETE("/:id", auth.RequireAuth(), admin, h.Category.Delete)
		}

		api.POST("/uploads/:kind", auth.RequireAuth(), admin, h.Upload.Upload)
	}

	return r
}
