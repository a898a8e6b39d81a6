package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/xiebiao/techhaven/docs"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	"github.com/xiebiao/techhaven/pkg/logger"
	"github.com/xiebiao/techhaven/pkg/tracing"
)

// @title                       TechHaven API
// @version                     1.0
// @description                 笔记本电脑电商后端：商品目录、购物车、订单与库存
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 格式：Bearer <access token>
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("服务异常退出", zap.Error(err))
	}
	zl.Info("服务已安全关闭")
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 链路追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, tracing.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				zl.Warn("关闭链路追踪失败", zap.Error(err))
			}
		}()
	}

	// 4. 依赖注入（Wire生成）
	app, cleanup, err := InitializeApp(cfg, zl)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var grpcLis net.Listener
	if cfg.Server.GRPCPort > 0 {
		if grpcLis, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort)); err != nil {
			return fmt.Errorf("监听gRPC端口失败: %w", err)
		}
	}

	// 5. 启动各组件，任一组件出错都会触发整体退出
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Hub.Run(gctx)
		return nil
	})
	g.Go(func() error { return app.Relay.Run(gctx) })
	g.Go(func() error {
		zl.Info("HTTP服务启动", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务异常: %w", err)
		}
		return nil
	})
	if grpcLis != nil {
		g.Go(func() error { return app.GRPC.Serve(gctx, grpcLis) })
	}

	// 6. 优雅关闭：停止接收新请求，等待进行中的请求完成
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("收到关闭信号，开始优雅关闭", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
