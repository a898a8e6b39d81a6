// Package rpc 提供gRPC标准健康检查服务，供负载均衡与容器编排探活
package rpc

import (
	"context"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb"
)

// ServiceName 对外注册的服务名，空字符串代表整体状态
const ServiceName = "techhaven.api"

const (
	probeInterval = 10 * time.Second
	probeTimeout  = 2 * time.Second
)

// Probe 依赖探测
// Critical 为 true 时探测失败会把服务置为 NOT_SERVING
type Probe struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// Server gRPC健康检查服务器
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	probes   []Probe
	interval time.Duration
	log      *zap.Logger
}

// NewServer 数据库为关键依赖，Redis不可用时仍对外服务（与 /health 的 degraded 一致）
func NewServer(db *gorm.DB, rdb *goredis.Client, log *zap.Logger) *Server {
	return newServer(log, probeInterval,
		Probe{Name: "database", Critical: true, Check: func(ctx context.Context) error { return gormdb.Ping(ctx, db) }},
		Probe{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)
}

func newServer(log *zap.Logger, interval time.Duration, probes ...Probe) *Server {
	s := &Server{
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
		probes:   probes,
		interval: interval,
		log:      log.Named("grpc"),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Refresh 执行一轮探测并更新状态
func (s *Server) Refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	for _, p := range s.probes {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.Check(pctx)
		cancel()
		if err == nil {
			continue
		}
		s.log.Warn("依赖探测失败", zap.String("probe", p.Name), zap.Bool("critical", p.Critical), zap.Error(err))
		if p.Critical {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.setStatus(status)
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve 阻塞直到ctx取消或监听出错；ctx取消后先置为NOT_SERVING再优雅停止
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.Refresh(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(lis) }()
	s.log.Info("gRPC健康检查服务已启动", zap.String("addr", lis.Addr().String()))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Refresh(ctx)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpc.GracefulStop()
			s.log.Info("gRPC服务已停止")
			return nil
		}
	}
}
