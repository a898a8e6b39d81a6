package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/pkg/circuitbreaker"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

// LaptopCache 商品详情缓存（Cache-Aside）
// 缓存只是加速手段：Redis故障时熔断并直接回源数据库，错误不向上传播
type LaptopCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.Breaker
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewLaptopCache 创建商品缓存，m 可以为nil
func NewLaptopCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics, log *zap.Logger) *LaptopCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c := &LaptopCache{client: client, ttl: ttl, metrics: m, log: log}
	c.breaker = circuitbreaker.New(circuitbreaker.Settings{
		Name:    "laptop-cache",
		Timeout: 15 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("熔断器状态变化", zap.String("name", name), zap.Stringer("from", from), zap.Stringer("to", to))
			if m != nil {
				m.SetBreakerState(name, int(to))
			}
		},
	})
	return c
}

func laptopKey(id uint) string {
	return keyPrefix + "laptop:" + strconv.FormatUint(uint64(id), 10)
}

// cachedLaptop 缓存结构，与领域实体解耦
type cachedLaptop struct {
	ID            uint         `json:"id"`
	Name          string       `json:"name"`
	Brand         string       `json:"brand"`
	Type          string       `json:"type"`
	Specs         laptop.Specs `json:"specs"`
	Description   string       `json:"description"`
	Price         int64        `json:"price"`
	Stock         int          `json:"stock"`
	IsAvailable   bool         `json:"is_available"`
	Images        []string     `json:"images"`
	Features      []string     `json:"features"`
	CategoryID    *uint        `json:"category_id,omitempty"`
	AverageRating float64      `json:"average_rating"`
	NumReviews    int          `json:"num_reviews"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Get 命中返回(laptop, true)；未命中、反序列化失败或Redis不可用均返回(nil, false)
func (c *LaptopCache) Get(ctx context.Context, id uint) (*laptop.Laptop, bool) {
	var raw []byte
	err := c.breaker.Execute(func() error {
		var err error
		raw, err = c.client.Get(ctx, laptopKey(id)).Bytes()
		return err
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.observe("miss")
		} else {
			c.observe("error")
			c.log.Debug("读取商品缓存失败", zap.Uint("laptop_id", id), zap.Error(err))
		}
		return nil, false
	}

	var v cachedLaptop
	if err := json.Unmarshal(raw, &v); err != nil {
		c.observe("error")
		return nil, false
	}
	c.observe("hit")
	return &laptop.Laptop{
		ID:            v.ID,
		Name:          v.Name,
		Brand:         laptop.Brand(v.Brand),
		Type:          laptop.Type(v.Type),
		Specs:         v.Specs,
		Description:   v.Description,
		Price:         v.Price,
		Stock:         v.Stock,
		IsAvailable:   v.IsAvailable,
		Images:        v.Images,
		Features:      v.Features,
		CategoryID:    v.CategoryID,
		AverageRating: v.AverageRating,
		NumReviews:    v.NumReviews,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}, true
}

// Set 写入缓存，失败只记录日志
func (c *LaptopCache) Set(ctx context.Context, l *laptop.Laptop) {
	raw, err := json.Marshal(cachedLaptop{
		ID:            l.ID,
		Name:          l.Name,
		Brand:         string(l.Brand),
		Type:          string(l.Type),
		Specs:         l.Specs,
		Description:   l.Description,
		Price:         l.Price,
		Stock:         l.Stock,
		IsAvailable:   l.IsAvailable,
		Images:        l.Images,
		Features:      l.Features,
		CategoryID:    l.CategoryID,
		AverageRating: l.AverageRating,
		NumReviews:    l.NumReviews,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	})
	if err != nil {
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, laptopKey(l.ID), raw, c.ttl).Err()
	})
	if err != nil {
		c.log.Debug("写入商品缓存失败", zap.Uint("laptop_id", l.ID), zap.Error(err))
	}
}

// Invalidate 删除缓存，库存/价格/评分变化后调用
func (c *LaptopCache) Invalidate(ctx context.Context, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, laptopKey(id))
	}
	err := c.breaker.Execute(func() error {
		return c.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		c.log.Warn("删除商品缓存失败", zap.Int("count", len(keys)), zap.Error(err))
	}
}

func (c *LaptopCache) observe(result string) {
	if c.metrics != nil {
		c.metrics.CacheRequests.WithLabelValues(result).Inc()
	}
}
