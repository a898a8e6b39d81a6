// Package circuitbreaker 熔断器，保护Redis缓存、消息队列等外部依赖
//
// 状态机：
//
//	Closed --(ReadyToTrip)--> Open --(Timeout)--> HalfOpen
//	HalfOpen --成功--> Closed，HalfOpen --失败--> Open
package circuitbreaker

import (
	"sync"
	"time"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpenState 熔断期间直接拒绝
var ErrOpenState = apperrors.ErrServiceUnavailable.WithMessage("依赖服务熔断中，请稍后重试")

// Counts 当前统计窗口内的计数
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Settings 熔断器参数
type Settings struct {
	Name string

	// MaxRequests 半开状态允许通过的请求数，默认1
	MaxRequests uint32

	// Interval 闭合状态下统计窗口长度，<=0 表示不按时间清零
	Interval time.Duration

	// Timeout 打开状态持续时间，默认30秒
	Timeout time.Duration

	// ReadyToTrip 默认连续失败5次打开
	ReadyToTrip func(c Counts) bool

	// IsSuccessful 判定调用结果，默认 err == nil；缓存未命中等业务错误不应计为失败
	IsSuccessful func(err error) bool

	OnStateChange func(name string, from, to State)
}

// Breaker 熔断器，并发安全
type Breaker struct {
	name          string
	maxRequests   uint32
	interval      time.Duration
	timeout       time.Duration
	readyToTrip   func(Counts) bool
	isSuccessful  func(error) bool
	onStateChange func(name string, from, to State)

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
	now        func() time.Time
}

// New 创建熔断器
func New(s Settings) *Breaker {
	b := &Breaker{
		name:          s.Name,
		maxRequests:   s.MaxRequests,
		interval:      s.Interval,
		timeout:       s.Timeout,
		readyToTrip:   s.ReadyToTrip,
		isSuccessful:  s.IsSuccessful,
		onStateChange: s.OnStateChange,
		now:           time.Now,
	}
	if b.maxRequests == 0 {
		b.maxRequests = 1
	}
	if b.timeout <= 0 {
		b.timeout = 30 * time.Second
	}
	if b.readyToTrip == nil {
		b.readyToTrip = func(c Counts) bool { return c.ConsecutiveFailures >= 5 }
	}
	if b.isSuccessful == nil {
		b.isSuccessful = func(err error) bool { return err == nil }
	}
	b.toNewGeneration(b.now())
	return b
}

// Name 熔断器名称
func (b *Breaker) Name() string {
	return b.name
}

// State 当前状态（会触发超时检查）
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, _ := b.currentState(b.now())
	return state
}

// Counts 当前窗口计数快照
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Execute 在熔断器保护下执行fn
// 打开状态或半开状态请求数已满时返回ErrOpenState，fn不会被调用
func (b *Breaker) Execute(fn func() error) error {
	generation, err := b.beforeRequest()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			b.afterRequest(generation, false)
			panic(p)
		}
	}()

	err = fn()
	b.afterRequest(generation, b.isSuccessful(err))
	return err
}

func (b *Breaker) beforeRequest() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.currentState(b.now())
	if state == StateOpen {
		return generation, ErrOpenState
	}
	if state == StateHalfOpen && b.counts.Requests >= b.maxRequests {
		return generation, ErrOpenState
	}
	b.counts.Requests++
	return generation, nil
}

func (b *Breaker) afterRequest(before uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	state, generation := b.currentState(now)
	// 状态已切换，旧周期的结果丢弃
	if generation != before {
		return
	}

	if success {
		b.counts.success()
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.maxRequests {
			b.setState(StateClosed, now)
		}
		return
	}

	b.counts.failure()
	switch state {
	case StateClosed:
		if b.readyToTrip(b.counts) {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		b.setState(StateOpen, now)
	}
}

func (b *Breaker) currentState(now time.Time) (State, uint64) {
	switch b.state {
	case StateClosed:
		if !b.expiry.IsZero() && b.expiry.Before(now) {
			b.toNewGeneration(now)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.setState(StateHalfOpen, now)
		}
	}
	return b.state, b.generation
}

func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	b.toNewGeneration(now)

	if b.onStateChange != nil {
		b.onStateChange(b.name, prev, state)
	}
}

func (b *Breaker) toNewGeneration(now time.Time) {
	b.generation++
	b.counts = Counts{}

	var zero time.Time
	switch b.state {
	case StateClosed:
		if b.interval > 0 {
			b.expiry = now.Add(b.interval)
		} else {
			b.expiry = zero
		}
	case StateOpen:
		b.expiry = now.Add(b.timeout)
	default:
		b.expiry = zero
	}
}
