// Package saga 本地Saga编排：按顺序执行步骤，失败时逆序补偿已完成的步骤
//
// 商品创建示例（先存图片再写库，写库失败删除已保存的图片）：
//
//	s := saga.New("create-laptop", logger)
//	s.AddStep("save-images", saveImages, deleteImages)
//	s.AddStep("insert-laptop", insertLaptop, nil)
//	err := s.Execute(ctx)
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step Saga步骤，Compensate 可以为nil
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Observer 执行结果回调，用于上报指标
type Observer interface {
	SagaFinished(name string, err error, compensated int)
}

// Saga 一次性使用，不可并发执行
type Saga struct {
	name     string
	log      *zap.Logger
	steps    []Step
	timeout  time.Duration
	observer Observer
}

// Option Saga选项
type Option func(*Saga)

// WithTimeout 正向步骤整体超时，补偿不受该超时约束
func WithTimeout(d time.Duration) Option {
	return func(s *Saga) { s.timeout = d }
}

// WithObserver 注册执行结果回调
func WithObserver(o Observer) Option {
	return func(s *Saga) { s.observer = o }
}

// New 创建Saga
func New(name string, log *zap.Logger, opts ...Option) *Saga {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Saga{name: name, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStep 追加步骤
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// StepError 步骤失败，Compensation 为补偿过程中的错误（可能为nil）
type StepError struct {
	Saga         string
	Step         string
	Err          error
	Compensation error
}

func (e *StepError) Error() string {
	if e.Compensation != nil {
		return fmt.Sprintf("saga[%s] 步骤[%s]失败: %v（补偿失败: %v）", e.Saga, e.Step, e.Err, e.Compensation)
	}
	return fmt.Sprintf("saga[%s] 步骤[%s]失败: %v", e.Saga, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Execute 顺序执行全部步骤
// 任一步骤失败或超时时，逆序补偿已成功的步骤，返回*StepError
func (s *Saga) Execute(ctx context.Context) (err error) {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	compensated := 0
	defer func() {
		if s.observer != nil {
			s.observer.SagaFinished(s.name, err, compensated)
		}
	}()

	done := make([]Step, 0, len(s.steps))
	for _, step := range s.steps {
		stepErr := runCtx.Err()
		if stepErr == nil && step.Action != nil {
			stepErr = step.Action(runCtx)
		}
		if stepErr != nil {
			// 补偿使用不受超时影响的context
			compCtx := context.WithoutCancel(ctx)
			var compErr error
			compensated, compErr = s.compensate(compCtx, done)
			s.log.Warn("saga步骤失败，已执行补偿",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Int("compensated", compensated),
				zap.Error(stepErr),
			)
			return &StepError{Saga: s.name, Step: step.Name, Err: stepErr, Compensation: compErr}
		}
		done = append(done, step)
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []Step) (int, error) {
	var errs []error
	n := 0
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		n++
		if err := step.Compensate(ctx); err != nil {
			s.log.Error("saga补偿失败", zap.String("saga", s.name), zap.String("step", step.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
		}
	}
	return n, errors.Join(errs...)
}
