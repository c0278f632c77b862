package xsampling

import (
	"context"
	"sync/atomic"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// 确保实现了接口
var (
	_ Sampler = alwaysSampler{}
	_ Sampler = neverSampler{}
	_ Sampler = failureSampler{}
	_ Sampler = (*RateSampler)(nil)
	_ Sampler = (*CountSampler)(nil)
)

type alwaysSampler struct{}

func (alwaysSampler) ShouldSample(context.Context, xmonitor.CallEvent) bool { return true }

type neverSampler struct{}

func (neverSampler) ShouldSample(context.Context, xmonitor.CallEvent) bool { return false }

type failureSampler struct{}

func (failureSampler) ShouldSample(_ context.Context, ev xmonitor.CallEvent) bool {
	return ev.Failed()
}

// Always 返回全采样策略
func Always() Sampler { return alwaysSampler{} }

// Never 返回不采样策略
func Never() Sampler { return neverSampler{} }

// Failures 只采样以错误或 panic 结束的调用
func Failures() Sampler { return failureSampler{} }

// RateSampler 固定比率随机采样
type RateSampler struct {
	rate float64
}

// NewRateSampler 创建固定比率采样器，rate 范围 [0.0, 1.0]。
func NewRateSampler(rate float64) (*RateSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &RateSampler{rate: rate}, nil
}

func (s *RateSampler) ShouldSample(context.Context, xmonitor.CallEvent) bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}
	return randomFloat64() < s.rate
}

// Rate 返回采样比率
func (s *RateSampler) Rate() float64 { return s.rate }

// CountSampler 每 N 次调用采样 1 次：第 1、n+1、2n+1... 次被采样。
type CountSampler struct {
	n       uint64
	counter atomic.Uint64
}

// NewCountSampler 创建计数采样器，n < 1 时返回 ErrInvalidCount。
func NewCountSampler(n int) (*CountSampler, error) {
	if n < 1 {
		return nil, ErrInvalidCount
	}
	return &CountSampler{n: uint64(n)}, nil
}

func (s *CountSampler) ShouldSample(context.Context, xmonitor.CallEvent) bool {
	if s.n == 0 {
		// 零值按全采样处理
		return true
	}
	return (s.counter.Add(1)-1)%s.n == 0
}

// Reset 重置计数器
func (s *CountSampler) Reset() { s.counter.Store(0) }

// N 返回采样间隔
func (s *CountSampler) N() int { return int(s.n) }
