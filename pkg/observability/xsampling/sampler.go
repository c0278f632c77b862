package xsampling

import (
	"context"
	"math"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// Sampler 采样策略接口
//
// 返回 true 表示该次调用应被记录。实现必须是并发安全的。
type Sampler interface {
	ShouldSample(ctx context.Context, ev xmonitor.CallEvent) bool
}

// Func 将函数适配为 Sampler。
type Func func(ctx context.Context, ev xmonitor.CallEvent) bool

// ShouldSample 实现 Sampler 接口。
func (f Func) ShouldSample(ctx context.Context, ev xmonitor.CallEvent) bool {
	return f(ctx, ev)
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}
