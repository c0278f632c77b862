package xsampling

import (
	"fmt"
	"strings"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// 采样模式
const (
	ModeAlways   = "always"
	ModeNever    = "never"
	ModeRate     = "rate"
	ModeCount    = "count"
	ModeInstance = "instance"
)

// FromConfig 按 sample.* 参数构造采样器，seed 传给 InstanceSampler。
//
// 未配置 sample.mode 时返回 Always()。sample.failures 为 true 时
// 与 Failures() 以 Any 组合，失败的调用总是被采样。
func FromConfig(cfg xmonitor.Config, seed string) (Sampler, error) {
	base, err := baseFromConfig(cfg, seed)
	if err != nil {
		return nil, err
	}
	if !cfg.Bool("sample.failures") {
		return base, nil
	}
	return Any(base, Failures())
}

func baseFromConfig(cfg xmonitor.Config, seed string) (Sampler, error) {
	rate := 1.0
	if cfg.Exists("sample.rate") {
		rate = cfg.Float64("sample.rate")
	}
	switch mode := strings.ToLower(strings.TrimSpace(cfg.String("sample.mode"))); mode {
	case "", ModeAlways:
		return Always(), nil
	case ModeNever:
		return Never(), nil
	case ModeRate:
		return NewRateSampler(rate)
	case ModeInstance:
		return NewInstanceSampler(rate, seed)
	case ModeCount:
		return NewCountSampler(cfg.Int("sample.every"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}
