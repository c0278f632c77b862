package xlogmon

import (
	"io"
	"log/slog"
	"os"

	"github.com/omeyang/xobjmon/pkg/observability/xsampling"
)

// DefaultHistory 是默认保留的已结束生命周期数。
const DefaultHistory = 128

// Option 配置 Factory。
type Option func(*options)

type options struct {
	writer     io.Writer
	levelVar   *slog.LevelVar
	sampler    xsampling.Sampler
	defaultOps []string
}

func defaultOptions() *options {
	return &options{writer: os.Stderr}
}

// WithWriter 设置未配置 file 时的输出目标。默认 os.Stderr。
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithLevelVar 让所有 Monitor 共享同一个日志级别，此时忽略 level 参数。
func WithLevelVar(v *slog.LevelVar) Option {
	return func(o *options) {
		o.levelVar = v
	}
}

// WithSampler 设置调用采样器，优先于参数 sample.*。
func WithSampler(s xsampling.Sampler) Option {
	return func(o *options) {
		if s != nil {
			o.sampler = s
		}
	}
}

// WithDefaultOperations 设置默认拦截的操作。
func WithDefaultOperations(ops ...string) Option {
	return func(o *options) {
		o.defaultOps = append([]string(nil), ops...)
	}
}
