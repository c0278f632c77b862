package xotelmon

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xobjmon/pkg/observability/xsampling"
)

// InstrumentationName 是 xotelmon 使用的 OTel instrumentation 名称。
const InstrumentationName = "github.com/omeyang/xobjmon/xotelmon"

// Option 配置 Factory。
type Option func(*options)

type options struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	sampler        xsampling.Sampler
	logger         *slog.Logger
	defaultOps     []string
}

func defaultOptions() *options {
	return &options{
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
		logger:         slog.Default(),
	}
}

// WithMeterProvider 设置 MeterProvider。默认使用全局 provider。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithTracerProvider 设置 TracerProvider。默认使用全局 provider。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
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

// WithLogger 设置日志记录器。默认使用 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDefaultOperations 设置默认拦截的操作，Wrap 未指定 WithOperations 时使用。
func WithDefaultOperations(ops ...string) Option {
	return func(o *options) {
		o.defaultOps = append([]string(nil), ops...)
	}
}
