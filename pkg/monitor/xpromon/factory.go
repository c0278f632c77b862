package xpromon

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// 调用状态标签值
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusPanic = "panic"
)

// DefaultNamespace 是指标名称前缀。
const DefaultNamespace = "xobjmon"

// 编译时接口检查
var (
	_ xmonitor.Factory           = (*Factory)(nil)
	_ xmonitor.OperationDeclarer = (*Factory)(nil)
)

// Option 配置 Factory。
type Option func(*options)

type options struct {
	namespace  string
	buckets    []float64
	constant   prometheus.Labels
	defaultOps []string
}

// WithNamespace 设置指标名称前缀，默认 DefaultNamespace。
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithBuckets 设置调用耗时直方图的桶，默认 prometheus.DefBuckets。
func WithBuckets(buckets ...float64) Option {
	return func(o *options) {
		if len(buckets) > 0 {
			o.buckets = append([]float64(nil), buckets...)
		}
	}
}

// WithConstLabels 为所有指标添加固定标签。
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *options) {
		o.constant = labels
	}
}

// WithDefaultOperations 设置默认拦截的操作。
func WithDefaultOperations(ops ...string) Option {
	return func(o *options) {
		o.defaultOps = append([]string(nil), ops...)
	}
}

// Factory 为每个被监控类型创建 Monitor，所有 Monitor 共享同一组指标。
type Factory struct {
	created   *prometheus.CounterVec
	destroyed *prometheus.CounterVec
	live      *prometheus.GaugeVec
	calls     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	ops       []string
}

// NewFactory 创建指标并注册到 reg。reg 为 nil 时使用 prometheus.DefaultRegisterer。
//
// 同名指标已注册时复用已有的收集器，因此多次调用 NewFactory 是安全的，
// 前提是标签和选项一致。
func NewFactory(reg prometheus.Registerer, opts ...Option) (*Factory, error) {
	o := &options{namespace: DefaultNamespace, buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	f := &Factory{ops: o.defaultOps}
	var err error
	if f.created, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   o.namespace,
		Name:        "instances_created_total",
		Help:        "Monitored instances created.",
		ConstLabels: o.constant,
	}, []string{"type"})); err != nil {
		return nil, err
	}
	if f.destroyed, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   o.namespace,
		Name:        "instances_destroyed_total",
		Help:        "Monitored instances destroyed.",
		ConstLabels: o.constant,
	}, []string{"type"})); err != nil {
		return nil, err
	}
	if f.live, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   o.namespace,
		Name:        "instances_live",
		Help:        "Monitored instances not yet destroyed.",
		ConstLabels: o.constant,
	}, []string{"type"})); err != nil {
		return nil, err
	}
	if f.calls, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   o.namespace,
		Name:        "calls_total",
		Help:        "Intercepted operation calls by outcome.",
		ConstLabels: o.constant,
	}, []string{"type", "operation", "status"})); err != nil {
		return nil, err
	}
	if f.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   o.namespace,
		Name:        "call_duration_seconds",
		Help:        "Duration of intercepted operations, excluding monitor overhead.",
		Buckets:     o.buckets,
		ConstLabels: o.constant,
	}, []string{"type", "operation"})); err != nil {
		return nil, err
	}
	return f, nil
}

// MustNewFactory 与 NewFactory 相同，但失败时 panic。
func MustNewFactory(reg prometheus.Registerer, opts ...Option) *Factory {
	f, err := NewFactory(reg, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("xpromon: register collector: %w", err)
	}
	return c, nil
}

// DefaultOperations 返回 WithDefaultOperations 设置的操作。
func (f *Factory) DefaultOperations() []string {
	return append([]string(nil), f.ops...)
}

// NewMonitor 创建 info 对应类型的 Monitor。
func (f *Factory) NewMonitor(info xmonitor.TypeInfo, _ xmonitor.Config) (xmonitor.Monitor, error) {
	return &Monitor{
		created:   f.created.WithLabelValues(info.Name),
		destroyed: f.destroyed.WithLabelValues(info.Name),
		live:      f.live.WithLabelValues(info.Name),
		calls:     f.calls.MustCurryWith(prometheus.Labels{"type": info.Name}),
		duration:  f.duration.MustCurryWith(prometheus.Labels{"type": info.Name}),
	}, nil
}
