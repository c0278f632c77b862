package xhook

import (
	"context"
	"log/slog"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// Constructor 是原始类型的构造函数。
type Constructor[T any] func(ctx context.Context, args ...any) (*T, error)

// Option 配置 Wrap 的选项函数。
type Option func(*wrapOptions)

type wrapOptions struct {
	name        string
	ctor        any // Constructor[T]，在 Wrap 中做类型断言
	ops         []string
	opsSet      bool
	cfg         xmonitor.Config
	cfgValues   map[string]any
	registry    *xmonitor.Registry
	logger      *slog.Logger
	noCollector bool
}

func defaultOptions() *wrapOptions {
	return &wrapOptions{
		logger: slog.Default(),
	}
}

// WithName 设置被监控类型的展示名称。默认使用 T 的类型名。
func WithName(name string) Option {
	return func(o *wrapOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithConstructor 设置原始构造函数。默认使用 new(T)。
//
// 构造函数的类型参数必须与 Wrap 的类型参数一致，否则 Wrap 返回 ErrConstructorType。
func WithConstructor[T any](fn Constructor[T]) Option {
	return func(o *wrapOptions) {
		if fn != nil {
			o.ctor = fn
		}
	}
}

// WithOperations 设置要拦截的操作名称，覆盖工厂声明的默认操作。
//
// 不带参数调用表示只监控构造与销毁。
func WithOperations(names ...string) Option {
	// 设计决策: 在创建时拷贝，避免调用方后续修改切片导致配置漂移。
	copied := append([]string(nil), names...)
	return func(o *wrapOptions) {
		o.ops = copied
		o.opsSet = true
	}
}

// WithMonitorConfig 设置转发给监控器工厂的参数。
func WithMonitorConfig(cfg xmonitor.Config) Option {
	return func(o *wrapOptions) {
		o.cfg = cfg
		o.cfgValues = nil
	}
}

// WithConfigValues 以键值映射设置监控器参数，等价于 WithMonitorConfig(xmonitor.NewConfig(values))。
func WithConfigValues(values map[string]any) Option {
	return func(o *wrapOptions) {
		o.cfgValues = values
	}
}

// WithRegistry 设置登记监控器的注册表。默认使用 xmonitor.Default()。
func WithRegistry(r *xmonitor.Registry) Option {
	return func(o *wrapOptions) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithLogger 设置日志记录器。默认使用 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *wrapOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithoutCollectorFallback 禁用回收兜底：只有 Close 会触发 OnDestroy。
//
// 适用于所有实例都有明确所有者、且希望避免 runtime cleanup 开销的场景。
func WithoutCollectorFallback() Option {
	return func(o *wrapOptions) {
		o.noCollector = true
	}
}
