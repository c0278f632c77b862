package xrun

import (
	"log/slog"
	"os"
	"time"
)

// DefaultFlushTimeout 是刷新监控器的默认超时。
const DefaultFlushTimeout = 10 * time.Second

// Option 配置 Group 和 Run 的选项函数。
type Option func(*runOptions)

type runOptions struct {
	logger          *slog.Logger
	name            string
	signals         []os.Signal
	noSignalHandler bool
	flushTimeout    time.Duration
	redeliver       bool
	raise           func(os.Signal) error
}

func defaultOptions() *runOptions {
	return &runOptions{
		logger:       slog.Default(),
		name:         "xrun",
		flushTimeout: DefaultFlushTimeout,
		redeliver:    true,
		raise:        raiseSignal,
	}
}

// WithLogger 设置日志记录器。默认使用 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置名称，用于日志中区分不同的 Group。默认值为 "xrun"。
func WithName(name string) Option {
	return func(o *runOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 设置 Run 监听的信号列表。空列表等价于 DefaultSignals()。
// 启动时已被进程忽略的信号（signal.Ignored）不会被监听，保持忽略。
func WithSignals(signals []os.Signal) Option {
	// 设计决策: 在创建时拷贝，避免调用方后续修改切片导致配置漂移。
	copied := append([]os.Signal(nil), signals...)
	return func(o *runOptions) {
		o.signals = copied
	}
}

// WithoutSignalHandler 禁用信号监听。Run 仍会在退出前刷新监控器。
func WithoutSignalHandler() Option {
	return func(o *runOptions) {
		o.noSignalHandler = true
	}
}

// WithFlushTimeout 设置刷新监控器的超时。非正数表示不设超时。
func WithFlushTimeout(d time.Duration) Option {
	return func(o *runOptions) {
		o.flushTimeout = d
	}
}

// WithRedeliver 设置收到信号并刷新后，是否恢复默认处理并将信号重新发送给本进程。
// 默认开启。
func WithRedeliver(enabled bool) Option {
	return func(o *runOptions) {
		o.redeliver = enabled
	}
}

// withRaise 替换重新发送信号的实现，仅用于测试。
func withRaise(fn func(os.Signal) error) Option {
	return func(o *runOptions) {
		if fn != nil {
			o.raise = fn
		}
	}
}
