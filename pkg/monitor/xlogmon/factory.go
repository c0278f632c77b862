package xlogmon

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
	"github.com/omeyang/xobjmon/pkg/observability/xlog"
	"github.com/omeyang/xobjmon/pkg/observability/xrotate"
	"github.com/omeyang/xobjmon/pkg/observability/xsampling"
)

// 编译时接口检查
var (
	_ xmonitor.Factory           = (*Factory)(nil)
	_ xmonitor.OperationDeclarer = (*Factory)(nil)
)

// Params 是 xlogmon 识别的监控器参数。
type Params struct {
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	History    int    `koanf:"history"`
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
}

// Factory 为每个被监控类型创建一个 Monitor。
type Factory struct {
	opts *options
}

// NewFactory 创建 Factory。
func NewFactory(opts ...Option) *Factory {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &Factory{opts: o}
}

// DefaultOperations 返回 WithDefaultOperations 设置的操作。
func (f *Factory) DefaultOperations() []string {
	return append([]string(nil), f.opts.defaultOps...)
}

// NewMonitor 按参数创建 info 对应类型的 Monitor。
func (f *Factory) NewMonitor(info xmonitor.TypeInfo, cfg xmonitor.Config) (xmonitor.Monitor, error) {
	p := Params{
		MaxSizeMB:  xrotate.DefaultMaxSizeMB,
		MaxBackups: xrotate.DefaultMaxBackups,
		History:    DefaultHistory,
		Format:     xlog.FormatJSON,
	}
	if err := cfg.Unmarshal(&p); err != nil {
		return nil, err
	}
	if p.History < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHistory, p.History)
	}

	sampler := f.opts.sampler
	if sampler == nil {
		var err error
		if sampler, err = xsampling.FromConfig(cfg, info.Name); err != nil {
			return nil, err
		}
	}
	history, err := lru.New[xmonitor.InstanceID, Lifetime](p.History)
	if err != nil {
		return nil, fmt.Errorf("xlogmon: create history: %w", err)
	}

	b := xlog.New().
		SetFormat(p.Format).
		SetOutput(f.opts.writer).
		With(slog.String("type", info.Name))
	if f.opts.levelVar != nil {
		b.SetLevelVar(f.opts.levelVar)
	} else {
		b.SetLevelString(p.Level)
	}
	if p.File != "" {
		b.SetRotation(p.File,
			xrotate.WithMaxSize(p.MaxSizeMB),
			xrotate.WithMaxBackups(p.MaxBackups),
		)
	}
	logger, level, closeFn, err := b.Build()
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		name:    info.Name,
		logger:  logger,
		level:   level,
		closeFn: closeFn,
		sampler: sampler,
		history: history,
	}
	m.Stateful = xmonitor.NewStateful(m.register)
	return m, nil
}
