package xlogmon

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
	"github.com/omeyang/xobjmon/pkg/observability/xlog"
	"github.com/omeyang/xobjmon/pkg/observability/xsampling"
)

var _ xmonitor.Monitor = (*Monitor)(nil)

// Lifetime 是一个实例的生命周期记录。
type Lifetime struct {
	ID        xmonitor.InstanceID
	Born      time.Time
	Died      time.Time // 实例存活时为零值
	Calls     int
	Failures  int
	LastOp    string
	LastError string
}

// Duration 返回存活时长；实例仍存活时返回截至 now 的时长。
func (l Lifetime) Duration(now time.Time) time.Duration {
	if l.Died.IsZero() {
		return now.Sub(l.Born)
	}
	return l.Died.Sub(l.Born)
}

// Summary 是 Monitor 的计数快照。
type Summary struct {
	Created   uint64
	Destroyed uint64
	Live      int
	Calls     uint64
	Failures  uint64
}

// Monitor 把一个被监控类型的生命周期写成日志。
type Monitor struct {
	*xmonitor.Stateful[Lifetime]

	name    string
	logger  *slog.Logger
	level   *slog.LevelVar
	closeFn func() error
	sampler xsampling.Sampler
	history *lru.Cache[xmonitor.InstanceID, Lifetime]

	created   atomic.Uint64
	destroyed atomic.Uint64
	calls     atomic.Uint64
	failures  atomic.Uint64
}

func (m *Monitor) register(_ any, id xmonitor.InstanceID) (Lifetime, error) {
	return Lifetime{ID: id, Born: time.Now()}, nil
}

// OnInit 登记实例并写一条 debug 记录。
func (m *Monitor) OnInit(ctx context.Context, instance any, id xmonitor.InstanceID) error {
	if err := m.Stateful.OnInit(ctx, instance, id); err != nil {
		return err
	}
	m.created.Add(1)
	m.logger.LogAttrs(ctx, slog.LevelDebug, "instance created", slog.Uint64("id", uint64(id)))
	return nil
}

// OnCall 更新实例的调用计数；采样到的调用写一条记录，
// 成功为 info，返回错误为 warn，panic 为 error。
func (m *Monitor) OnCall(ctx context.Context, ev xmonitor.CallEvent) error {
	failed := ev.Failed()
	m.calls.Add(1)
	if failed {
		m.failures.Add(1)
	}
	if err := m.Update(xmonitor.ByID(ev.ID), func(cur Lifetime, _ bool) Lifetime {
		cur.ID = ev.ID
		cur.Calls++
		cur.LastOp = ev.Operation
		if failed {
			cur.Failures++
			cur.LastError = describe(ev)
		}
		return cur
	}); err != nil {
		return err
	}

	if !m.sampler.ShouldSample(ctx, ev) {
		return nil
	}
	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.Uint64("id", uint64(ev.ID)),
		slog.String("operation", ev.Operation),
		slog.Duration("elapsed", ev.Elapsed),
		slog.Any("args", ev.Args),
	}
	switch {
	case ev.Panic != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.Any("panic", ev.Panic))
	case ev.Err != nil:
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("error", ev.Err))
	default:
		attrs = append(attrs, slog.Any("results", ev.Results))
	}
	m.logger.LogAttrs(ctx, level, "call", attrs...)
	return nil
}

func describe(ev xmonitor.CallEvent) string {
	if ev.Panic != nil {
		return "panic: " + slog.AnyValue(ev.Panic).String()
	}
	return ev.Err.Error()
}

// OnDestroy 把生命周期移入历史并写一条 info 记录。
func (m *Monitor) OnDestroy(id xmonitor.InstanceID) {
	m.destroyed.Add(1)
	lt, ok, err := m.GetInstanceData(xmonitor.ByID(id))
	if err != nil || !ok {
		m.logger.Warn("destroy of unknown instance", slog.Uint64("id", uint64(id)))
		return
	}
	m.DeleteInstanceData(id)
	lt.Died = time.Now()
	m.history.Add(id, lt)
	m.logger.LogAttrs(context.Background(), slog.LevelInfo, "instance destroyed",
		slog.Uint64("id", uint64(id)),
		slog.Duration("lifetime", lt.Duration(lt.Died)),
		slog.Int("calls", lt.Calls),
		slog.Int("failures", lt.Failures),
	)
}

// AtExit 写汇总记录，逐个列出仍存活的实例，然后关闭日志文件。
func (m *Monitor) AtExit(ctx context.Context) error {
	s := m.Summary()
	m.logger.LogAttrs(ctx, slog.LevelInfo, "monitor summary",
		slog.Uint64("created", s.Created),
		slog.Uint64("destroyed", s.Destroyed),
		slog.Int("live", s.Live),
		slog.Uint64("calls", s.Calls),
		slog.Uint64("failures", s.Failures),
	)
	now := time.Now()
	m.Range(func(id xmonitor.InstanceID, lt Lifetime) bool {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "instance live at exit",
			slog.Uint64("id", uint64(id)),
			slog.Duration("age", lt.Duration(now)),
			slog.Int("calls", lt.Calls),
		)
		return ctx.Err() == nil
	})
	return m.closeFn()
}

// Summary 返回计数快照。
func (m *Monitor) Summary() Summary {
	return Summary{
		Created:   m.created.Load(),
		Destroyed: m.destroyed.Load(),
		Live:      m.Len(),
		Calls:     m.calls.Load(),
		Failures:  m.failures.Load(),
	}
}

// History 按结束先后返回保留的已结束生命周期。
func (m *Monitor) History() []Lifetime {
	return m.history.Values()
}

// Lookup 返回实例的生命周期：存活实例从元数据中读取，已结束的从历史中读取。
func (m *Monitor) Lookup(id xmonitor.InstanceID) (Lifetime, bool) {
	if lt, ok, err := m.GetInstanceData(xmonitor.ByID(id)); err == nil && ok {
		return lt, true
	}
	return m.history.Peek(id)
}

// SetLevel 调整日志级别，用于配置热更新。
func (m *Monitor) SetLevel(level string) error {
	l, err := xlog.ParseLevel(level)
	if err != nil {
		return err
	}
	m.level.Set(l)
	return nil
}

// Level 返回当前日志级别。
func (m *Monitor) Level() slog.Level { return m.level.Level() }
