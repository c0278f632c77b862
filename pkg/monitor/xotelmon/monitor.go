package xotelmon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
	"github.com/omeyang/xobjmon/pkg/observability/xmetrics"
	"github.com/omeyang/xobjmon/pkg/observability/xsampling"
)

// 指标名称
const (
	MetricCreated  = "xobjmon.instance.created"
	MetricLive     = "xobjmon.instance.live"
	MetricLifetime = "xobjmon.instance.lifetime"
)

// 编译时接口检查
var (
	_ xmonitor.Factory           = (*Factory)(nil)
	_ xmonitor.OperationDeclarer = (*Factory)(nil)
	_ xmonitor.Monitor           = (*Monitor)(nil)
)

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

// DefaultOperations 返回 WithDefaultOperations 设置的操作，默认为空。
func (f *Factory) DefaultOperations() []string {
	return append([]string(nil), f.opts.defaultOps...)
}

// NewMonitor 创建 info 对应类型的 Monitor。
func (f *Factory) NewMonitor(info xmonitor.TypeInfo, cfg xmonitor.Config) (xmonitor.Monitor, error) {
	sampler := f.opts.sampler
	if sampler == nil {
		var err error
		if sampler, err = xsampling.FromConfig(cfg, info.Name); err != nil {
			return nil, err
		}
	}
	observer, err := xmetrics.NewOTelObserver(
		xmetrics.WithInstrumentationName(InstrumentationName),
		xmetrics.WithMeterProvider(f.opts.meterProvider),
		xmetrics.WithTracerProvider(f.opts.tracerProvider),
	)
	if err != nil {
		return nil, err
	}

	meter := f.opts.meterProvider.Meter(InstrumentationName)
	created, err := meter.Int64Counter(MetricCreated,
		metric.WithDescription("monitored instances created"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateInstrument, MetricCreated, err)
	}
	live, err := meter.Int64UpDownCounter(MetricLive,
		metric.WithDescription("monitored instances not yet destroyed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateInstrument, MetricLive, err)
	}
	lifetime, err := meter.Float64Histogram(MetricLifetime,
		metric.WithDescription("time from construction to destruction"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateInstrument, MetricLifetime, err)
	}

	m := &Monitor{
		Stateful: xmonitor.NewStateful(func(any, xmonitor.InstanceID) (time.Time, error) {
			return time.Now(), nil
		}),
		name:     info.Name,
		observer: observer,
		sampler:  sampler,
		created:  created,
		live:     live,
		lifetime: lifetime,
		attrs:    metric.WithAttributeSet(attribute.NewSet(attribute.String("type", info.Name))),
		flush:    flushers(f.opts),
		logger:   f.opts.logger,
	}
	return m, nil
}

// Monitor 记录一个被监控类型的 OTel 指标和跨度。
//
// 实例元数据是构造时间，在 OnDestroy 时删除，内存占用与存活实例数成正比。
type Monitor struct {
	*xmonitor.Stateful[time.Time]

	name     string
	observer xmetrics.Observer
	sampler  xsampling.Sampler
	created  metric.Int64Counter
	live     metric.Int64UpDownCounter
	lifetime metric.Float64Histogram
	attrs    metric.MeasurementOption
	flush    []flusher
	logger   *slog.Logger
}

// OnInit 登记构造时间并计数。
func (m *Monitor) OnInit(ctx context.Context, instance any, id xmonitor.InstanceID) error {
	if err := m.Stateful.OnInit(ctx, instance, id); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	m.created.Add(ctx, 1, m.attrs)
	m.live.Add(ctx, 1, m.attrs)
	return nil
}

// OnCall 为采样到的调用记录一个回溯的跨度。
func (m *Monitor) OnCall(ctx context.Context, ev xmonitor.CallEvent) error {
	if !m.sampler.ShouldSample(ctx, ev) {
		return nil
	}
	_, span := xmetrics.Start(ctx, m.observer, xmetrics.SpanOptions{
		Component: m.name,
		Operation: ev.Operation,
		Kind:      xmetrics.KindInternal,
		Start:     time.Now().Add(-ev.Elapsed),
		Attrs:     []xmetrics.Attr{xmetrics.Uint64("instance.id", uint64(ev.ID))},
	})
	span.End(result(ev))
	return nil
}

func result(ev xmonitor.CallEvent) xmetrics.Result {
	r := xmetrics.Result{Err: ev.Err, Elapsed: ev.Elapsed}
	if ev.Panic != nil {
		r.Status = xmetrics.StatusPanic
		if r.Err == nil {
			r.Err = fmt.Errorf("panic: %v", ev.Panic)
		}
	}
	if r.Elapsed <= 0 {
		// Elapsed 为 0 时 xmetrics 会改用跨度自身的时长。
		r.Elapsed = time.Nanosecond
	}
	return r
}

// OnDestroy 记录存活时长并删除元数据。
func (m *Monitor) OnDestroy(id xmonitor.InstanceID) {
	born, ok, err := m.GetInstanceData(xmonitor.ByID(id))
	if err != nil || !ok {
		m.logger.Warn("destroy of unknown instance",
			slog.String("type", m.name),
			slog.Uint64("id", uint64(id)),
			slog.Any("error", errors.Join(ErrUnknownInstance, err)),
		)
		return
	}
	m.DeleteInstanceData(id)
	ctx := context.Background()
	m.live.Add(ctx, -1, m.attrs)
	m.lifetime.Record(ctx, time.Since(born).Seconds(), m.attrs)
}

// AtExit 刷新支持 ForceFlush 的 provider。
func (m *Monitor) AtExit(ctx context.Context) error {
	var errs []error
	for _, f := range m.flush {
		if err := f.ForceFlush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Live 返回仍登记的实例数。
func (m *Monitor) Live() int { return m.Len() }

type flusher interface {
	ForceFlush(ctx context.Context) error
}

func flushers(o *options) []flusher {
	var out []flusher
	for _, p := range []any{o.tracerProvider, o.meterProvider} {
		if f, ok := p.(flusher); ok {
			out = append(out, f)
		}
	}
	return out
}
