package xpromon

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

var _ xmonitor.Monitor = (*Monitor)(nil)

// Monitor 更新一个被监控类型的 Prometheus 指标。
//
// 除指标外不保存任何实例状态。
type Monitor struct {
	xmonitor.Base

	created   prometheus.Counter
	destroyed prometheus.Counter
	live      prometheus.Gauge
	calls     *prometheus.CounterVec
	duration  prometheus.ObserverVec
}

// OnInit 计数。
func (m *Monitor) OnInit(context.Context, any, xmonitor.InstanceID) error {
	m.created.Inc()
	m.live.Inc()
	return nil
}

// OnCall 按结果计数并记录耗时。
func (m *Monitor) OnCall(_ context.Context, ev xmonitor.CallEvent) error {
	m.calls.WithLabelValues(ev.Operation, status(ev)).Inc()
	m.duration.WithLabelValues(ev.Operation).Observe(ev.Elapsed.Seconds())
	return nil
}

// OnDestroy 计数。
func (m *Monitor) OnDestroy(xmonitor.InstanceID) {
	m.destroyed.Inc()
	m.live.Dec()
}

func status(ev xmonitor.CallEvent) string {
	switch {
	case ev.Panic != nil:
		return StatusPanic
	case ev.Err != nil:
		return StatusError
	default:
		return StatusOK
	}
}
