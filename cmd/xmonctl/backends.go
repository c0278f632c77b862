package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/omeyang/xobjmon/pkg/monitor/xlogmon"
	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
	"github.com/omeyang/xobjmon/pkg/monitor/xotelmon"
	"github.com/omeyang/xobjmon/pkg/monitor/xpromon"
)

// 监控后端，由 monitors.<type>.params.backend 选择。
const (
	backendLog  = "log"
	backendProm = "prom"
	backendOTel = "otel"
)

// backendKey 是选择后端的参数名。
const backendKey = "backend"

// otelExportInterval 是 OTel 指标导出周期。
const otelExportInterval = 5 * time.Second

// backends 持有所有监控后端的工厂和它们依赖的 provider。
type backends struct {
	log  *xlogmon.Factory
	prom *xpromon.Factory
	otel *xotelmon.Factory

	promRegistry *prometheus.Registry
	shutdown     []func(context.Context) error
}

// newBackends 创建后端。otelOut 为 nil 时 OTel 后端使用全局（默认 noop）provider。
func newBackends(logOut, otelOut io.Writer, logger *slog.Logger) (*backends, error) {
	b := &backends{promRegistry: prometheus.NewRegistry()}
	b.promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prom, err := xpromon.NewFactory(b.promRegistry)
	if err != nil {
		return nil, err
	}
	b.prom = prom
	b.log = xlogmon.NewFactory(xlogmon.WithWriter(logOut))

	otelOpts := []xotelmon.Option{xotelmon.WithLogger(logger)}
	if otelOut != nil {
		spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(otelOut))
		if err != nil {
			return nil, fmt.Errorf("create span exporter: %w", err)
		}
		metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(otelOut))
		if err != nil {
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(spanExporter))
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(otelExportInterval)),
		))
		b.shutdown = append(b.shutdown, tp.Shutdown, mp.Shutdown)
		otelOpts = append(otelOpts, xotelmon.WithTracerProvider(tp), xotelmon.WithMeterProvider(mp))
	}
	b.otel = xotelmon.NewFactory(otelOpts...)
	return b, nil
}

// factory 返回 params.backend 对应的工厂，默认 log。
func (b *backends) factory(params xmonitor.Config) (xmonitor.Factory, error) {
	switch name := strings.ToLower(params.String(backendKey)); name {
	case "", backendLog:
		return b.log, nil
	case backendProm:
		return b.prom, nil
	case backendOTel:
		return b.otel, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s, %s or %s)", name, backendLog, backendProm, backendOTel)
	}
}

// close 关闭 OTel provider，导出剩余的数据。
func (b *backends) close(ctx context.Context) error {
	var errs []error
	for _, fn := range b.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}
