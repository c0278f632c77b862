package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xobjmon/pkg/config/xconf"
	"github.com/omeyang/xobjmon/pkg/lifecycle/xrun"
	"github.com/omeyang/xobjmon/pkg/monitor/xhook"
	"github.com/omeyang/xobjmon/pkg/monitor/xlogmon"
	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
	"github.com/omeyang/xobjmon/pkg/observability/xlog"
)

// defaultConfig 是未指定 --config 时使用的内置配置。
const defaultConfig = `
monitors:
  Account:
    operations: [Deposit, Withdraw]
    params:
      backend: log
      history: 64
  Session:
    params:
      backend: prom
`

// errDurationReached 表示 --duration 到期，属于正常退出。
var errDurationReached = errors.New("duration reached")

// httpShutdownTimeout 是 /metrics 服务的关闭超时。
const httpShutdownTimeout = 5 * time.Second

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createRunCommand(),
		createCheckCommand(),
		createTypesCommand(),
	}
}

// createRunCommand 创建 run 子命令。
func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "运行演示负载",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "运行时长，0 表示直到收到信号",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "并发 worker 数",
				Value:   4,
			},
			&cli.DurationFlag{
				Name:  "pause",
				Usage: "每轮负载之间的间隔",
				Value: 10 * time.Millisecond,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "统计输出间隔，0 表示不输出",
				Value: time.Second,
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Prometheus /metrics 监听地址，为空表示不启动",
			},
			&cli.StringFlag{
				Name:  "otel-out",
				Usage: "OTel 跨度和指标输出文件，- 表示 stdout，为空表示不导出",
			},
		},
		Action: cmdRun,
	}
}

// createCheckCommand 创建 check 子命令。
func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置并列出被监控类型",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdCheck(cmd.Root().Writer, cmd.Root().String("config"))
		},
	}
}

// createTypesCommand 创建 types 子命令。
func createTypesCommand() *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "列出可监控的演示类型",
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			for _, dt := range demoTypes {
				fmt.Fprintf(w, "%s\t%s\n", dt.name, strings.Join(dt.ops, ","))
			}
			return nil
		},
	}
}

// loadConfig 加载配置文件，path 为空时使用内置配置。
func loadConfig(path string) (xconf.Config, error) {
	if path == "" {
		return xconf.NewFromBytes([]byte(defaultConfig), xconf.FormatYAML)
	}
	return xconf.New(path)
}

// typeConfigs 读取并校验 monitors 配置：类型必须是演示类型，操作必须属于该类型。
func typeConfigs(cfg xconf.Config, be *backends) (map[string]xconf.TypeConfig, error) {
	types, err := xconf.Monitors(cfg)
	if err != nil {
		return nil, err
	}
	for name, tc := range types {
		dt, ok := findDemoType(name)
		if !ok {
			return nil, fmt.Errorf("monitors.%s: unknown type", name)
		}
		for _, op := range tc.Operations {
			if !slices.Contains(dt.ops, op) {
				return nil, fmt.Errorf("monitors.%s: operation %q not supported", name, op)
			}
		}
		if _, err := be.factory(tc.Params); err != nil {
			return nil, fmt.Errorf("monitors.%s: %w", name, err)
		}
	}
	return types, nil
}

func findDemoType(name string) (demoType, bool) {
	for _, dt := range demoTypes {
		if dt.name == name {
			return dt, true
		}
	}
	return demoType{}, false
}

func cmdCheck(w io.Writer, path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return &usageError{err: err}
	}
	be, err := newBackends(io.Discard, nil, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	types, err := typeConfigs(cfg, be)
	if err != nil {
		return &usageError{err: err}
	}
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		tc := types[name]
		ops := "(default)"
		if tc.OperationsSet {
			ops = strings.Join(tc.Operations, ",")
		}
		backend := tc.Params.String(backendKey)
		if backend == "" {
			backend = backendLog
		}
		fmt.Fprintf(w, "%s\tbackend=%s\toperations=%s\n", name, backend, ops)
	}
	return nil
}

// wrapDemo 按配置将演示类型纳入监控。未出现在配置中的类型使用空监控器，只保留实例计数。
func wrapDemo(types map[string]xconf.TypeConfig, be *backends, reg *xmonitor.Registry, logger *slog.Logger) (*workload, error) {
	w := &workload{}
	for _, dt := range demoTypes {
		opts := append([]xhook.Option{
			xhook.WithRegistry(reg),
			xhook.WithLogger(logger),
			xhook.WithName(dt.name),
			xhook.WithOperations(dt.ops...),
		}, dt.opts...)

		factory := xmonitor.Of(&xmonitor.Base{})
		if tc, ok := types[dt.name]; ok {
			var err error
			if factory, err = be.factory(tc.Params); err != nil {
				return nil, err
			}
			opts = append(opts, tc.WrapOptions()...)
		}

		var err error
		switch dt.name {
		case "Account":
			w.accounts, err = xhook.Wrap[Account](factory, opts...)
		case "Session":
			w.sessions, err = xhook.Wrap[Session](factory, opts...)
		}
		if err != nil {
			return nil, err
		}
	}
	return w, nil
}

func cmdRun(ctx context.Context, cmd *cli.Command) error {
	root := cmd.Root()
	logger, _, closeLog, err := xlog.New().
		SetOutput(root.ErrWriter).
		SetLevelString(root.String("log-level")).
		SetFormat(root.String("log-format")).
		Build()
	if err != nil {
		return &usageError{err: err}
	}
	defer closeLog()

	cfg, err := loadConfig(root.String("config"))
	if err != nil {
		return &usageError{err: err}
	}
	otelOut, closeOTel, err := openOutput(cmd.String("otel-out"), root.Writer)
	if err != nil {
		return &usageError{err: err}
	}
	defer closeOTel()

	be, err := newBackends(root.ErrWriter, otelOut, logger)
	if err != nil {
		return err
	}
	types, err := typeConfigs(cfg, be)
	if err != nil {
		return &usageError{err: err}
	}
	if cmd.Int("workers") < 1 {
		return newUsageError("--workers must be >= 1")
	}

	reg := xmonitor.NewRegistry()
	w, err := wrapDemo(types, be, reg, logger)
	if err != nil {
		return &usageError{err: err}
	}
	w.pause = cmd.Duration("pause")

	services := make([]func(context.Context) error, 0, cmd.Int("workers")+4)
	for range cmd.Int("workers") {
		services = append(services, w.worker)
	}
	if d := cmd.Duration("duration"); d > 0 {
		services = append(services, stopAfter(d))
	}
	if d := cmd.Duration("interval"); d > 0 {
		services = append(services, xrun.Ticker(d, false, func(context.Context) error {
			reportStats(logger, w)
			return nil
		}))
	}
	if addr := cmd.String("listen"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(be.promRegistry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		services = append(services, xrun.HTTPServer(server, httpShutdownTimeout))
	}
	if cfg.Path() != "" {
		services = append(services, watchConfig(cfg, w, logger))
	}

	err = xrun.RunWithOptions(ctx, reg, []xrun.Option{
		xrun.WithLogger(logger),
		xrun.WithName("xmonctl"),
		// 信号退出时先关闭 OTel provider 再返回，不重新投递信号。
		xrun.WithRedeliver(false),
	}, services...)
	reportStats(logger, w)
	if closeErr := be.close(context.WithoutCancel(ctx)); closeErr != nil {
		logger.Warn("close otel providers failed", slog.Any("error", closeErr))
	}
	if errors.Is(err, errDurationReached) || errors.Is(err, xrun.ErrSignal) {
		return nil
	}
	return err
}

// openOutput 打开 OTel 输出：空串返回 nil，"-" 返回 stdout。
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	switch path {
	case "":
		return nil, func() error { return nil }, nil
	case "-":
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path) //#nosec G304 -- 路径来自命令行参数
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// stopAfter 返回在 d 后以 errDurationReached 结束的服务。
func stopAfter(d time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return errDurationReached
		case <-ctx.Done():
			return nil
		}
	}
}

func reportStats(logger *slog.Logger, w *workload) {
	for _, s := range []xhook.Stats{w.accounts.Stats(), w.sessions.Stats()} {
		logger.Info("stats",
			slog.String("type", s.Name),
			slog.Uint64("created", s.Created),
			slog.Int("live", s.Live),
			slog.Uint64("destroyed", s.Destroyed),
		)
	}
}

// watchConfig 返回监视配置文件的服务：文件变更后按新配置调整 xlogmon 的日志级别。
func watchConfig(cfg xconf.Config, w *workload, logger *slog.Logger) func(context.Context) error {
	monitors := map[string]xmonitor.Monitor{
		w.accounts.Name(): w.accounts.Monitor(),
		w.sessions.Name(): w.sessions.Monitor(),
	}
	return func(ctx context.Context) error {
		watcher, err := xconf.Watch(cfg, func(cfg xconf.Config, err error) {
			if err != nil {
				return
			}
			applyLevels(cfg, monitors, logger)
		}, xconf.WithWatchLogger(logger))
		if err != nil {
			return err
		}
		<-ctx.Done()
		return watcher.Stop()
	}
}

// applyLevels 将 monitors.<type>.params.level 应用到对应的 xlogmon 监控器。
func applyLevels(cfg xconf.Config, monitors map[string]xmonitor.Monitor, logger *slog.Logger) {
	for name, m := range monitors {
		lm, ok := m.(*xlogmon.Monitor)
		if !ok {
			continue
		}
		tc, found, err := xconf.Lookup(cfg, name)
		if err != nil || !found || !tc.Params.Exists("level") {
			continue
		}
		level := tc.Params.String("level")
		if err := lm.SetLevel(level); err != nil {
			logger.Warn("apply log level failed", slog.String("type", name), slog.Any("error", err))
			continue
		}
		logger.Info("log level updated", slog.String("type", name), slog.String("level", level))
	}
}
