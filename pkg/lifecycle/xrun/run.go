package xrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// Run 运行服务直到全部结束、任一出错或收到信号，然后刷新 reg 中的监控器。
//
// reg 为 nil 时使用 xmonitor.Default()。信号退出且开启重新发送（默认）时，
// 刷新完成后信号会被重新发送给本进程；若进程仍存活，Run 返回 *SignalError。
// 刷新失败时返回值同时包含 ErrFlush。
//
//	err := xrun.Run(ctx, nil, func(ctx context.Context) error {
//	    return serve(ctx)
//	})
func Run(ctx context.Context, reg *xmonitor.Registry, services ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, reg, nil, services...)
}

// RunWithOptions 与 Run 相同，但支持配置选项。
func RunWithOptions(ctx context.Context, reg *xmonitor.Registry, opts []Option, services ...func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if reg == nil {
		reg = xmonitor.Default()
	}
	g, _ := NewGroup(ctx, opts...)
	if !g.opts.noSignalHandler {
		g.Go(g.watchSignals)
	}
	for _, svc := range services {
		g.Go(svc)
	}
	runErr := g.Wait()

	flushErr := flush(ctx, reg, g.opts)

	var sigErr *SignalError
	if errors.As(runErr, &sigErr) && g.opts.redeliver {
		g.redeliver(sigErr.Signal)
	}
	if flushErr != nil {
		return errors.Join(runErr, flushErr)
	}
	return runErr
}

// watchSignals 等待终止信号并以 *SignalError 取消 Group。
func (g *Group) watchSignals(ctx context.Context) error {
	signals := g.opts.signals
	// 设计决策: 空切片与 nil 等价，均使用默认信号列表。
	// signal.Notify(ch) 无参调用会订阅所有信号。
	if len(signals) == 0 {
		signals = DefaultSignals()
	}
	testc := testSigChan(ctx)
	sigCh := make(chan os.Signal, 1)
	// 全部信号都已被忽略时不订阅：无参的 Notify 会订阅所有信号。
	if active := activeSignals(signals); len(active) > 0 {
		signal.Notify(sigCh, active...)
		defer signal.Stop(sigCh)
	}

	var sig os.Signal
	select {
	case sig = <-testc:
	case sig = <-sigCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	g.opts.logger.Info("received signal",
		slog.String("group", g.opts.name),
		slog.String("signal", sig.String()),
	)
	g.cancel(&SignalError{Signal: sig})
	return nil
}

// activeSignals 去掉进程已忽略的信号（例如 nohup 下的 SIGHUP）。
// Notify 会恢复被忽略信号的投递，这些信号保持忽略，不触发退出。
func activeSignals(signals []os.Signal) []os.Signal {
	out := make([]os.Signal, 0, len(signals))
	for _, sig := range signals {
		if !signal.Ignored(sig) {
			out = append(out, sig)
		}
	}
	return out
}

// redeliver 恢复 sig 的默认处理并重新发送给本进程。
func (g *Group) redeliver(sig os.Signal) {
	if sig == nil {
		return
	}
	signal.Reset(sig)
	if err := g.opts.raise(sig); err != nil {
		g.opts.logger.Warn("redeliver signal failed",
			slog.String("group", g.opts.name),
			slog.String("signal", sig.String()),
			slog.Any("error", err),
		)
	}
}

// Flush 在 timeout 内刷新 reg 中的监控器（timeout 非正数表示不设超时）。
//
// 供自行管理退出路径的宿主使用。与 Run 同时使用也只会刷新一次。
// ctx 已取消时仍会执行刷新，只继承其值。
func Flush(ctx context.Context, reg *xmonitor.Registry, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if reg == nil {
		reg = xmonitor.Default()
	}
	o := defaultOptions()
	o.flushTimeout = timeout
	return flush(ctx, reg, o)
}

func flush(ctx context.Context, reg *xmonitor.Registry, o *runOptions) error {
	ctx = context.WithoutCancel(ctx)
	if o.flushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.flushTimeout)
		defer cancel()
	}
	start := time.Now()
	err := reg.Shutdown(ctx)
	if err != nil {
		o.logger.Warn("flush monitors failed",
			slog.String("group", o.name),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %w", ErrFlush, err)
	}
	o.logger.Debug("monitors flushed",
		slog.String("group", o.name),
		slog.Int("monitors", reg.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// raiseSignal 向本进程发送 sig。
func raiseSignal(sig os.Signal) error {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return err
	}
	return p.Signal(sig)
}
