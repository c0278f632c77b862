package xrun

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
	"github.com/omeyang/xobjmon/pkg/monitor/xmonitortest"
)

type (
	first  struct{}
	second struct{}
)

func newRegistry(t *testing.T) (*xmonitor.Registry, *xmonitortest.Recorder, *xmonitortest.Recorder) {
	t.Helper()
	reg := xmonitor.NewRegistry()
	a, b := xmonitortest.NewRecorder(), xmonitortest.NewRecorder()
	require.NoError(t, reg.Register(reflect.TypeFor[*first](), "first", a))
	require.NoError(t, reg.Register(reflect.TypeFor[*second](), "second", b))
	return reg, a, b
}

// raiser 记录被重新发送的信号。
type raiser struct {
	mu      sync.Mutex
	signals []os.Signal
}

func (r *raiser) raise(sig os.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, sig)
	return nil
}

func (r *raiser) raised() []os.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]os.Signal(nil), r.signals...)
}

func TestRun_FlushesOnNormalExit(t *testing.T) {
	reg, a, b := newRegistry(t)

	err := RunWithOptions(context.Background(), reg, []Option{WithoutSignalHandler()},
		func(context.Context) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, 1, a.AtExits())
	assert.Equal(t, 1, b.AtExits())
	assert.True(t, reg.Flushed())
}

func TestRun_FlushesOnServiceError(t *testing.T) {
	reg, a, _ := newRegistry(t)
	want := errors.New("service crashed")

	err := RunWithOptions(context.Background(), reg, []Option{WithoutSignalHandler()},
		WaitForDone(),
		func(context.Context) error { return want },
	)
	assert.Same(t, want, err)
	assert.Equal(t, 1, a.AtExits())
}

func TestRun_FlushesOnParentCancel(t *testing.T) {
	reg, a, _ := newRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunWithOptions(ctx, reg, []Option{WithoutSignalHandler()}, WaitForDone())
	assert.NoError(t, err)
	assert.Equal(t, 1, a.AtExits())
}

func TestRun_SignalFlushesThenRedelivers(t *testing.T) {
	reg, a, b := newRegistry(t)
	r := &raiser{}
	sigc := make(chan os.Signal, 1)
	sigc <- syscall.SIGTERM
	ctx := withTestSigChan(context.Background(), sigc)

	err := RunWithOptions(ctx, reg, []Option{withRaise(r.raise), WithName("signal")}, WaitForDone())

	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
	assert.ErrorIs(t, err, ErrSignal)
	assert.Equal(t, []os.Signal{syscall.SIGTERM}, r.raised())
	assert.Equal(t, 1, a.AtExits())
	assert.Equal(t, 1, b.AtExits())
}

func TestRun_SignalWithoutRedeliver(t *testing.T) {
	reg, a, _ := newRegistry(t)
	r := &raiser{}
	sigc := make(chan os.Signal, 1)
	sigc <- syscall.SIGINT
	ctx := withTestSigChan(context.Background(), sigc)

	err := RunWithOptions(ctx, reg, []Option{withRaise(r.raise), WithRedeliver(false)}, WaitForDone())
	assert.ErrorIs(t, err, ErrSignal)
	assert.Empty(t, r.raised())
	assert.Equal(t, 1, a.AtExits())
}

func TestRun_CustomSignals(t *testing.T) {
	reg, _, _ := newRegistry(t)
	sigc := make(chan os.Signal, 1)
	sigc <- syscall.SIGUSR1
	ctx := withTestSigChan(context.Background(), sigc)

	err := RunWithOptions(ctx, reg, []Option{
		WithSignals([]os.Signal{syscall.SIGUSR1}),
		WithRedeliver(false),
	}, WaitForDone())

	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, syscall.SIGUSR1, sigErr.Signal)
}

// ignoreSignal 在测试期间忽略 sig，结束后恢复原处理方式。
func ignoreSignal(t *testing.T, sig os.Signal) {
	t.Helper()
	if signal.Ignored(sig) {
		return
	}
	signal.Ignore(sig)
	t.Cleanup(func() { signal.Reset(sig) })
}

func TestActiveSignals_SkipsIgnored(t *testing.T) {
	ignoreSignal(t, syscall.SIGHUP)

	active := activeSignals(DefaultSignals())
	assert.NotContains(t, active, syscall.SIGHUP)
	assert.Contains(t, active, syscall.SIGTERM)
	assert.Empty(t, activeSignals([]os.Signal{syscall.SIGHUP}))
}

func TestRun_IgnoredSignalKeepsRunning(t *testing.T) {
	ignoreSignal(t, syscall.SIGHUP)
	reg, a, _ := newRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- RunWithOptions(ctx, reg, []Option{
			WithSignals([]os.Signal{syscall.SIGHUP}),
			WithRedeliver(false),
		}, func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return nil
		})
	}()
	<-started
	// 等待信号监听协程启动。
	time.Sleep(50 * time.Millisecond)

	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(syscall.SIGHUP))

	select {
	case err := <-done:
		t.Fatalf("Run returned after ignored SIGHUP: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
	assert.False(t, reg.Flushed())
	assert.Equal(t, 0, a.AtExits())

	cancel()
	require.NoError(t, <-done)
	assert.True(t, reg.Flushed())
	assert.Equal(t, 1, a.AtExits())
}

func TestRun_FlushError(t *testing.T) {
	reg, a, _ := newRegistry(t)
	injected := errors.New("sink closed")
	a.AtExitErr = injected

	err := RunWithOptions(context.Background(), reg, []Option{WithoutSignalHandler()},
		func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrFlush)
	assert.ErrorIs(t, err, injected)
}

func TestRun_FlushOnceAcrossCallers(t *testing.T) {
	reg, a, _ := newRegistry(t)
	require.NoError(t, Flush(context.Background(), reg, time.Second))

	err := RunWithOptions(context.Background(), reg, []Option{WithoutSignalHandler()},
		func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, Flush(context.Background(), reg, 0))
	assert.Equal(t, 1, a.AtExits())
}

func TestFlush_CanceledContext(t *testing.T) {
	reg, a, _ := newRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var seen error
	observer := &ctxMonitor{fn: func(ctx context.Context) { seen = ctx.Err() }}
	require.NoError(t, reg.Register(reflect.TypeFor[*ctxMonitor](), "ctx", observer))

	require.NoError(t, Flush(ctx, reg, time.Second))
	assert.Equal(t, 1, a.AtExits())
	assert.NoError(t, seen)
}

type ctxMonitor struct {
	xmonitor.Base
	fn func(ctx context.Context)
}

func (p *ctxMonitor) AtExit(ctx context.Context) error {
	p.fn(ctx)
	return nil
}

func TestRun_DefaultRegistry(t *testing.T) {
	// 默认注册表在本包中没有登记任何监控器。
	err := RunWithOptions(context.Background(), nil, []Option{WithoutSignalHandler()})
	assert.NoError(t, err)
	assert.True(t, xmonitor.Default().Flushed())
}
