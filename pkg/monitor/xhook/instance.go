package xhook

import (
	"context"
	"log/slog"
	"reflect"
	"runtime"
	"time"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// 编译时接口检查
var (
	_ xmonitor.Identified = (*Instance[struct{}])(nil)
	_ xmonitor.Owned      = (*Instance[struct{}])(nil)
)

// underlier 由被监控实例实现，供 Type.Invoke 定位底层值。
type underlier interface {
	underlying() any
}

// Instance 是被监控类型的实例：原始值 *T 加上不可变的 InstanceID。
//
// Instance 是监控器看到的对象（OnInit/OnCall 的 instance 参数）。
// 释放方式见 Close；未 Close 的实例在被回收后同样会触发 OnDestroy（除非禁用了回收兜底）。
type Instance[T any] struct {
	typ     *Type[T]
	value   *T
	id      xmonitor.InstanceID
	h       *handle
	cleanup runtime.Cleanup
}

// Value 返回原始值。直接调用其方法不会被监控。
//
// 只持有 Value 而丢弃 Instance 时，Instance 可能被回收并触发 OnDestroy。
func (i *Instance[T]) Value() *T { return i.value }

// InstanceID 返回实例 id。
func (i *Instance[T]) InstanceID() xmonitor.InstanceID { return i.id }

// Type 返回所属的被监控类型。
func (i *Instance[T]) Type() *Type[T] { return i.typ }

// State 返回实例状态。
func (i *Instance[T]) State() State { return i.h.State() }

// Owner 返回所属被监控类型，与 TypeInfo.Owner 相同。
func (i *Instance[T]) Owner() any { return i.typ }

func (i *Instance[T]) underlying() any { return i.value }

// Close 释放实例并触发一次 OnDestroy。
//
// 若仍有在途调用，OnDestroy 在最后一个调用返回后触发。
// 重复调用返回 nil。Close 之后 Invoke 返回 ErrReleased。
func (i *Instance[T]) Close() error {
	if i.h.release() && i.typ.collector {
		i.cleanup.Stop()
	}
	return nil
}

// Invoke 按名称调用 T 的方法。
//
// 被拦截且 IsMonitoring(i) 为 true 时：计时执行原始方法，回调 OnCall，
// 然后原样返回结果和错误；原始方法 panic 时在回调后以原值重新 panic。
// 未被拦截或 IsMonitoring 为 false 时直接执行原始方法。
//
// 返回值不含方法末尾的 error，该 error 作为第二个返回值。
func (i *Instance[T]) Invoke(ctx context.Context, name string, args ...any) ([]any, error) {
	if !i.h.enter() {
		return nil, ErrReleased
	}
	defer i.h.exit()

	t := i.typ
	op, intercepted := t.ops[name]
	if !intercepted || !t.monitor.IsMonitoring(i) {
		return t.callOriginal(i.value, name, args)
	}

	in, err := prepareArgs(reflect.ValueOf(i.value), op.method.Type, name, args)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, panicked, callErr := op.call(in)
	elapsed := time.Since(start)

	if err := t.report(ctx, i, name, results, callErr, panicked, elapsed, args); err != nil {
		if panicked != nil {
			panic(panicked)
		}
		return results, err
	}
	if panicked != nil {
		panic(panicked)
	}
	return results, callErr
}

// report 回调 OnCall，失败时返回 *CallbackError。
func (t *Type[T]) report(ctx context.Context, inst *Instance[T], name string, results []any,
	callErr error, panicked any, elapsed time.Duration, args []any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	err := t.monitor.OnCall(ctx, xmonitor.CallEvent{
		Instance:  inst,
		ID:        inst.id,
		Operation: name,
		Results:   results,
		Err:       callErr,
		Panic:     panicked,
		Elapsed:   elapsed,
		Args:      args,
	})
	if err == nil {
		return nil
	}
	t.logger.Warn("monitor on_call failed",
		slog.String("type", t.info.Name),
		slog.String("operation", name),
		slog.Uint64("id", uint64(inst.id)),
		slog.Any("error", err),
	)
	return &CallbackError{Phase: PhaseCall, Type: t.info.Name, Operation: name, Err: err}
}

// Observe 以强类型方式执行一个操作：name 被拦截且实例被监控时，
// 计时执行 fn 并回调 OnCall，语义与 Invoke 相同；否则直接执行 fn。
//
// args 仅用于填充 CallEvent.Args，不会传给 fn。
//
//	balance, err := xhook.Observe(ctx, acc, "Deposit", func(a *Account) (int, error) {
//	    return a.Deposit(100)
//	}, 100)
func Observe[T, R any](ctx context.Context, inst *Instance[T], name string, fn func(*T) (R, error), args ...any) (R, error) {
	var zero R
	if !inst.h.enter() {
		return zero, ErrReleased
	}
	defer inst.h.exit()

	t := inst.typ
	if _, intercepted := t.ops[name]; !intercepted || !t.monitor.IsMonitoring(inst) {
		return fn(inst.value)
	}

	var (
		result   R
		callErr  error
		panicked any
	)
	start := time.Now()
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = r
			}
		}()
		result, callErr = fn(inst.value)
	}()
	elapsed := time.Since(start)

	var results []any
	if panicked == nil {
		results = []any{result}
	}
	if err := t.report(ctx, inst, name, results, callErr, panicked, elapsed, args); err != nil {
		if panicked != nil {
			panic(panicked)
		}
		return result, err
	}
	if panicked != nil {
		panic(panicked)
	}
	return result, callErr
}

// ObserveErr 是 Observe 的无返回值版本。
func ObserveErr[T any](ctx context.Context, inst *Instance[T], name string, fn func(*T) error, args ...any) error {
	_, err := Observe(ctx, inst, name, func(v *T) (struct{}, error) {
		return struct{}{}, fn(v)
	}, args...)
	return err
}
