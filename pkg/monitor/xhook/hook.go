package xhook

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// Type 是被监控类型：原始类型 T 加上构造/操作拦截和唯一的监控器。
//
// Type 创建后在进程生命周期内有效，不支持解除监控。
// 所有方法可以从多个 goroutine 并发调用。
type Type[T any] struct {
	info    xmonitor.TypeInfo
	ctor    Constructor[T]
	monitor xmonitor.Monitor
	ops     map[string]*Operation
	order   []string
	logger  *slog.Logger

	collector bool
	counter   atomic.Uint64
	tracker   *tracker
}

// Stats 是被监控类型的实例计数快照。
type Stats struct {
	Name    string
	Created uint64
	// Live 已完成 OnInit 且尚未销毁的实例数，不含正在构造的实例。
	Live      int
	Destroyed uint64
}

// Wrap 将 T 纳入监控，返回被监控类型。
//
// 操作列表优先取 WithOperations；未设置时取工厂的 DefaultOperations；
// 两者都没有时只监控构造和销毁。
//
// 以下情况返回配置错误，且不会创建或登记监控器：
//   - factory 为 nil（ErrNilFactory）
//   - 操作不在 *T 的方法集中（ErrOperationNotFound）
//   - T 已在同一注册表中被监控或正在被并发 Wrap（xmonitor.ErrDuplicateMonitor）
//   - WithConstructor 的类型与 T 不一致（ErrConstructorType）
//
// 成功时恰好创建一个监控器并登记到注册表。
// 监控器只认本次返回的 Type 创建的实例（TypeInfo.Owner），
// 同一 T 在其他注册表中的包装互不干扰。
func Wrap[T any](factory xmonitor.Factory, opts ...Option) (*Type[T], error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	registry := o.registry
	if registry == nil {
		registry = xmonitor.Default()
	}

	original := reflect.TypeFor[*T]()
	name := o.name
	if name == "" {
		name = original.Elem().String()
	}

	ctor, err := resolveConstructor[T](o.ctor)
	if err != nil {
		return nil, err
	}

	names := o.ops
	if !o.opsSet {
		if d, ok := factory.(xmonitor.OperationDeclarer); ok {
			names = d.DefaultOperations()
		}
	}
	names = dedupe(names)

	ops := make(map[string]*Operation, len(names))
	for _, n := range names {
		op, err := resolveOperation(original, n)
		if err != nil {
			return nil, err
		}
		ops[n] = op
	}

	// 先占位再创建监控器：并发的重复 Wrap 不会创建随后被丢弃的监控器。
	res, err := registry.Reserve(original, name)
	if err != nil {
		return nil, err
	}
	defer res.Cancel()

	cfg := o.cfg
	if o.cfgValues != nil {
		if cfg, err = xmonitor.NewConfig(o.cfgValues); err != nil {
			return nil, err
		}
	}

	t := &Type[T]{
		ctor:      ctor,
		ops:       ops,
		order:     names,
		logger:    o.logger,
		collector: !o.noCollector,
	}
	info := xmonitor.TypeInfo{
		Name:       name,
		Original:   original,
		Exact:      reflect.TypeFor[*Instance[T]](),
		Operations: slices.Clone(names),
		Owner:      t,
	}
	m, err := factory.NewMonitor(info, cfg)
	if err != nil {
		return nil, fmt.Errorf("xhook: create monitor for %s: %w", name, err)
	}
	if m == nil {
		return nil, xmonitor.ErrNilMonitor
	}
	if b, ok := m.(xmonitor.Binder); ok {
		b.Bind(info)
	}
	if err := res.Commit(m); err != nil {
		return nil, err
	}

	t.info = info
	t.monitor = m
	t.tracker = newTracker(name, m, o.logger)
	o.logger.Debug("type wrapped",
		slog.String("type", name),
		slog.Any("operations", names),
	)
	return t, nil
}

// MustWrap 与 Wrap 相同，但失败时 panic。适用于包级变量初始化。
func MustWrap[T any](factory xmonitor.Factory, opts ...Option) *Type[T] {
	t, err := Wrap[T](factory, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func resolveConstructor[T any](raw any) (Constructor[T], error) {
	if raw == nil {
		return func(context.Context, ...any) (*T, error) { return new(T), nil }, nil
	}
	ctor, ok := raw.(Constructor[T])
	if !ok {
		return nil, fmt.Errorf("%w: got %T, want %T", ErrConstructorType, raw, Constructor[T](nil))
	}
	return ctor, nil
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// New 构造一个被监控实例。
//
// 顺序：原始构造 → 分配 id → 登记终结句柄 → OnInit。
// 原始构造失败时原样返回错误，不触发任何回调。
// OnInit 失败时构造失败（*CallbackError），该 id 不会再触发 OnDestroy，也不会被复用。
func (t *Type[T]) New(ctx context.Context, args ...any) (*Instance[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	value, err := t.ctor(ctx, args...)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, ErrNilInstance
	}

	id := xmonitor.InstanceID(t.counter.Add(1) - 1)
	inst := &Instance[T]{typ: t, value: value, id: id}
	inst.h = t.tracker.arm(id)

	if err := t.initInstance(ctx, inst); err != nil {
		return nil, err
	}
	inst.h.activate()
	if t.collector {
		inst.cleanup = runtime.AddCleanup(inst, collect, inst.h)
	}
	t.logger.Debug("instance initialised",
		slog.String("type", t.info.Name),
		slog.Uint64("id", uint64(id)),
	)
	return inst, nil
}

// initInstance 调用 OnInit；失败或 panic 时撤销句柄。
func (t *Type[T]) initInstance(ctx context.Context, inst *Instance[T]) error {
	ok := false
	defer func() {
		if !ok {
			inst.h.disarm()
		}
	}()
	if err := t.monitor.OnInit(ctx, inst, inst.id); err != nil {
		return &CallbackError{Phase: PhaseInit, Type: t.info.Name, Err: err}
	}
	ok = true
	return nil
}

// Invoke 在任意接收者上按名称调用操作。
//
// recv 是本类型的实例时等价于 recv.Invoke。否则不触发任何回调，
// 直接在 recv 中定位 T（recv 本身是 *T，或通过嵌入字段携带 T）并执行 T 的原始方法。
func (t *Type[T]) Invoke(ctx context.Context, recv any, name string, args ...any) ([]any, error) {
	if inst, ok := recv.(*Instance[T]); ok && inst.typ == t {
		return inst.Invoke(ctx, name, args...)
	}
	target, ok := locate[T](recv)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotApplicable, recv)
	}
	return t.callOriginal(target, name, args)
}

// callOriginal 按 T 自身的定义执行原始方法，不做监控。
func (t *Type[T]) callOriginal(target *T, name string, args []any) ([]any, error) {
	op, ok := t.ops[name]
	if !ok {
		var err error
		if op, err = resolveOperation(reflect.TypeFor[*T](), name); err != nil {
			return nil, err
		}
	}
	in, err := prepareArgs(reflect.ValueOf(target), op.method.Type, name, args)
	if err != nil {
		return nil, err
	}
	return splitResults(op.method.Func.Call(in), op.returnsErr)
}

// locate 在 recv 中查找 *T：recv 本身、其他被监控实例的底层值、或嵌入字段。
func locate[T any](recv any) (*T, bool) {
	if u, ok := recv.(underlier); ok {
		recv = u.underlying()
	}
	if p, ok := recv.(*T); ok {
		return p, p != nil
	}
	v := reflect.ValueOf(recv)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, false
	}
	return findEmbedded[T](v.Elem())
}

// findEmbedded 广度优先查找嵌入的 T 或 *T。
func findEmbedded[T any](v reflect.Value) (*T, bool) {
	want := reflect.TypeFor[T]()
	queue := []reflect.Value{v}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		ct := cur.Type()
		for i := range ct.NumField() {
			f := ct.Field(i)
			if !f.Anonymous {
				continue
			}
			fv := cur.Field(i)
			if !fv.CanInterface() {
				continue
			}
			switch {
			case f.Type == want && fv.CanAddr():
				return fv.Addr().Interface().(*T), true
			case f.Type == reflect.PointerTo(want) && !fv.IsNil():
				return fv.Interface().(*T), true
			case f.Type.Kind() == reflect.Struct:
				queue = append(queue, fv)
			case f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct && !fv.IsNil():
				queue = append(queue, fv.Elem())
			}
		}
	}
	return nil, false
}

// Name 返回类型名称。
func (t *Type[T]) Name() string { return t.info.Name }

// Info 返回类型信息。
func (t *Type[T]) Info() xmonitor.TypeInfo { return t.info }

// Monitor 返回该类型唯一的监控器。
func (t *Type[T]) Monitor() xmonitor.Monitor { return t.monitor }

// Operations 按声明顺序返回被拦截的操作。
func (t *Type[T]) Operations() []Operation {
	out := make([]Operation, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, *t.ops[n])
	}
	return out
}

// Intercepts 报告 name 是否被拦截。
func (t *Type[T]) Intercepts(name string) bool {
	_, ok := t.ops[name]
	return ok
}

// Stats 返回实例计数快照。
func (t *Type[T]) Stats() Stats {
	return Stats{
		Name:      t.info.Name,
		Created:   t.counter.Load(),
		Live:      t.tracker.live(),
		Destroyed: t.tracker.destroyed.Load(),
	}
}
