package xmonitor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Registry 记录所有已创建的监控器（每个被监控类型一个）。
//
// 只追加、不删除：被监控类型不支持解除监控。
// 所有方法可以从多个 goroutine 并发调用。
type Registry struct {
	mu      sync.RWMutex
	entries  []entry
	index    map[reflect.Type]int
	reserved map[reflect.Type]struct{}

	shutdownOnce sync.Once
	shutdownErr  error
	shutdown     bool
}

type entry struct {
	key     reflect.Type
	name    string
	monitor Monitor
}

// NewRegistry 创建独立的注册表，通常用于测试或隔离的子系统。
func NewRegistry() *Registry {
	return &Registry{index: make(map[reflect.Type]int)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default 返回进程级注册表。首次调用时创建。
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register 登记 key 类型的监控器。
//
// 同一 key 重复登记返回 ErrDuplicateMonitor，已登记的监控器不受影响。
func (r *Registry) Register(key reflect.Type, name string, m Monitor) error {
	if key == nil {
		return ErrNilType
	}
	if m == nil {
		return ErrNilMonitor
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(key) {
		return fmt.Errorf("%w: %s", ErrDuplicateMonitor, key)
	}
	r.add(key, name, m)
	return nil
}

// taken 报告 key 是否已登记或被预留。调用方持有写锁或读锁。
func (r *Registry) taken(key reflect.Type) bool {
	if _, ok := r.index[key]; ok {
		return true
	}
	_, ok := r.reserved[key]
	return ok
}

// add 追加登记项。调用方持有写锁。
func (r *Registry) add(key reflect.Type, name string, m Monitor) {
	if r.index == nil {
		r.index = make(map[reflect.Type]int)
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, entry{key: key, name: name, monitor: m})
}

// Reserve 为 key 预留登记位置，用于“先占位、再创建监控器”的两步登记。
//
// 并发的重复登记在创建监控器之前就会得到 ErrDuplicateMonitor，
// 不会出现创建后再被丢弃的监控器。返回的 Reservation 必须 Commit 或 Cancel。
func (r *Registry) Reserve(key reflect.Type, name string) (*Reservation, error) {
	if key == nil {
		return nil, ErrNilType
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(key) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateMonitor, name)
	}
	if r.reserved == nil {
		r.reserved = make(map[reflect.Type]struct{})
	}
	r.reserved[key] = struct{}{}
	return &Reservation{r: r, key: key, name: name}, nil
}

// Has 报告 key 是否已登记或被预留。
func (r *Registry) Has(key reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.taken(key)
}

// Lookup 返回 key 对应的监控器。
func (r *Registry) Lookup(key reflect.Type) (Monitor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.entries[i].monitor, true
}

// Len 返回已登记的监控器数量。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Monitors 按登记顺序返回监控器快照。
func (r *Registry) Monitors() []Monitor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Monitor, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.monitor
	}
	return out
}

// Each 按登记顺序遍历（快照），fn 返回 false 时停止。
func (r *Registry) Each(fn func(name string, m Monitor) bool) {
	r.mu.RLock()
	snapshot := append([]entry(nil), r.entries...)
	r.mu.RUnlock()
	for _, e := range snapshot {
		if !fn(e.name, e.monitor) {
			return
		}
	}
}

// Shutdown 对每个监控器调用一次 AtExit。
//
// 无论被调用多少次、来自多少个 goroutine（例如正常退出与信号处理重叠），
// AtExit 只会执行一轮；之后的调用直接返回第一轮的结果。
// 各监控器的错误通过 errors.Join 合并，AtExit 中的 panic 会被转换为错误，
// 不会阻止其余监控器刷新。
func (r *Registry) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.shutdownOnce.Do(func() {
		r.mu.Lock()
		r.shutdown = true
		snapshot := append([]entry(nil), r.entries...)
		r.mu.Unlock()

		var errs []error
		for _, e := range snapshot {
			if err := safeAtExit(ctx, e); err != nil {
				errs = append(errs, err)
			}
		}
		r.shutdownErr = errors.Join(errs...)
	})
	return r.shutdownErr
}

// Flushed 报告 Shutdown 是否已经执行。
func (r *Registry) Flushed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shutdown
}

// Reservation 是 Reserve 得到的登记位置。
type Reservation struct {
	r    *Registry
	key  reflect.Type
	name string
	done bool
}

// Commit 以 m 完成登记。m 为 nil 时返回 ErrNilMonitor，预留保持不变。
// 已 Commit 或 Cancel 后返回 ErrReservationDone。
func (res *Reservation) Commit(m Monitor) error {
	if m == nil {
		return ErrNilMonitor
	}
	r := res.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.done {
		return ErrReservationDone
	}
	res.done = true
	delete(r.reserved, res.key)
	r.add(res.key, res.name, m)
	return nil
}

// Cancel 释放未完成的预留。Commit 之后调用无效果，可以直接 defer。
func (res *Reservation) Cancel() {
	r := res.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.done {
		return
	}
	res.done = true
	delete(r.reserved, res.key)
}

func safeAtExit(ctx context.Context, e entry) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("xmonitor: %s atexit panic: %v", e.name, rec)
		}
	}()
	if err := e.monitor.AtExit(ctx); err != nil {
		return fmt.Errorf("xmonitor: %s atexit: %w", e.name, err)
	}
	return nil
}
