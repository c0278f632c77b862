package xmonitor

import (
	"context"
	"reflect"
	"strconv"
	"sync"
	"time"
)

// InstanceID 是被监控实例在其类型内的唯一标识。
//
// 从 0 开始单调递增，实例销毁后也不会复用，是实例消失后唯一可用的句柄。
type InstanceID uint64

// String 返回十进制表示。
func (id InstanceID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Identified 由携带 InstanceID 的被监控实例实现。
type Identified interface {
	InstanceID() InstanceID
}

// Owned 由被监控实例实现，返回创建它的被监控类型的标识（与 TypeInfo.Owner 比较）。
//
// 同一个 T 可以在不同注册表中被包装多次，各次包装的实例具有相同的 Go 类型，
// 只能通过 Owner 区分。
type Owned interface {
	Owner() any
}

// TypeInfo 描述一个被监控类型。
type TypeInfo struct {
	// Name 被监控类型的展示名称。
	Name string
	// Original 原始类型（*T）。
	Original reflect.Type
	// Exact 被监控实例的精确动态类型（xhook 生成的包装类型）。
	// IsMonitoring 的默认实现以此做严格相等判断。
	Exact reflect.Type
	// Operations 被拦截的操作名称（不含构造）。
	Operations []string
	// Owner 被监控类型的唯一标识（可比较），每次包装不同。
	// 非 nil 时 IsMonitoring 的默认实现还要求候选值实现 Owned 且 Owner() 与之相等。
	Owner any
}

// CallEvent 描述一次被拦截操作的执行结果。
type CallEvent struct {
	// Instance 操作所在的被监控实例。
	Instance any
	// ID 实例标识。
	ID InstanceID
	// Operation 操作名称。
	Operation string
	// Results 原始操作的返回值（不含末尾的 error）。
	Results []any
	// Err 原始操作返回的错误，nil 表示成功。
	Err error
	// Panic 原始操作 panic 的值，nil 表示未 panic。
	// 回调结束后该值会被原样重新抛出。
	Panic any
	// Elapsed 仅覆盖原始操作本身的耗时，不含监控开销。
	Elapsed time.Duration
	// Args 调用参数（不含接收者）。
	Args []any
}

// Failed 报告操作是否以错误或 panic 结束。
func (e CallEvent) Failed() bool {
	return e.Err != nil || e.Panic != nil
}

// Monitor 对象监控器契约。
//
// 所有回调可能在任意 goroutine 上执行，不同实例之间的回调可能并发，
// 跨实例共享的状态需要自行加锁。对同一实例：
// OnInit 先于所有 OnCall，OnCall 先于 OnDestroy。
type Monitor interface {
	// OnInit 在原始构造完成后、构造调用返回前调用。
	// 返回错误会导致整个构造失败。
	OnInit(ctx context.Context, instance any, id InstanceID) error

	// OnCall 在每次被拦截操作完成后调用一次。
	// 返回的错误会替代原操作的成功结果，正常情况下不应返回错误。
	OnCall(ctx context.Context, ev CallEvent) error

	// OnDestroy 在实例被释放后调用一次。实例本身已不可用，
	// 需要的上下文必须提前按 id 保存。
	OnDestroy(id InstanceID)

	// IsMonitoring 判断候选值是否属于本监控器负责的类型。
	IsMonitoring(candidate any) bool

	// AtExit 由关闭协作方在进程退出前调用，用于刷新状态。
	// 异常终止时不保证调用。
	AtExit(ctx context.Context) error
}

// Binder 由需要知道被监控类型信息的监控器实现。
// xhook 在监控器创建后、首次使用前调用 Bind。
type Binder interface {
	Bind(info TypeInfo)
}

// 编译时接口检查
var (
	_ Monitor = (*Base)(nil)
	_ Binder  = (*Base)(nil)
)

// Base 提供 Monitor 的默认实现：回调均为空操作，
// IsMonitoring 按精确类型匹配。
//
// 具体监控器嵌入 Base 并覆盖需要的回调。
type Base struct {
	mu   sync.RWMutex
	info TypeInfo
}

// Bind 绑定被监控类型信息。
func (b *Base) Bind(info TypeInfo) {
	b.mu.Lock()
	b.info = info
	b.mu.Unlock()
}

// Info 返回绑定的类型信息；未绑定时返回零值。
func (b *Base) Info() TypeInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

// OnInit 空实现。
func (b *Base) OnInit(context.Context, any, InstanceID) error { return nil }

// OnCall 空实现。
func (b *Base) OnCall(context.Context, CallEvent) error { return nil }

// OnDestroy 空实现。
func (b *Base) OnDestroy(InstanceID) {}

// AtExit 空实现。
func (b *Base) AtExit(context.Context) error { return nil }

// IsMonitoring 当且仅当 candidate 的动态类型与绑定的精确类型严格相等，
// 且（绑定了 Owner 时）candidate 由同一次包装创建时返回 true。
// 未绑定时总是返回 false。
func (b *Base) IsMonitoring(candidate any) bool {
	if candidate == nil {
		return false
	}
	b.mu.RLock()
	exact, owner := b.info.Exact, b.info.Owner
	b.mu.RUnlock()
	if exact == nil || reflect.TypeOf(candidate) != exact {
		return false
	}
	if owner == nil {
		return true
	}
	o, ok := candidate.(Owned)
	return ok && o.Owner() == owner
}
