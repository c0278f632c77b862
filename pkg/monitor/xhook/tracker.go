package xhook

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// State 是实例 id 的生命周期状态：UNASSIGNED → INITIALISED → DESTROYED。
type State int32

const (
	// StateUnassigned 尚未完成初始化（或初始化失败）。
	StateUnassigned State = iota
	// StateInitialised OnInit 已成功返回。
	StateInitialised
	// StateDestroyed OnDestroy 已触发。
	StateDestroyed
)

// String 返回状态名称。
func (s State) String() string {
	switch s {
	case StateUnassigned:
		return "unassigned"
	case StateInitialised:
		return "initialised"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// tracker 持有某个被监控类型的活跃终结句柄集合。
// 它不引用任何实例，只引用监控器和计数器。
type tracker struct {
	typeName string
	monitor  xmonitor.Monitor
	logger   *slog.Logger

	mu     sync.Mutex
	active map[xmonitor.InstanceID]*handle

	// initialised 处于 INITIALISED 的句柄数。active 还包含 OnInit 尚未返回的句柄。
	initialised atomic.Int64
	destroyed   atomic.Uint64
}

func newTracker(typeName string, m xmonitor.Monitor, logger *slog.Logger) *tracker {
	return &tracker{
		typeName: typeName,
		monitor:  m,
		logger:   logger,
		active:   make(map[xmonitor.InstanceID]*handle),
	}
}

// arm 为新 id 创建句柄并加入活跃集合。
func (tr *tracker) arm(id xmonitor.InstanceID) *handle {
	h := &handle{tr: tr, id: id}
	tr.mu.Lock()
	tr.active[id] = h
	tr.mu.Unlock()
	return h
}

func (tr *tracker) remove(id xmonitor.InstanceID) {
	tr.mu.Lock()
	delete(tr.active, id)
	tr.mu.Unlock()
}

// live 返回已初始化且尚未销毁的实例数。
func (tr *tracker) live() int {
	return int(tr.initialised.Load())
}

// handle 是一个实例的终结句柄：只记录 (tracker, id)，不引用实例本身，
// 因此可以作为 runtime.AddCleanup 的参数。
//
// 同一实例的 Invoke 通过 enter/exit 登记在途调用；release 在仍有在途调用时
// 只标记 releasing，由最后一个退出的调用触发 OnDestroy，
// 从而保证 OnDestroy 晚于该实例的所有 OnCall，且在操作内部释放自身不会死锁。
type handle struct {
	tr *tracker
	id xmonitor.InstanceID

	mu        sync.Mutex
	state     State
	inflight  int
	releasing bool
}

// activate 在 OnInit 成功后进入 INITIALISED。
func (h *handle) activate() {
	h.mu.Lock()
	h.state = StateInitialised
	h.tr.initialised.Add(1)
	h.mu.Unlock()
}

// disarm 在初始化失败时移除句柄，不触发 OnDestroy。
func (h *handle) disarm() {
	h.mu.Lock()
	h.releasing = true
	h.mu.Unlock()
	h.tr.remove(h.id)
}

// State 返回当前状态。
func (h *handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// enter 登记一次在途调用。实例已释放或正在释放时返回 false。
func (h *handle) enter() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateInitialised || h.releasing {
		return false
	}
	h.inflight++
	return true
}

// exit 结束一次在途调用；若期间已请求释放且这是最后一个调用，则触发销毁。
func (h *handle) exit() {
	h.mu.Lock()
	h.inflight--
	fire := h.releasing && h.inflight == 0 && h.state == StateInitialised
	if fire {
		h.state = StateDestroyed
	}
	h.mu.Unlock()
	if fire {
		h.fire()
	}
}

// release 请求释放。只有第一次请求生效，返回是否为第一次。
func (h *handle) release() bool {
	h.mu.Lock()
	if h.state != StateInitialised || h.releasing {
		h.mu.Unlock()
		return false
	}
	h.releasing = true
	fire := h.inflight == 0
	if fire {
		h.state = StateDestroyed
	}
	h.mu.Unlock()
	if fire {
		h.fire()
	}
	return true
}

// fire 从活跃集合移除句柄并回调 OnDestroy。
// 可能运行在运行时的清理 goroutine 上，监控器 panic 会被记录而不会扩散。
func (h *handle) fire() {
	tr := h.tr
	tr.remove(h.id)
	tr.initialised.Add(-1)
	tr.destroyed.Add(1)
	defer func() {
		if r := recover(); r != nil {
			tr.logger.Warn("monitor on_destroy panic",
				slog.String("type", tr.typeName),
				slog.Uint64("id", uint64(h.id)),
				slog.Any("panic", r),
			)
		}
	}()
	tr.monitor.OnDestroy(h.id)
	tr.logger.Debug("instance destroyed",
		slog.String("type", tr.typeName),
		slog.Uint64("id", uint64(h.id)),
	)
}

// collect 是 runtime.AddCleanup 的回调。
func collect(h *handle) {
	h.release()
}
