package xmonitor

import (
	"context"
	"sync"
)

// RegisterFunc 在实例构造时生成该实例的初始元数据。
type RegisterFunc[M any] func(instance any, id InstanceID) (M, error)

// Ref 指向一个被监控实例，可以通过实例、id 或两者同时指定。
//
// 使用 [ByID]、[ByInstance]、[ByInstanceID] 构造。
type Ref struct {
	instance any
	id       InstanceID
	hasID    bool
}

// ByID 按 id 引用实例。
func ByID(id InstanceID) Ref {
	return Ref{id: id, hasID: true}
}

// ByInstance 按存活实例引用，id 从实例上读取。
func ByInstance(instance any) Ref {
	return Ref{instance: instance}
}

// ByInstanceID 同时指定实例和 id；两者不一致时访问会返回 ErrInconsistentInstance。
func ByInstanceID(instance any, id InstanceID) Ref {
	return Ref{instance: instance, id: id, hasID: true}
}

// resolve 解析出最终 id 并校验一致性。
func (r Ref) resolve() (InstanceID, error) {
	if r.instance == nil {
		if !r.hasID {
			return 0, ErrEmptyRef
		}
		return r.id, nil
	}
	ided, ok := r.instance.(Identified)
	if !ok {
		return 0, ErrNotIdentified
	}
	live := ided.InstanceID()
	if r.hasID && live != r.id {
		return 0, ErrInconsistentInstance
	}
	return live, nil
}

// Stateful 是维护实例元数据的监控器基类。
//
// 元数据由 RegisterFunc 在 OnInit 中生成并保存，之后可通过
// GetInstanceData/SetInstanceData/Update 读写。映射在同一类型的所有实例之间共享，
// 所有访问都经过互斥锁。
//
// 元数据不会在 OnDestroy 时自动删除。需要有界内存的监控器应覆盖 OnDestroy
// 并调用 DeleteInstanceData。
type Stateful[M any] struct {
	Base

	register RegisterFunc[M]

	mu   sync.RWMutex
	data map[InstanceID]M
}

// NewStateful 创建 Stateful。register 为 nil 时为每个实例保存 M 的零值。
func NewStateful[M any](register RegisterFunc[M]) *Stateful[M] {
	return &Stateful[M]{
		register: register,
		data:     make(map[InstanceID]M),
	}
}

// OnInit 调用 RegisterFunc 生成元数据并保存。RegisterFunc 的错误会使构造失败。
func (s *Stateful[M]) OnInit(_ context.Context, instance any, id InstanceID) error {
	var data M
	if s.register != nil {
		var err error
		data, err = s.register(instance, id)
		if err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.ensure()
	s.data[id] = data
	s.mu.Unlock()
	return nil
}

// GetInstanceData 返回实例元数据。
//
// 没有对应条目时返回 (零值, false, nil)，不视为错误。
// 实例与 id 不一致时返回 ErrInconsistentInstance。
func (s *Stateful[M]) GetInstanceData(ref Ref) (M, bool, error) {
	var zero M
	id, err := ref.resolve()
	if err != nil {
		return zero, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[id]
	return data, ok, nil
}

// SetInstanceData 覆盖实例元数据，解析与一致性规则同 GetInstanceData。
func (s *Stateful[M]) SetInstanceData(ref Ref, data M) error {
	id, err := ref.resolve()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ensure()
	s.data[id] = data
	s.mu.Unlock()
	return nil
}

// Update 在写锁内执行读-改-写。fn 收到当前值及是否存在，返回新值。
//
// fn 内不得再调用本 Stateful 的任何方法，否则会死锁。
func (s *Stateful[M]) Update(ref Ref, fn func(current M, ok bool) M) error {
	id, err := ref.resolve()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	current, ok := s.data[id]
	s.data[id] = fn(current, ok)
	return nil
}

// DeleteInstanceData 删除实例元数据，返回是否存在。
func (s *Stateful[M]) DeleteInstanceData(id InstanceID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[id]
	delete(s.data, id)
	return ok
}

// Len 返回当前保存的条目数。
func (s *Stateful[M]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Range 按任意顺序遍历元数据快照，fn 返回 false 时停止。
func (s *Stateful[M]) Range(fn func(id InstanceID, data M) bool) {
	s.mu.RLock()
	snapshot := make(map[InstanceID]M, len(s.data))
	for id, d := range s.data {
		snapshot[id] = d
	}
	s.mu.RUnlock()
	for id, d := range snapshot {
		if !fn(id, d) {
			return
		}
	}
}

// ensure 兼容零值 Stateful（嵌入时未经 NewStateful 初始化）。调用方需持有写锁。
func (s *Stateful[M]) ensure() {
	if s.data == nil {
		s.data = make(map[InstanceID]M)
	}
}
