package xmonitortest

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// 实例状态。
const (
	StateInitialised = "initialised"
	StateDestroyed   = "destroyed"
)

// Recorder 记录所有回调的监控器。并发安全。
type Recorder struct {
	xmonitor.Base

	// InitErr 非 nil 时 OnInit 返回该错误。
	InitErr error
	// CallErr 非 nil 时 OnCall 返回该错误。
	CallErr error
	// AtExitErr 非 nil 时 AtExit 返回该错误。
	AtExitErr error

	mu         sync.Mutex
	states     map[xmonitor.InstanceID]string
	calls      []xmonitor.CallEvent
	atExits    int
	violations []error
}

// NewRecorder 创建 Recorder。
func NewRecorder() *Recorder {
	return &Recorder{states: make(map[xmonitor.InstanceID]string)}
}

// OnInit 记录 initialised 状态。
func (r *Recorder) OnInit(_ context.Context, instance any, id xmonitor.InstanceID) error {
	if r.InitErr != nil {
		return r.InitErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.IsMonitoring(instance) {
		err := fmt.Errorf("instance of %T passed to %s monitor", instance, r.Info().Name)
		r.violations = append(r.violations, err)
		return err
	}
	if _, ok := r.states[id]; ok {
		err := fmt.Errorf("multiple inits on instance %d of %s", id, r.Info().Name)
		r.violations = append(r.violations, err)
		return err
	}
	if r.states == nil {
		r.states = make(map[xmonitor.InstanceID]string)
	}
	r.states[id] = StateInitialised
	return nil
}

// OnCall 记录调用事件。
func (r *Recorder) OnCall(_ context.Context, ev xmonitor.CallEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states[ev.ID] != StateInitialised {
		r.violations = append(r.violations,
			fmt.Errorf("call %s on instance %d in state %q", ev.Operation, ev.ID, r.states[ev.ID]))
	}
	r.calls = append(r.calls, ev)
	return r.CallErr
}

// OnDestroy 记录 destroyed 状态。
func (r *Recorder) OnDestroy(id xmonitor.InstanceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.states[id] {
	case "":
		r.violations = append(r.violations, fmt.Errorf("destroy of uninitialised instance %d", id))
	case StateDestroyed:
		r.violations = append(r.violations, fmt.Errorf("instance %d destroyed twice", id))
	}
	r.states[id] = StateDestroyed
}

// AtExit 记录调用次数。
func (r *Recorder) AtExit(context.Context) error {
	r.mu.Lock()
	r.atExits++
	r.mu.Unlock()
	return r.AtExitErr
}

// State 返回 id 的状态，未知 id 返回空串。
func (r *Recorder) State(id xmonitor.InstanceID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[id]
}

// States 返回状态快照。
func (r *Recorder) States() map[xmonitor.InstanceID]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.states)
}

// Count 返回处于 state 的实例数。
func (r *Recorder) Count(state string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.states {
		if s == state {
			n++
		}
	}
	return n
}

// Calls 返回调用事件快照。
func (r *Recorder) Calls() []xmonitor.CallEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]xmonitor.CallEvent(nil), r.calls...)
}

// AtExits 返回 AtExit 被调用的次数。
func (r *Recorder) AtExits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.atExits
}

// Violations 返回记录到的生命周期违规。
func (r *Recorder) Violations() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.violations...)
}
