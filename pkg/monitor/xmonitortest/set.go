package xmonitortest

import (
	"fmt"
	"sync"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// Set 按被监控类型名称管理 Recorder。
type Set struct {
	mu     sync.Mutex
	byName map[string]*Recorder
}

// NewSet 创建空的 Set。
func NewSet() *Set {
	return &Set{byName: make(map[string]*Recorder)}
}

// Factory 返回每次 Wrap 创建一个新 Recorder 的工厂。
// 同名类型被监控两次时返回错误。
func (s *Set) Factory(defaultOps ...string) xmonitor.Factory {
	return xmonitor.Define(func(info xmonitor.TypeInfo, _ xmonitor.Config) (xmonitor.Monitor, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.byName[info.Name]; ok {
			return nil, fmt.Errorf("type %s monitored more than once", info.Name)
		}
		r := NewRecorder()
		s.byName[info.Name] = r
		return r, nil
	}, defaultOps...)
}

// Monitored 报告 name 是否已被监控。
func (s *Set) Monitored(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byName[name]
	return ok
}

// Get 返回 name 对应的 Recorder，不存在时返回 nil。
func (s *Set) Get(name string) *Recorder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byName[name]
}

// States 返回 name 对应的实例状态，未监控时返回空映射。
func (s *Set) States(name string) map[xmonitor.InstanceID]string {
	if r := s.Get(name); r != nil {
		return r.States()
	}
	return map[xmonitor.InstanceID]string{}
}
