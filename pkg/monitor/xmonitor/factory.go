package xmonitor

import "sync/atomic"

// Factory 描述一种监控器类型。
//
// 每次 xhook.Wrap 恰好调用一次 NewMonitor，得到该被监控类型唯一的 Monitor。
type Factory interface {
	NewMonitor(info TypeInfo, cfg Config) (Monitor, error)
}

// OperationDeclarer 由声明了默认拦截操作的 Factory 实现。
// Wrap 未显式指定操作列表时使用这里的默认值。
type OperationDeclarer interface {
	DefaultOperations() []string
}

// FactoryFunc 将函数适配为 Factory。
type FactoryFunc func(info TypeInfo, cfg Config) (Monitor, error)

// NewMonitor 实现 Factory 接口。
func (f FactoryFunc) NewMonitor(info TypeInfo, cfg Config) (Monitor, error) {
	return f(info, cfg)
}

// Define 创建带默认拦截操作的 Factory。
//
// 示例：
//
//	var AuditFactory = xmonitor.Define(newAuditMonitor, "Save", "Delete")
func Define(fn FactoryFunc, defaultOps ...string) Factory {
	return &definedFactory{
		fn:  fn,
		ops: append([]string(nil), defaultOps...),
	}
}

type definedFactory struct {
	fn  FactoryFunc
	ops []string
}

func (f *definedFactory) NewMonitor(info TypeInfo, cfg Config) (Monitor, error) {
	if f.fn == nil {
		return nil, ErrNilMonitor
	}
	return f.fn(info, cfg)
}

// DefaultOperations 返回副本，调用方可安全修改。
func (f *definedFactory) DefaultOperations() []string {
	return append([]string(nil), f.ops...)
}

// Of 将一个已构造好的监控器包装为 Factory，适用于测试和简单场景。
//
// 返回的 Factory 只能被 Wrap 一次：同一 Monitor 不能服务两个类型。
func Of(m Monitor) Factory {
	var used atomic.Bool
	return FactoryFunc(func(TypeInfo, Config) (Monitor, error) {
		if !used.CompareAndSwap(false, true) {
			return nil, ErrDuplicateMonitor
		}
		if m == nil {
			return nil, ErrNilMonitor
		}
		return m, nil
	})
}
