package xhook

import (
	"errors"
	"fmt"
)

// 配置错误：在 Wrap 时同步返回，不影响已包装的类型。
var (
	// ErrNilFactory 表示未提供监控器工厂。
	ErrNilFactory = errors.New("xhook: nil monitor factory")

	// ErrOperationNotFound 表示要拦截的操作不在类型的方法集中。
	ErrOperationNotFound = errors.New("xhook: operation not found")

	// ErrConstructorType 表示 WithConstructor 的构造函数与被包装类型不匹配。
	ErrConstructorType = errors.New("xhook: constructor does not match wrapped type")
)

// 调用期错误。
var (
	// ErrNilInstance 表示原始构造函数返回了 nil 且没有错误。
	ErrNilInstance = errors.New("xhook: constructor returned nil instance")

	// ErrReleased 表示实例已经释放（Close 或被回收）。
	ErrReleased = errors.New("xhook: instance released")

	// ErrInvalidArgument 表示调用参数与操作签名不匹配，原始操作未被调用。
	ErrInvalidArgument = errors.New("xhook: invalid argument")

	// ErrNotApplicable 表示接收者不包含被包装类型，无法委托原始方法。
	ErrNotApplicable = errors.New("xhook: receiver does not carry wrapped type")
)

// 回调阶段。
const (
	PhaseInit = "init"
	PhaseCall = "call"
)

// CallbackError 表示监控器自身的回调失败。
//
// OnInit 失败时构造整体失败；OnCall 失败时替代原始操作的成功结果。
// 原始操作自身的错误不会被包装为 CallbackError。
type CallbackError struct {
	// Phase 回调阶段：PhaseInit 或 PhaseCall。
	Phase string
	// Type 被监控类型名称。
	Type string
	// Operation 操作名称，PhaseInit 时为空。
	Operation string
	// Err 监控器返回的错误。
	Err error
}

// Error 实现 error 接口。
func (e *CallbackError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("xhook: %s monitor %s failed: %v", e.Type, e.Phase, e.Err)
	}
	return fmt.Sprintf("xhook: %s monitor %s %s failed: %v", e.Type, e.Phase, e.Operation, e.Err)
}

// Unwrap 返回监控器返回的错误。
func (e *CallbackError) Unwrap() error {
	return e.Err
}
