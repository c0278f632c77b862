package xmonitor

import "errors"

// 注册表相关错误。
var (
	// ErrDuplicateMonitor 表示同一原始类型已经登记过监控器。
	// 需要多个监控逻辑时，应组合到同一个 Monitor 中。
	ErrDuplicateMonitor = errors.New("xmonitor: type already monitored")

	// ErrNilMonitor 表示登记或创建了 nil 监控器。
	ErrNilMonitor = errors.New("xmonitor: nil monitor")

	// ErrNilType 表示登记时未提供类型键。
	ErrNilType = errors.New("xmonitor: nil type key")

	// ErrReservationDone 表示预留已经 Commit 或 Cancel。
	ErrReservationDone = errors.New("xmonitor: reservation already completed")
)

// 实例元数据访问相关错误。
var (
	// ErrInconsistentInstance 表示同时传入的实例与 id 指向不同对象。
	ErrInconsistentInstance = errors.New("xmonitor: instance and id refer to different objects")

	// ErrEmptyRef 表示 Ref 既没有实例也没有 id。
	ErrEmptyRef = errors.New("xmonitor: empty instance reference")

	// ErrNotIdentified 表示传入的实例没有分配 InstanceID（不是被监控实例）。
	ErrNotIdentified = errors.New("xmonitor: instance carries no monitor id")
)

// ErrConfig 表示监控器参数解析失败。
var ErrConfig = errors.New("xmonitor: invalid monitor config")
