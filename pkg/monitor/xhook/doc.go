// Package xhook 是对象监控的拦截引擎：把一个 Go 类型的构造和选定操作包装为
// 可观测版本，并把生命周期事件投递给 xmonitor.Monitor。
//
// # 概述
//
// xhook 通过组合实现拦截：[Wrap] 为原始类型 T 生成 [Type]，[Type.New] 构造出
// [Instance]，它持有原始 *T、实例 id 和一个不持有实例的终结句柄。
// 调用方通过 [Instance.Invoke]（按名称、反射分派）或 [Observe]（强类型）调用操作，
// 被拦截的操作会计时并回调 OnCall；其余操作直接执行原始方法。
//
//	type Account struct{ balance int }
//
//	func (a *Account) Deposit(n int) (int, error) { ... }
//
//	accounts, err := xhook.Wrap[Account](auditFactory,
//	    xhook.WithOperations("Deposit"),
//	)
//	acc, err := accounts.New(ctx)
//	defer acc.Close()
//
//	out, err := acc.Invoke(ctx, "Deposit", 100)
//
// # 销毁检测
//
// 实例有两条销毁路径，OnDestroy 只会触发一次：
//   - Close：确定性释放，在最后一个持有者调用 Close 时立即触发；
//   - 回收兜底：未 Close 的实例在被运行时回收后，由 runtime.AddCleanup 触发。
//     该回调运行在运行时的清理 goroutine 上，时间不确定。
//
// 终结句柄只记录 (类型, id)，不引用实例，因此不会影响实例的可回收性。
//
// # 精确类型
//
// 监控只针对被 Wrap 的精确类型：嵌入了 T 的其他类型不会触发 T 的监控器，
// 它们通过 [Type.Invoke] 调用时会直接执行 T 的原始方法。嵌入类型单独 Wrap 后，
// 只会触发它自己的监控器。
//
// 从嵌入字段提升而来的方法同样可以被拦截：调用经由 *T 自身的方法集进行，
// 不会影响嵌入类型本身或共享该嵌入类型的其他类型。
//
// # 错误
//
// 原始操作返回的 error 原样返回（同一个值），panic 在回调后以原值重新抛出。
// 监控器回调失败时返回 [*CallbackError]，与原始操作的错误可区分。
package xhook
