// Package xmonitor 定义对象监控器契约、进程级监控器注册表和带实例元数据的监控器基类。
//
// # 概述
//
// 监控器（Monitor）接收被监控类型的生命周期事件：
//   - OnInit：实例构造完成、返回给调用方之前
//   - OnCall：被拦截的操作执行完成之后（无论成功或失败）
//   - OnDestroy：实例被释放之后（实例本身已不可用，只传 id）
//   - AtExit：进程退出前由关闭协作方（见 xrun）调用，用于刷新数据
//
// 每个被监控类型恰好对应一个 Monitor 实例，由 [Factory] 在 xhook.Wrap 时创建，
// 并登记到 [Registry]。
//
// # 快速开始
//
//	type counter struct {
//	    xmonitor.Base
//	    inits atomic.Int64
//	}
//
//	func (c *counter) OnInit(ctx context.Context, instance any, id xmonitor.InstanceID) error {
//	    c.inits.Add(1)
//	    return nil
//	}
//
//	factory := xmonitor.Define(func(xmonitor.TypeInfo, xmonitor.Config) (xmonitor.Monitor, error) {
//	    return &counter{}, nil
//	}, "Save", "Load")
//
// # 精确类型匹配
//
// [Base.IsMonitoring] 仅在候选值的动态类型与被监控类型（xhook 生成的实例包装类型）
// 严格相等、且由同一次包装创建（[TypeInfo].Owner）时返回 true。
// 嵌入了原始类型的其他类型不会被视为被监控对象，除非它们被单独 Wrap；
// 同一类型在另一个注册表中的包装也不会。
//
// # 实例元数据
//
// [Stateful] 维护 InstanceID → 元数据 的映射，元数据由注册函数在 OnInit 时生成。
// 元数据在 OnDestroy 后不会自动删除；需要有界内存的监控器应在自己的 OnDestroy 中
// 调用 [Stateful.DeleteInstanceData]。
//
// # 回调约束
//
// OnCall/OnDestroy 在正常情况下不应返回错误或 panic：OnCall 的错误会替代被监控
// 操作的成功结果返回给调用方，改变被监控类型的外部行为。
package xmonitor
