// Package xrun 是监控器的关闭协作方：运行宿主服务、监听终止信号，
// 并在进程退出前对注册表中的每个监控器恰好执行一次 AtExit。
//
// # 概述
//
// 被监控类型的监控器可能缓存了尚未输出的状态（日志摘要、指标批次）。
// xrun 保证无论进程因服务结束、服务出错还是收到信号而退出，
// 都会在退出前调用一次 [xmonitor.Registry.Shutdown]。
//
//	err := xrun.Run(ctx, xmonitor.Default(), func(ctx context.Context) error {
//	    return serve(ctx)
//	})
//
// 正常退出与信号处理重叠时，Registry.Shutdown 内部的 sync.Once 保证只刷新一轮。
//
// # 信号
//
// 默认监听 SIGHUP、SIGINT、SIGTERM、SIGQUIT。收到信号后取消所有服务，
// 刷新监控器，然后恢复该信号的默认处理并重新发送给本进程，
// 让进程以信号原本的方式结束（退出码与未安装处理器时一致）。
// 通过 WithRedeliver(false) 关闭重新发送，此时 Run 返回 *SignalError。
//
// 异常终止（SIGKILL、运行时崩溃）不保证刷新。
//
// # 自行管理退出
//
// 不使用 Run 的宿主可以在退出路径上直接调用 [Flush]：
//
//	defer xrun.Flush(context.Background(), xmonitor.Default(), 5*time.Second)
//
// # Group
//
// [Group] 基于 [errgroup] 管理多个服务的并发运行。任一服务返回错误时，
// 其余服务通过 context 收到取消。Wait 会保留 Cancel(cause) 设置的退出原因。
//
// [errgroup]: https://pkg.go.dev/golang.org/x/sync/errgroup
package xrun
