// Package xmetrics 提供被监控操作的观测接口（metrics + tracing）。
//
// 监控器只依赖 Observer/Span/Attr；默认实现基于 OpenTelemetry。
//
//	obs, _ := xmetrics.NewOTelObserver(xmetrics.WithMeterProvider(mp))
//	_, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "Account",
//		Operation: "Deposit",
//		Start:     time.Now().Add(-ev.Elapsed),
//	})
//	span.End(xmetrics.Result{Err: ev.Err, Elapsed: ev.Elapsed})
//
// 操作在观测开始前就已经完成时（例如在 OnCall 中上报），
// 通过 SpanOptions.Start 回填开始时间，Result.Elapsed 给出原始操作耗时，
// 使跨度和直方图都不包含监控自身的开销。
//
// # 指标命名
//
//   - xobjmon.call.total
//   - xobjmon.call.duration（秒）
//
// 统一属性：component / operation / status。
package xmetrics
