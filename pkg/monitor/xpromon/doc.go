// Package xpromon 提供基于 Prometheus 的对象监控器。
//
// 一个 Factory 持有一组按 type 标签区分的指标，可服务多个被监控类型：
//
//   - xobjmon_instances_created_total{type}
//   - xobjmon_instances_live{type}
//   - xobjmon_instances_destroyed_total{type}
//   - xobjmon_calls_total{type,operation,status}
//   - xobjmon_call_duration_seconds{type,operation}
//
// 指标注册到调用方提供的 prometheus.Registerer 上，
// 通常由 promhttp.HandlerFor 暴露：
//
//	reg := prometheus.NewRegistry()
//	factory, err := xpromon.NewFactory(reg)
//	if err != nil {
//	    return err
//	}
//	accounts, err := xhook.Wrap[Account](factory, xhook.WithOperations("Deposit"))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package xpromon
