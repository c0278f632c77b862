// Package xotelmon 提供基于 OpenTelemetry 的对象监控器。
//
// 每个被监控类型得到一组实例指标：
//
//   - xobjmon.instance.created  创建的实例数（Counter）
//   - xobjmon.instance.live     存活实例数（UpDownCounter）
//   - xobjmon.instance.lifetime 实例存活时长，单位秒（Histogram）
//
// 所有指标都带 type 属性。每次被拦截的调用通过 xmetrics.Observer 产生一个跨度，
// 跨度的开始时间回溯到原始操作开始的时刻，耗时只包含原始操作本身。
// 调用是否产生跨度由 xsampling 采样器决定（参数 sample.*）。
//
//	factory := xotelmon.NewFactory(
//	    xotelmon.WithMeterProvider(mp),
//	    xotelmon.WithTracerProvider(tp),
//	)
//	accounts, err := xhook.Wrap[Account](factory, xhook.WithOperations("Deposit"))
package xotelmon
