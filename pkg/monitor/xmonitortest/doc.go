// Package xmonitortest 提供用于测试的记录型监控器。
//
// [Recorder] 按 id 记录实例状态（initialised/destroyed）和所有调用事件，
// 并在违反生命周期顺序时记录违规（重复初始化、未初始化就销毁、重复销毁）。
// [Set] 按类型名称管理多个 Recorder，每次 Wrap 创建一个。
//
//	set := xmonitortest.NewSet()
//	typ, _ := xhook.Wrap[Sample](set.Factory(), xhook.WithRegistry(xmonitor.NewRegistry()))
//	inst, _ := typ.New(ctx)
//	rec := set.Get(typ.Name())
//	rec.State(inst.InstanceID()) // xmonitortest.StateInitialised
package xmonitortest
