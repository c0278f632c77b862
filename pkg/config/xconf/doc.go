// Package xconf 加载被监控类型的配置，基于 koanf 实现。
//
// 配置文件（YAML 或 JSON）在 monitors 下为每个被监控类型声明拦截的操作
// 和转发给监控器工厂的参数：
//
//	monitors:
//	  Account:
//	    operations: [Deposit, Withdraw]
//	    params:
//	      file: /var/log/xobjmon/account.log
//	      history: 256
//
// [Monitors] 读取所有类型的配置，[TypeConfig.WrapOptions] 把一项配置
// 转换为 xhook.Wrap 的选项：
//
//	cfg, _ := xconf.New("xobjmon.yaml")
//	types, _ := xconf.Monitors(cfg)
//	accounts, err := xhook.Wrap[Account](xlogmon.Factory, types["Account"].WrapOptions()...)
//
// 类型名称是配置键的一部分，不能包含键分隔符（默认 "."）。
//
// # 重载
//
// 从文件创建的 Config 可以通过 [Watch] 监视文件变更（基于 fsnotify，带防抖）。
// 被监控类型在 Wrap 时固定了操作列表，重载只影响之后读取配置的组件，
// 例如 xlogmon 的日志级别。
package xconf
