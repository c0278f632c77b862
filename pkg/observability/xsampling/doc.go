// Package xsampling 决定哪些被拦截的调用需要记录。
//
// 监控器在 OnCall 中询问 Sampler，未被采样的调用只更新计数，
// 不写日志、不产生跨度。提供的策略：
//
//   - Always / Never：全部或全不采样
//   - RateSampler：按比率随机采样
//   - CountSampler：每 N 次采样 1 次
//   - InstanceSampler：按（类型, 实例 id）一致性哈希，同一实例的调用要么全采要么全不采
//   - Failures：只采样以错误或 panic 结束的调用
//   - Any / All：组合多个策略
//
// FromConfig 从监控器参数构造采样器，参数位于 sample 前缀下：
//
//	params:
//	  sample:
//	    mode: instance   # always | never | rate | count | instance
//	    rate: 0.1        # rate/instance 模式使用
//	    every: 100       # count 模式使用
//	    failures: true   # 失败的调用总是采样
package xsampling
