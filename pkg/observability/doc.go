// Package observability 提供监控器共用的可观测性子包。
//
// 子包列表：
//   - xlog: 基于 log/slog 的日志构建器
//   - xmetrics: 统一可观测性接口（指标、追踪），OpenTelemetry 实现
//   - xsampling: 调用事件采样策略
//   - xrotate: 日志文件轮转
package observability
