// Package xlogmon 提供把对象生命周期写成结构化日志的监控器。
//
// 每个实例的构造、采样到的调用和销毁各写一条 slog 记录（默认 JSON）。
// 已结束的生命周期保存在有界 LRU 中，可通过 History 查询；
// AtExit 写一条汇总记录，列出仍存活的实例，并关闭日志文件。
//
// 参数（monitors.<type>.params）：
//
//	file: /var/log/app/account.log  # 为空时写到 WithWriter 指定的目标（默认 stderr）
//	max_size_mb: 64                 # 单个日志文件大小上限
//	max_backups: 3                  # 保留的备份数
//	history: 256                    # 保留的已结束生命周期数
//	level: debug                    # 日志级别，可通过 SetLevel 在运行时调整
//	format: json                    # json 或 text
//	sample:                         # 调用采样，见 xsampling.FromConfig
//	  mode: instance
//	  rate: 0.1
//
// 同一文件只能由一个被监控类型使用。
package xlogmon
