// Package xrotate 提供按大小轮转的日志文件输出。
//
// 基于 lumberjack 实现，xlogmon 用它承载监控事件日志，
// xlog 的 SetRotation 也使用它作为输出目标。
//
//	r, err := xrotate.NewLumberjack("/var/log/app/objects.log",
//	    xrotate.WithMaxSize(64),
//	    xrotate.WithMaxBackups(3),
//	)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
package xrotate
