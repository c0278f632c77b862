// Package xlog 构建 slog 日志记录器。
//
// Builder 统一处理输出目标、格式（text/json）、级别和文件轮转，
// 返回标准的 *slog.Logger 以及可在运行时调整的 *slog.LevelVar。
//
//	logger, level, cleanup, err := xlog.New().
//	    SetFormat("json").
//	    SetLevelString("debug").
//	    SetRotation("/var/log/app/objects.log", xrotate.WithMaxSize(64)).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//	level.Set(slog.LevelWarn) // 运行时调整级别
package xlog
