package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseLevel 解析日志级别。
//
// 支持 debug/info/warn/warning/error（大小写不敏感，忽略首尾空白）。
// 空串解析为 info。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}
