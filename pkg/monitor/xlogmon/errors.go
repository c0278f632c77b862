package xlogmon

import "errors"

// ErrInvalidHistory 表示 history 参数不合法。
var ErrInvalidHistory = errors.New("xlogmon: history must be >= 1")
