package xsampling

import "errors"

// 采样器创建相关的错误
var (
	// ErrInvalidRate 表示采样比率不在 [0.0, 1.0] 范围内
	ErrInvalidRate = errors.New("xsampling: rate must be in [0.0, 1.0]")

	// ErrInvalidCount 表示 CountSampler 的采样间隔 n 不合法（必须 >= 1）
	ErrInvalidCount = errors.New("xsampling: count n must be >= 1")

	// ErrInvalidMode 表示无法识别的采样模式
	ErrInvalidMode = errors.New("xsampling: invalid mode")

	// ErrNilSampler 表示组合中的子采样器为 nil
	ErrNilSampler = errors.New("xsampling: sampler must not be nil")
)
