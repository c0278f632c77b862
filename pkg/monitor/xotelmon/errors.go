package xotelmon

import "errors"

var (
	// ErrCreateInstrument 表示创建 OTel 指标失败。
	ErrCreateInstrument = errors.New("xotelmon: create instrument")

	// ErrUnknownInstance 表示 OnDestroy 收到了未登记的实例 id。
	ErrUnknownInstance = errors.New("xotelmon: unknown instance")
)
