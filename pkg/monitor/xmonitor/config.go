package xmonitor

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// configTag Unmarshal 使用的结构体标签，与 xconf 保持一致。
const configTag = "koanf"

// Config 是转发给 Factory 的监控器参数。
//
// 零值可用，表示没有任何参数。底层使用 koanf，键以 "." 分隔。
type Config struct {
	k *koanf.Koanf
}

// NewConfig 从键值映射创建参数。嵌套 map 会展开为 "a.b" 形式的键。
func NewConfig(values map[string]any) (Config, error) {
	k := koanf.New(".")
	if len(values) > 0 {
		if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}
	return Config{k: k}, nil
}

// ConfigFromKoanf 使用已有的 koanf 实例（例如 xconf 中某个子树）创建参数。
// 传入 nil 等价于零值。
func ConfigFromKoanf(k *koanf.Koanf) Config {
	return Config{k: k}
}

// Unmarshal 将全部参数反序列化到 target（字段标签 koanf）。
func (c Config) Unmarshal(target any) error {
	if c.k == nil {
		return nil
	}
	if err := c.k.UnmarshalWithConf("", target, koanf.UnmarshalConf{Tag: configTag}); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// Exists 报告 key 是否存在。
func (c Config) Exists(key string) bool {
	return c.k != nil && c.k.Exists(key)
}

// String 返回字符串参数，不存在时返回空串。
func (c Config) String(key string) string {
	if c.k == nil {
		return ""
	}
	return c.k.String(key)
}

// Int 返回整数参数，不存在时返回 0。
func (c Config) Int(key string) int {
	if c.k == nil {
		return 0
	}
	return c.k.Int(key)
}

// Bool 返回布尔参数，不存在时返回 false。
func (c Config) Bool(key string) bool {
	if c.k == nil {
		return false
	}
	return c.k.Bool(key)
}

// Float64 返回浮点参数，不存在时返回 0。
func (c Config) Float64(key string) float64 {
	if c.k == nil {
		return 0
	}
	return c.k.Float64(key)
}

// Duration 返回时间间隔参数（支持 "1s" 形式），不存在时返回 0。
func (c Config) Duration(key string) time.Duration {
	if c.k == nil {
		return 0
	}
	return c.k.Duration(key)
}

// Keys 返回所有展开后的键。
func (c Config) Keys() []string {
	if c.k == nil {
		return nil
	}
	return c.k.Keys()
}
