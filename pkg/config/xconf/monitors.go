package xconf

import (
	"fmt"
	"strings"

	"github.com/omeyang/xobjmon/pkg/monitor/xhook"
	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

// TypeConfig 是 monitors.<type> 下一个被监控类型的配置。
type TypeConfig struct {
	// Name 类型名称（monitors 下的键）。
	Name string
	// Operations 要拦截的操作名称。
	Operations []string
	// OperationsSet 配置中是否出现了 operations 键。
	// 为 false 时使用监控器工厂声明的默认操作；空列表表示只监控构造与销毁。
	OperationsSet bool
	// Params 转发给监控器工厂的参数。
	Params xmonitor.Config
}

// WrapOptions 返回对应的 xhook.Wrap 选项：名称、操作列表（若配置了）和参数。
func (tc TypeConfig) WrapOptions() []xhook.Option {
	opts := []xhook.Option{
		xhook.WithName(tc.Name),
		xhook.WithMonitorConfig(tc.Params),
	}
	if tc.OperationsSet {
		opts = append(opts, xhook.WithOperations(tc.Operations...))
	}
	return opts
}

// Monitors 读取 monitors 下所有类型的配置。没有 monitors 键时返回空映射。
func Monitors(cfg Config) (map[string]TypeConfig, error) {
	k := cfg.Client()
	out := make(map[string]TypeConfig)
	if !k.Exists(MonitorsKey) {
		return out, nil
	}
	for _, name := range k.MapKeys(MonitorsKey) {
		tc, err := lookup(cfg, name)
		if err != nil {
			return nil, err
		}
		out[name] = tc
	}
	return out, nil
}

// Lookup 读取单个类型的配置。类型未配置时返回零值 TypeConfig（仅设置 Name）和 false。
func Lookup(cfg Config, name string) (TypeConfig, bool, error) {
	k := cfg.Client()
	if name == "" || strings.Contains(name, k.Delim()) {
		return TypeConfig{}, false, fmt.Errorf("%w: %q", ErrInvalidTypeName, name)
	}
	if !k.Exists(key(k.Delim(), MonitorsKey, name)) {
		return TypeConfig{Name: name}, false, nil
	}
	tc, err := lookup(cfg, name)
	return tc, err == nil, err
}

func lookup(cfg Config, name string) (TypeConfig, error) {
	k := cfg.Client()
	d := k.Delim()
	opsKey := key(d, MonitorsKey, name, "operations")

	tc := TypeConfig{
		Name:          name,
		OperationsSet: k.Exists(opsKey),
		Params:        xmonitor.ConfigFromKoanf(k.Cut(key(d, MonitorsKey, name, "params"))),
	}
	if tc.OperationsSet {
		switch v := k.Get(opsKey).(type) {
		case []any, []string:
			tc.Operations = k.Strings(opsKey)
		default:
			return TypeConfig{}, fmt.Errorf("%w: %s operations must be a list, got %T", ErrUnmarshalFailed, name, v)
		}
	}
	return tc, nil
}

func key(delim string, parts ...string) string {
	return strings.Join(parts, delim)
}
