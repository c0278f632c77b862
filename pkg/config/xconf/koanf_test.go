package xconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
app:
  name: demo
monitors:
  Account:
    operations: [Deposit, Withdraw]
    params:
      file: account.log
      history: 32
  Session:
    params:
      level: debug
  Widget:
    operations: []
`

const testJSON = `{
  "app": {"name": "demo"},
  "monitors": {
    "Account": {"operations": ["Deposit"], "params": {"history": 8}}
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		body   string
		format Format
	}{
		{"yaml", "config.yaml", testYAML, FormatYAML},
		{"yml", "config.yml", testYAML, FormatYAML},
		{"json", "config.json", testJSON, FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.body)
			cfg, err := New(path)
			require.NoError(t, err)
			assert.Equal(t, tt.format, cfg.Format())
			assert.Equal(t, path, cfg.Path())
			assert.Equal(t, "demo", cfg.Client().String("app.name"))
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New("config.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = New(writeFile(t, "bad.json", "{not json"))
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(testYAML), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())

	var app struct {
		Name string `koanf:"name"`
	}
	require.NoError(t, cfg.Unmarshal("app", &app))
	assert.Equal(t, "demo", app.Name)

	empty, err := NewFromBytes(nil, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, empty.Client().Keys())

	_, err = NewFromBytes([]byte("x"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.ErrorIs(t, cfg.Reload(), ErrNotReloadable)
}

func TestUnmarshal_Error(t *testing.T) {
	cfg, err := NewFromBytes([]byte(testYAML), FormatYAML)
	require.NoError(t, err)
	var target struct{}
	assert.ErrorIs(t, cfg.Unmarshal("app", target), ErrUnmarshalFailed)
	assert.Panics(t, func() { MustUnmarshal(cfg, "app", target) })
}

func TestWithTagAndDelim(t *testing.T) {
	cfg, err := NewFromBytes([]byte(`{"app": {"name": "demo"}}`), FormatJSON,
		WithDelim("/"), WithTag("json"), nil)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Client().String("app/name"))

	var app struct {
		Name string `json:"name"`
	}
	require.NoError(t, cfg.Unmarshal("app", &app))
	assert.Equal(t, "demo", app.Name)
}

func TestReload(t *testing.T) {
	path := writeFile(t, "config.yaml", "app:\n  name: v1\n")
	cfg, err := New(path)
	require.NoError(t, err)
	old := cfg.Client()

	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: v2\n"), 0o600))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, "v2", cfg.Client().String("app.name"))
	assert.Equal(t, "v1", old.String("app.name"))

	// 解析失败时保留旧配置。
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o600))
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, "v2", cfg.Client().String("app.name"))
}
