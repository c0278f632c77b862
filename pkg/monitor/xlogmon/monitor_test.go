package xlogmon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xobjmon/pkg/monitor/xhook"
	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
	"github.com/omeyang/xobjmon/pkg/observability/xlog"
	"github.com/omeyang/xobjmon/pkg/observability/xsampling"
)

var errRejected = errors.New("rejected")

type Account struct {
	Balance int
}

func (a *Account) Deposit(n int) (int, error) {
	if n <= 0 {
		return a.Balance, errRejected
	}
	a.Balance += n
	return a.Balance, nil
}

func (a *Account) Crash() { panic("crash") }

func wrapAccount(t *testing.T, f *Factory, values map[string]any, opts ...xhook.Option) (*xhook.Type[Account], *Monitor) {
	t.Helper()
	opts = append([]xhook.Option{
		xhook.WithName("Account"),
		xhook.WithRegistry(xmonitor.NewRegistry()),
		xhook.WithoutCollectorFallback(),
		xhook.WithOperations("Deposit", "Crash"),
		xhook.WithConfigValues(values),
	}, opts...)
	accounts, err := xhook.Wrap[Account](f, opts...)
	require.NoError(t, err)
	return accounts, accounts.Monitor().(*Monitor)
}

func records(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), sc.Text())
		out = append(out, rec)
	}
	return out
}

func messages(recs []map[string]any) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r["msg"].(string))
	}
	return out
}

func TestMonitor_Lifecycle(t *testing.T) {
	var buf bytes.Buffer
	accounts, m := wrapAccount(t, NewFactory(WithWriter(&buf)), map[string]any{"level": "debug"})
	ctx := context.Background()

	a, err := accounts.New(ctx)
	require.NoError(t, err)
	_, err = a.Invoke(ctx, "Deposit", 10)
	require.NoError(t, err)
	_, err = a.Invoke(ctx, "Deposit", 0)
	require.ErrorIs(t, err, errRejected)
	assert.Panics(t, func() { _, _ = a.Invoke(ctx, "Crash") })

	live, ok := m.Lookup(0)
	require.True(t, ok)
	assert.Equal(t, 3, live.Calls)
	assert.Equal(t, 2, live.Failures)
	assert.Equal(t, "Crash", live.LastOp)
	assert.Equal(t, "panic: crash", live.LastError)
	assert.True(t, live.Died.IsZero())

	require.NoError(t, a.Close())

	recs := records(t, buf.Bytes())
	assert.Equal(t, []string{"instance created", "call", "call", "call", "instance destroyed"}, messages(recs))
	for _, r := range recs {
		assert.Equal(t, "Account", r["type"])
		assert.InDelta(t, 0, r["id"], 0)
	}
	assert.Equal(t, "INFO", recs[1]["level"])
	assert.Equal(t, "Deposit", recs[1]["operation"])
	assert.Equal(t, []any{float64(10)}, recs[1]["args"])
	assert.Equal(t, []any{float64(10)}, recs[1]["results"])
	assert.Equal(t, "WARN", recs[2]["level"])
	assert.Equal(t, "rejected", recs[2]["error"])
	assert.Equal(t, "ERROR", recs[3]["level"])
	assert.Equal(t, "crash", recs[3]["panic"])
	assert.InDelta(t, 3, recs[4]["calls"], 0)

	dead, ok := m.Lookup(0)
	require.True(t, ok)
	assert.False(t, dead.Died.IsZero())
	assert.Equal(t, []Lifetime{dead}, m.History())

	assert.Equal(t, Summary{Created: 1, Destroyed: 1, Calls: 3, Failures: 2}, m.Summary())
	_, ok = m.Lookup(42)
	assert.False(t, ok)
}

func TestMonitor_DefaultLevelHidesCreate(t *testing.T) {
	var buf bytes.Buffer
	accounts, m := wrapAccount(t, NewFactory(WithWriter(&buf)), nil)
	ctx := context.Background()

	a, _ := accounts.New(ctx)
	require.NoError(t, a.Close())
	assert.Equal(t, []string{"instance destroyed"}, messages(records(t, buf.Bytes())))
	assert.Equal(t, slog.LevelInfo, m.Level())

	require.NoError(t, m.SetLevel("debug"))
	b, _ := accounts.New(ctx)
	defer b.Close()
	assert.Contains(t, messages(records(t, buf.Bytes())), "instance created")

	assert.ErrorIs(t, m.SetLevel("loud"), xlog.ErrUnknownLevel)
}

func TestMonitor_SharedLevel(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	level.Set(slog.LevelError)
	accounts, m := wrapAccount(t, NewFactory(WithWriter(&buf), WithLevelVar(level)),
		map[string]any{"level": "debug"})

	a, _ := accounts.New(context.Background())
	_, _ = a.Invoke(context.Background(), "Deposit", 0)
	require.NoError(t, a.Close())
	assert.Empty(t, buf.String())

	require.NoError(t, m.SetLevel("info"))
	assert.Equal(t, slog.LevelInfo, level.Level())
}

func TestMonitor_BoundedHistory(t *testing.T) {
	var buf bytes.Buffer
	accounts, m := wrapAccount(t, NewFactory(WithWriter(&buf)), map[string]any{"history": 2})
	ctx := context.Background()

	for range 3 {
		a, err := accounts.New(ctx)
		require.NoError(t, err)
		require.NoError(t, a.Close())
	}
	hist := m.History()
	require.Len(t, hist, 2)
	assert.Equal(t, xmonitor.InstanceID(1), hist[0].ID)
	assert.Equal(t, xmonitor.InstanceID(2), hist[1].ID)
	_, ok := m.Lookup(0)
	assert.False(t, ok)
	assert.Zero(t, m.Summary().Live)
}

func TestMonitor_Sampling(t *testing.T) {
	var buf bytes.Buffer
	accounts, m := wrapAccount(t, NewFactory(WithWriter(&buf), WithSampler(xsampling.Failures())), nil)
	ctx := context.Background()

	a, _ := accounts.New(ctx)
	defer a.Close()
	_, _ = a.Invoke(ctx, "Deposit", 1)
	_, _ = a.Invoke(ctx, "Deposit", -1)

	recs := records(t, buf.Bytes())
	require.Len(t, recs, 1)
	assert.Equal(t, "WARN", recs[0]["level"])
	// 未采样的调用仍计入统计。
	assert.Equal(t, uint64(2), m.Summary().Calls)
}

func TestMonitor_AtExitWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "account.log")
	registry := xmonitor.NewRegistry()
	accounts, _ := wrapAccount(t, NewFactory(), map[string]any{
		"file":        file,
		"max_size_mb": 1,
		"format":      "json",
	}, xhook.WithRegistry(registry))
	ctx := context.Background()

	a, _ := accounts.New(ctx)
	b, _ := accounts.New(ctx)
	require.NoError(t, a.Close())
	_ = b

	require.NoError(t, registry.Shutdown(ctx))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	recs := records(t, data)
	assert.Equal(t, []string{"instance destroyed", "monitor summary", "instance live at exit"}, messages(recs))
	assert.InDelta(t, 1, recs[1]["live"], 0)
	assert.InDelta(t, 1, recs[2]["id"], 0)
}

func TestFactory_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"history", map[string]any{"history": 0}},
		{"level", map[string]any{"level": "verbose"}},
		{"format", map[string]any{"format": "xml"}},
		{"sample", map[string]any{"sample": map[string]any{"mode": "sometimes"}}},
		{"max size", map[string]any{"file": filepath.Join(t.TempDir(), "x.log"), "max_size_mb": -1}},
		{"history type", map[string]any{"history": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := xhook.Wrap[Account](NewFactory(WithWriter(&bytes.Buffer{})),
				xhook.WithRegistry(xmonitor.NewRegistry()),
				xhook.WithConfigValues(tt.values),
			)
			assert.Error(t, err)
		})
	}
}

func TestFactory_DefaultOperations(t *testing.T) {
	f := NewFactory(WithDefaultOperations("Deposit"), nil)
	assert.Equal(t, []string{"Deposit"}, f.DefaultOperations())
	accounts, err := xhook.Wrap[Account](f, xhook.WithRegistry(xmonitor.NewRegistry()))
	require.NoError(t, err)
	assert.True(t, accounts.Intercepts("Deposit"))
}

func TestMonitor_UnknownDestroy(t *testing.T) {
	var buf bytes.Buffer
	_, m := wrapAccount(t, NewFactory(WithWriter(&buf)), nil)
	m.OnDestroy(7)
	recs := records(t, buf.Bytes())
	require.Len(t, recs, 1)
	assert.Equal(t, "destroy of unknown instance", recs[0]["msg"])
	assert.Equal(t, uint64(1), m.Summary().Destroyed)
}
