package xmonitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefine(t *testing.T) {
	var got TypeInfo
	f := Define(func(info TypeInfo, _ Config) (Monitor, error) {
		got = info
		return &Base{}, nil
	}, "Save", "Delete")

	d, ok := f.(OperationDeclarer)
	require.True(t, ok)
	ops := d.DefaultOperations()
	assert.Equal(t, []string{"Save", "Delete"}, ops)

	// 返回副本。
	ops[0] = "mutated"
	assert.Equal(t, []string{"Save", "Delete"}, d.DefaultOperations())

	m, err := f.NewMonitor(TypeInfo{Name: "doc"}, Config{})
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, "doc", got.Name)
}

func TestDefine_NilFunc(t *testing.T) {
	_, err := Define(nil).NewMonitor(TypeInfo{}, Config{})
	assert.ErrorIs(t, err, ErrNilMonitor)
}

func TestOf_SingleUse(t *testing.T) {
	m := &Base{}
	f := Of(m)

	got, err := f.NewMonitor(TypeInfo{}, Config{})
	require.NoError(t, err)
	assert.Same(t, m, got)

	_, err = f.NewMonitor(TypeInfo{}, Config{})
	assert.ErrorIs(t, err, ErrDuplicateMonitor)
}

func TestOf_Nil(t *testing.T) {
	_, err := Of(nil).NewMonitor(TypeInfo{}, Config{})
	assert.ErrorIs(t, err, ErrNilMonitor)
}
