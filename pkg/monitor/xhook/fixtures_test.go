package xhook

import (
	"context"
	"errors"
	"fmt"
)

// Widget 没有任何字段和方法。
type Widget struct{}

// Gauge 由构造函数设置 Param。
type Gauge struct {
	Param int
}

func newGauge(_ context.Context, args ...any) (*Gauge, error) {
	g := &Gauge{Param: 42}
	if len(args) == 1 {
		v, ok := args[0].(int)
		if !ok {
			return nil, fmt.Errorf("gauge: want int, got %T", args[0])
		}
		g.Param = v
	}
	return g, nil
}

// Shape 是基础类型。
type Shape struct {
	Sides int
}

func (s *Shape) Describe(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, s.Sides)
}

func (s *Shape) Grow() {
	s.Sides++
}

// Square 嵌入 Shape，继承其方法。
type Square struct {
	Shape
	Size int
}

func (s *Square) Area() int { return s.Size * s.Size }

var (
	errNonPositive = errors.New("amount must be positive")
	boom           = &boomValue{msg: "boom"}
)

type boomValue struct{ msg string }

// Account 用于验证结果、错误和 panic 的透传。
type Account struct {
	Balance int
}

func (a *Account) Deposit(n int) (int, error) {
	if n <= 0 {
		return 0, errNonPositive
	}
	a.Balance += n
	return a.Balance, nil
}

func (a *Account) Explode() {
	panic(boom)
}

func (a *Account) Sum(base int, xs ...int) int {
	for _, x := range xs {
		base += x
	}
	return base
}

func (a *Account) Peek() int { return a.Balance }
