package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/omeyang/xobjmon/pkg/monitor/xhook"
)

// errInsufficientFunds 表示余额不足。
var errInsufficientFunds = errors.New("insufficient funds")

// errNonPositive 表示金额必须为正数。
var errNonPositive = errors.New("amount must be positive")

// Account 是演示用的被监控类型。
type Account struct {
	balance int
}

// Deposit 存入 n，返回新余额。
func (a *Account) Deposit(n int) (int, error) {
	if n <= 0 {
		return a.balance, errNonPositive
	}
	a.balance += n
	return a.balance, nil
}

// Withdraw 取出 n，返回新余额。
func (a *Account) Withdraw(n int) (int, error) {
	if n <= 0 {
		return a.balance, errNonPositive
	}
	if n > a.balance {
		return a.balance, errInsufficientFunds
	}
	a.balance -= n
	return a.balance, nil
}

// Balance 返回余额。
func (a *Account) Balance() int { return a.balance }

// Session 是演示用的被监控类型，由构造函数设置用户。
type Session struct {
	user string
}

func newSession(_ context.Context, args ...any) (*Session, error) {
	s := &Session{user: "anonymous"}
	if len(args) > 0 {
		if u, ok := args[0].(string); ok {
			s.user = u
		}
	}
	return s, nil
}

// Touch 刷新会话。
func (s *Session) Touch() string { return s.user }

// demoType 描述一个演示类型：名称、默认拦截的操作和构造选项。
type demoType struct {
	name string
	ops  []string
	opts []xhook.Option
}

var demoTypes = []demoType{
	{name: "Account", ops: []string{"Deposit", "Withdraw"}},
	{name: "Session", ops: []string{"Touch"}, opts: []xhook.Option{xhook.WithConstructor[Session](newSession)}},
}

// workload 持有被监控类型并产生演示负载。
type workload struct {
	accounts *xhook.Type[Account]
	sessions *xhook.Type[Session]
	pause    time.Duration
}

// worker 循环构造、调用并释放对象，直到 ctx 取消。
// 约三分之一的对象不调用 Close，交给回收兜底触发销毁。
func (w *workload) worker(ctx context.Context) error {
	for ctx.Err() == nil {
		if err := w.step(ctx); err != nil {
			return err
		}
		if w.pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(w.pause):
			}
		}
	}
	return nil
}

func (w *workload) step(ctx context.Context) error {
	acc, err := w.accounts.New(ctx)
	if err != nil {
		return err
	}
	for range rand.IntN(5) + 1 {
		// 业务错误（金额非法、余额不足）是负载的一部分，由监控器记录。
		_, _ = acc.Invoke(ctx, "Deposit", rand.IntN(12)-2)
		_, _ = acc.Invoke(ctx, "Withdraw", rand.IntN(10))
	}
	if rand.IntN(3) > 0 {
		_ = acc.Close()
	}

	sess, err := w.sessions.New(ctx, "demo")
	if err != nil {
		return err
	}
	_, _ = sess.Invoke(ctx, "Touch")
	return sess.Close()
}
