package xhook_test

import (
	"context"
	"fmt"

	"github.com/omeyang/xobjmon/pkg/monitor/xhook"
	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

type Counter struct {
	n int
}

func (c *Counter) Add(delta int) int {
	c.n += delta
	return c.n
}

type printMonitor struct {
	xmonitor.Base
}

func (p *printMonitor) OnInit(_ context.Context, _ any, id xmonitor.InstanceID) error {
	fmt.Println("init", id)
	return nil
}

func (p *printMonitor) OnCall(_ context.Context, ev xmonitor.CallEvent) error {
	fmt.Println("call", ev.ID, ev.Operation, ev.Args, ev.Results)
	return nil
}

func (p *printMonitor) OnDestroy(id xmonitor.InstanceID) {
	fmt.Println("destroy", id)
}

func ExampleWrap() {
	ctx := context.Background()
	factory := xmonitor.Define(func(xmonitor.TypeInfo, xmonitor.Config) (xmonitor.Monitor, error) {
		return &printMonitor{}, nil
	}, "Add")

	counters, err := xhook.Wrap[Counter](factory,
		xhook.WithName("Counter"),
		xhook.WithRegistry(xmonitor.NewRegistry()),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	c, _ := counters.New(ctx)
	_, _ = c.Invoke(ctx, "Add", 2)
	_ = c.Close()

	// Output:
	// init 0
	// call 0 Add [2] [2]
	// destroy 0
}

func ExampleObserve() {
	ctx := context.Background()
	factory := xmonitor.Define(func(xmonitor.TypeInfo, xmonitor.Config) (xmonitor.Monitor, error) {
		return &printMonitor{}, nil
	}, "Add")
	counters := xhook.MustWrap[Counter](factory, xhook.WithRegistry(xmonitor.NewRegistry()))

	c, _ := counters.New(ctx)
	defer c.Close()

	n, _ := xhook.Observe(ctx, c, "Add", func(v *Counter) (int, error) {
		return v.Add(5), nil
	}, 5)
	fmt.Println("total", n)

	// Output:
	// init 0
	// call 0 Add [5] [5]
	// total 5
	// destroy 0
}
