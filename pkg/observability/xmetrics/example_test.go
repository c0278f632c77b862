package xmetrics_test

import (
	"context"
	"fmt"
	"time"

	"github.com/omeyang/xobjmon/pkg/observability/xmetrics"
)

func ExampleStart() {
	// nil observer 返回 NoopSpan。
	_, span := xmetrics.Start(context.Background(), nil, xmetrics.SpanOptions{
		Component: "Account",
		Operation: "Deposit",
		Start:     time.Now().Add(-time.Millisecond),
	})
	span.End(xmetrics.Result{Elapsed: time.Millisecond})
	fmt.Println("ended")
	// Output: ended
}
