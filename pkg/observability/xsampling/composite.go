package xsampling

import (
	"context"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

type compositeSampler struct {
	samplers []Sampler
	all      bool
}

// Any 任一子采样器通过即采样（短路求值）。没有子采样器时不采样。
func Any(samplers ...Sampler) (Sampler, error) {
	return newComposite(false, samplers)
}

// All 所有子采样器都通过才采样（短路求值）。没有子采样器时全采样。
func All(samplers ...Sampler) (Sampler, error) {
	return newComposite(true, samplers)
}

func newComposite(all bool, samplers []Sampler) (Sampler, error) {
	for _, s := range samplers {
		if s == nil {
			return nil, ErrNilSampler
		}
	}
	return &compositeSampler{samplers: append([]Sampler(nil), samplers...), all: all}, nil
}

func (c *compositeSampler) ShouldSample(ctx context.Context, ev xmonitor.CallEvent) bool {
	for _, s := range c.samplers {
		if s.ShouldSample(ctx, ev) != c.all {
			return !c.all
		}
	}
	return c.all
}
