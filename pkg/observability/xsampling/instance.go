package xsampling

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/xobjmon/pkg/monitor/xmonitor"
)

var _ Sampler = (*InstanceSampler)(nil)

// InstanceSampler 按实例一致性采样。
//
// 对同一（类型名称, 实例 id）总是得到相同的决策，
// 被选中的实例的全部调用都会被记录，便于完整还原单个对象的生命周期。
type InstanceSampler struct {
	rate float64
	seed string
}

// NewInstanceSampler 创建按实例采样的采样器。
//
// seed 参与哈希，通常是被监控类型名称，使不同类型的同号实例得到独立的决策。
func NewInstanceSampler(rate float64, seed string) (*InstanceSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &InstanceSampler{rate: rate, seed: seed}, nil
}

func (s *InstanceSampler) ShouldSample(_ context.Context, ev xmonitor.CallEvent) bool {
	return s.Sampled(ev.ID)
}

// Sampled 报告实例 id 是否被选中。
func (s *InstanceSampler) Sampled(id xmonitor.InstanceID) bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}
	d := xxhash.New()
	_, _ = d.WriteString(s.seed)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(id))
	_, _ = d.Write(buf[:])
	// hash == MaxUint64 时 normalized 可能为 1.0，rate < 1 时不会被选中。
	normalized := float64(d.Sum64()) / float64(math.MaxUint64)
	return normalized < s.rate
}

// Rate 返回采样比率
func (s *InstanceSampler) Rate() float64 { return s.rate }
