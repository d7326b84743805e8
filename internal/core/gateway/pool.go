// internal/core/gateway/pool.go
package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/oraclewa/oraclewa/internal/shared/utils"
)

// ErrNoInstanceAvailable means every instance in the pool is down and
// fallback-to-any is disabled.
var ErrNoInstanceAvailable = errors.New("no healthy instance available")

type slot struct {
	provider Provider
	healthy  bool
}

// Pool round-robins sends across a set of gateway instances, skipping the
// ones marked unhealthy. With fallbackToAny enabled, an all-down pool still
// hands out instances instead of dropping messages.
type Pool struct {
	mu            sync.Mutex
	slots         []*slot
	next          int
	fallbackToAny bool
}

func NewPool(providers []Provider, fallbackToAny bool) *Pool {
	slots := make([]*slot, 0, len(providers))
	for _, p := range providers {
		slots = append(slots, &slot{provider: p, healthy: true})
	}
	return &Pool{slots: slots, fallbackToAny: fallbackToAny}
}

// Acquire returns the next healthy provider in round-robin order.
func (p *Pool) Acquire() (Provider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.slots) == 0 {
		return nil, ErrNoInstanceAvailable
	}

	for i := 0; i < len(p.slots); i++ {
		s := p.slots[p.next]
		p.next = (p.next + 1) % len(p.slots)
		if s.healthy {
			return s.provider, nil
		}
	}

	if p.fallbackToAny {
		s := p.slots[p.next]
		p.next = (p.next + 1) % len(p.slots)
		utils.LogWarn("all instances unhealthy, falling back to any", map[string]interface{}{
			"instance": s.provider.InstanceName(),
		})
		return s.provider, nil
	}

	return nil, ErrNoInstanceAvailable
}

// MarkDown flags an instance as unhealthy so Acquire skips it.
func (p *Pool) MarkDown(instanceName string) {
	p.setHealth(instanceName, false)
}

// MarkUp clears the unhealthy flag.
func (p *Pool) MarkUp(instanceName string) {
	p.setHealth(instanceName, true)
}

func (p *Pool) setHealth(instanceName string, healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if s.provider.InstanceName() == instanceName {
			s.healthy = healthy
		}
	}
}

// CheckAll probes every instance and updates its health flag. Run from the
// worker's health cron.
func (p *Pool) CheckAll(ctx context.Context) {
	p.mu.Lock()
	slots := make([]*slot, len(p.slots))
	copy(slots, p.slots)
	p.mu.Unlock()

	for _, s := range slots {
		err := s.provider.CheckHealth(ctx)

		p.mu.Lock()
		wasHealthy := s.healthy
		s.healthy = err == nil
		p.mu.Unlock()

		if err != nil && wasHealthy {
			utils.LogWarn("instance went unhealthy", map[string]interface{}{
				"instance": s.provider.InstanceName(),
				"reason":   err.Error(),
			})
		}
		if err == nil && !wasHealthy {
			utils.LogInfo("instance recovered", map[string]interface{}{
				"instance": s.provider.InstanceName(),
			})
		}
	}
}

// InstanceStatus is a point-in-time view of one pool slot.
type InstanceStatus struct {
	Instance string `json:"instance"`
	Provider string `json:"provider"`
	Healthy  bool   `json:"healthy"`
}

// Statuses reports the pool state for the management API.
func (p *Pool) Statuses() []InstanceStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]InstanceStatus, 0, len(p.slots))
	for _, s := range p.slots {
		out = append(out, InstanceStatus{
			Instance: s.provider.InstanceName(),
			Provider: s.provider.GetProviderName(),
			Healthy:  s.healthy,
		})
	}
	return out
}
