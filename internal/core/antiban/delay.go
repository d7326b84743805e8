// internal/core/antiban/delay.go
package antiban

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oraclewa/oraclewa/internal/shared/utils"
	"github.com/oraclewa/oraclewa/pkg/metrics"
)

// DelayConfig tunes the anti-ban pacing between outbound messages.
type DelayConfig struct {
	MinDelay        time.Duration // floor between two sends
	RandomJitterMax time.Duration // +0..jitter on every send
	LongPauseChance float64       // chance of an extra long pause
	LongPauseMin    time.Duration
	LongPauseMax    time.Duration
	BatchSize       int // extra pause every N messages
	BatchPauseMin   time.Duration
	BatchPauseMax   time.Duration
}

// DefaultConfig mirrors the pacing the operation has been running with:
// 90s+ floor, random long pauses, batch pauses every 5 messages.
func DefaultConfig() DelayConfig {
	return DelayConfig{
		MinDelay:        90 * time.Second,
		RandomJitterMax: 60 * time.Second,
		LongPauseChance: 0.15,
		LongPauseMin:    5 * time.Minute,
		LongPauseMax:    15 * time.Minute,
		BatchSize:       5,
		BatchPauseMin:   2 * time.Minute,
		BatchPauseMax:   5 * time.Minute,
	}
}

// DelayManager spaces outbound sends so the pattern looks human to the
// delivery channel. One manager paces one dispatch worker.
type DelayManager struct {
	mu       sync.Mutex
	cfg      DelayConfig
	lastSend time.Time
	count    int
	randF    func() float64
}

func NewDelayManager(cfg DelayConfig) *DelayManager {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	return &DelayManager{cfg: cfg, randF: rand.Float64}
}

// Wait blocks for the computed anti-ban delay or until ctx is done.
func (d *DelayManager) Wait(ctx context.Context) error {
	wait := d.nextDelay()
	if wait <= 0 {
		d.mu.Lock()
		d.lastSend = time.Now()
		d.mu.Unlock()
		return nil
	}

	metrics.ObserveAntibanDelay(wait.Seconds())
	utils.LogInfo("applying anti-ban delay", map[string]interface{}{
		"delay_seconds": int(wait.Seconds()),
		"message_count": d.Count(),
	})

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	d.mu.Lock()
	d.lastSend = time.Now()
	d.mu.Unlock()
	return nil
}

func (d *DelayManager) nextDelay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.count++
	elapsed := time.Since(d.lastSend)

	wait := d.cfg.MinDelay + d.jitter(d.cfg.RandomJitterMax)
	if !d.lastSend.IsZero() && elapsed < d.cfg.MinDelay {
		wait = d.cfg.MinDelay - elapsed + d.jitter(d.cfg.RandomJitterMax)
	} else if d.lastSend.IsZero() {
		// First message of the worker's life needs no pacing.
		wait = 0
	}

	if d.randF() < d.cfg.LongPauseChance {
		pause := d.cfg.LongPauseMin + d.jitter(d.cfg.LongPauseMax-d.cfg.LongPauseMin)
		wait += pause
		utils.LogInfo("random long pause", map[string]interface{}{
			"extra_minutes": int(pause.Minutes()),
		})
	}

	if d.count%d.cfg.BatchSize == 0 {
		pause := d.cfg.BatchPauseMin + d.jitter(d.cfg.BatchPauseMax-d.cfg.BatchPauseMin)
		wait += pause
		utils.LogInfo("batch pause", map[string]interface{}{
			"message_count": d.count,
			"extra_minutes": int(pause.Minutes()),
		})
	}

	return wait
}

func (d *DelayManager) jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(d.randF() * float64(max))
}

// Count returns how many sends this manager has paced.
func (d *DelayManager) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Reset clears the pacing state. Used by tests.
func (d *DelayManager) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count = 0
	d.lastSend = time.Time{}
}
