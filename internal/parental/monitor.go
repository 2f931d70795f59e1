package parental

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultMonitorInterval is one minute of play per tick.
const DefaultMonitorInterval = time.Minute

// Monitor counts play time and tracks whether play is still allowed for as
// long as the process runs.
type Monitor struct {
	gate     *Gate
	interval time.Duration
	logger   *zap.Logger

	allowed atomic.Bool

	mu       sync.Mutex
	onChange func(allowed bool)
}

// NewMonitor returns a monitor with the allowed flag already computed.
func NewMonitor(gate *Gate, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	m := &Monitor{gate: gate, interval: interval, logger: logger}
	m.allowed.Store(gate.IsWithinAllowedTime())
	return m
}

// OnChange registers fn to be called whenever the allowed flag flips.
func (m *Monitor) OnChange(fn func(allowed bool)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Allowed returns the last computed allowed flag.
func (m *Monitor) Allowed() bool { return m.allowed.Load() }

// Check recomputes the allowed flag now and returns it.
func (m *Monitor) Check() bool {
	now := m.gate.IsWithinAllowedTime()
	if prev := m.allowed.Swap(now); prev != now {
		m.logger.Info("play permission changed", zap.Bool("allowed", now))
		m.mu.Lock()
		fn := m.onChange
		m.mu.Unlock()
		if fn != nil {
			fn(now)
		}
	}
	return now
}

// Run counts one unit of play time per interval and rechecks the allowed
// flag until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Debug("parental monitor started", zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("parental monitor stopped")
			return nil
		case <-ticker.C:
			if err := m.gate.IncrementTimePlayed(); err != nil {
				m.logger.Warn("recording play time failed", zap.Error(err))
			}
			m.Check()
		}
	}
}
