package tools

import (
	"sync"
	"time"
)

const (
	defaultFailureWindow    = 30 * time.Minute
	defaultFailureThreshold = 2
	defaultSuppressFor      = 15 * time.Minute
)

// HealthMonitor tracks transient tool failures and temporarily suppresses
// a tool once failures inside the window cross the threshold. A single
// success clears all pressure for that tool.
type HealthMonitor struct {
	mu              sync.Mutex
	window          time.Duration
	threshold       int
	suppressFor     time.Duration
	failures        map[string][]time.Time
	suppressedUntil map[string]time.Time
	now             func() time.Time
}

// NewHealthMonitor builds a monitor. Zero values select the defaults.
func NewHealthMonitor(window time.Duration, threshold int, suppressFor time.Duration) *HealthMonitor {
	if window <= 0 {
		window = defaultFailureWindow
	}
	if threshold < 1 {
		threshold = defaultFailureThreshold
	}
	if suppressFor <= 0 {
		suppressFor = defaultSuppressFor
	}
	return &HealthMonitor{
		window:          window,
		threshold:       threshold,
		suppressFor:     suppressFor,
		failures:        make(map[string][]time.Time),
		suppressedUntil: make(map[string]time.Time),
		now:             time.Now,
	}
}

// RecordFailure notes one failure; crossing the threshold inside the
// window starts a suppression period.
func (m *HealthMonitor) RecordFailure(tool string) {
	if tool == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	recent := make([]time.Time, 0, len(m.failures[tool])+1)
	for _, t := range m.failures[tool] {
		if now.Sub(t) <= m.window {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	m.failures[tool] = recent

	if len(recent) >= m.threshold {
		m.suppressedUntil[tool] = now.Add(m.suppressFor)
	}
}

// RecordSuccess clears failure pressure for the tool.
func (m *HealthMonitor) RecordSuccess(tool string) {
	if tool == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, tool)
	delete(m.suppressedUntil, tool)
}

// Suppressed reports whether the tool is currently withheld.
func (m *HealthMonitor) Suppressed(tool string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.suppressedUntil[tool]
	if !ok {
		return false
	}
	if m.now().After(until) {
		delete(m.suppressedUntil, tool)
		return false
	}
	return true
}

// SuppressedSet returns the names currently suppressed.
func (m *HealthMonitor) SuppressedSet() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	out := make(map[string]bool)
	for tool, until := range m.suppressedUntil {
		if now.After(until) {
			delete(m.suppressedUntil, tool)
			continue
		}
		out[tool] = true
	}
	return out
}
