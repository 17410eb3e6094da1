package monitor

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
)

// Monitor tracks one AlertState per metric key and applies consecutive-sample
// hysteresis before changing alert level. Entries lock independently so
// unrelated metrics never contend.
type Monitor struct {
	cfg    config.MonitorConfig
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]*metricEntry
}

type metricEntry struct {
	mu    sync.Mutex
	state domain.AlertState
	// candidate is the level the current streak is building toward.
	candidate domain.AlertLevel
	streak    int
}

// NewMonitor creates the monitor. Only metric keys present in the threshold
// configuration are evaluated.
func NewMonitor(cfg config.MonitorConfig, logger *zap.Logger) *Monitor {
	if cfg.RaiseAfter <= 0 {
		cfg.RaiseAfter = 1
	}
	if cfg.ClearAfter <= 0 {
		cfg.ClearAfter = cfg.RaiseAfter
	}
	return &Monitor{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*metricEntry),
	}
}

// Ingest evaluates one sample. It returns a transition only when the
// consecutive-sample requirement for entering or leaving a level is met.
// Malformed samples (non-finite or out of range) are ignored and do not
// touch the hysteresis counters.
func (m *Monitor) Ingest(metricKey string, value float64, ts time.Time) *domain.AlertTransition {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < m.cfg.MinValue || value > m.cfg.MaxValue {
		m.logger.Debug("ignoring malformed sample",
			zap.String("metric", metricKey),
			zap.Float64("value", value))
		return nil
	}
	threshold, ok := m.cfg.Thresholds[metricKey]
	if !ok {
		m.logger.Debug("no thresholds configured for metric", zap.String("metric", metricKey))
		return nil
	}

	entry := m.entry(metricKey)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.state.LastValue = value

	sampleLevel := levelFor(value, threshold)
	current := entry.state.CurrentLevel

	if sampleLevel == current {
		// Back at the current level: any streak toward another level ends.
		entry.candidate = current
		entry.streak = 0
		return nil
	}

	if sampleLevel == entry.candidate {
		entry.streak++
	} else {
		entry.candidate = sampleLevel
		entry.streak = 1
	}

	required := m.cfg.ClearAfter
	if entry.candidate.Rank() > current.Rank() {
		required = m.cfg.RaiseAfter
	}
	if entry.streak < required {
		return nil
	}

	entry.state.CurrentLevel = entry.candidate
	entry.streak = 0
	transition := &domain.AlertTransition{
		MetricKey: metricKey,
		OldLevel:  current,
		NewLevel:  entry.state.CurrentLevel,
		Value:     value,
		Timestamp: ts,
	}
	if transition.Raised() {
		raisedAt := ts
		entry.state.LastRaisedAt = &raisedAt
	}
	return transition
}

// States returns a snapshot of all live alert states.
func (m *Monitor) States() []domain.AlertState {
	m.mu.RLock()
	entries := make([]*metricEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	m.mu.RUnlock()

	states := make([]domain.AlertState, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		states = append(states, entry.state)
		entry.mu.Unlock()
	}
	return states
}

func (m *Monitor) entry(metricKey string) *metricEntry {
	m.mu.RLock()
	entry, ok := m.entries[metricKey]
	m.mu.RUnlock()
	if ok {
		return entry
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok = m.entries[metricKey]; ok {
		return entry
	}
	entry = &metricEntry{
		state: domain.AlertState{
			MetricKey:    metricKey,
			CurrentLevel: domain.AlertLevelNone,
		},
		candidate: domain.AlertLevelNone,
	}
	m.entries[metricKey] = entry
	return entry
}

func levelFor(value float64, threshold config.MetricThreshold) domain.AlertLevel {
	switch {
	case value >= threshold.Critical:
		return domain.AlertLevelCritical
	case value >= threshold.Warning:
		return domain.AlertLevelWarning
	default:
		return domain.AlertLevelNone
	}
}
