package build

import (
	"sync"
	"time"
)

// Metrics accumulates statistics over pipeline runs.
type Metrics struct {
	Runs            int64
	FailedRuns      int64
	FilesWritten    int64
	FilesUnchanged  int64
	FilesRemoved    int64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	LastRunID       string
	mutex           sync.RWMutex
}

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRun adds one finished run. A nil result counts as a failure.
func (m *Metrics) RecordRun(result *Result, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Runs++
	if err != nil || result == nil {
		m.FailedRuns++
	}
	if result != nil {
		m.FilesWritten += int64(len(result.Written))
		m.FilesUnchanged += int64(len(result.Unchanged))
		m.FilesRemoved += int64(len(result.Removed))
		m.TotalDuration += result.Duration
		m.LastRunID = result.ID.String()
	}
	m.AverageDuration = m.TotalDuration / time.Duration(m.Runs)
}

// GetSnapshot returns a copy of the current metrics.
func (m *Metrics) GetSnapshot() Metrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return Metrics{
		Runs:            m.Runs,
		FailedRuns:      m.FailedRuns,
		FilesWritten:    m.FilesWritten,
		FilesUnchanged:  m.FilesUnchanged,
		FilesRemoved:    m.FilesRemoved,
		TotalDuration:   m.TotalDuration,
		AverageDuration: m.AverageDuration,
		LastRunID:       m.LastRunID,
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Runs = 0
	m.FailedRuns = 0
	m.FilesWritten = 0
	m.FilesUnchanged = 0
	m.FilesRemoved = 0
	m.TotalDuration = 0
	m.AverageDuration = 0
	m.LastRunID = ""
}

// SuccessRate returns the share of successful runs as a percentage.
func (m *Metrics) SuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Runs == 0 {
		return 0.0
	}
	return float64(m.Runs-m.FailedRuns) / float64(m.Runs) * 100.0
}
