package build

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordRun(t *testing.T) {
	m := NewMetrics()
	id := uuid.New()

	m.RecordRun(&Result{
		ID:        id,
		Written:   []string{"a_splice.go", "b_splice.go"},
		Unchanged: []string{"c_splice.go"},
		Removed:   []string{"d_splice.go"},
		Duration:  40 * time.Millisecond,
	}, nil)
	m.RecordRun(nil, errors.New("boom"))

	s := m.GetSnapshot()
	assert.Equal(t, int64(2), s.Runs)
	assert.Equal(t, int64(1), s.FailedRuns)
	assert.Equal(t, int64(2), s.FilesWritten)
	assert.Equal(t, int64(1), s.FilesUnchanged)
	assert.Equal(t, int64(1), s.FilesRemoved)
	assert.Equal(t, 40*time.Millisecond, s.TotalDuration)
	assert.Equal(t, 20*time.Millisecond, s.AverageDuration)
	assert.Equal(t, id.String(), s.LastRunID)
	assert.InDelta(t, 50.0, m.SuccessRate(), 0.001)

	m.Reset()
	assert.Equal(t, int64(0), m.GetSnapshot().Runs)
	assert.Equal(t, 0.0, m.SuccessRate())
}
