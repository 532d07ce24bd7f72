package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrorCollector collects diagnostics from concurrent scans.
type ErrorCollector struct {
	errors []*SplicerError
	other  []error
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]*SplicerError, 0),
		other:  make([]error, 0),
	}
}

// Add records err. Structured errors are kept apart so they can be sorted by
// location.
func (ec *ErrorCollector) Add(err error) {
	if err == nil {
		return
	}

	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	var se *SplicerError
	if errors.As(err, &se) {
		ec.errors = append(ec.errors, se)
		return
	}
	ec.other = append(ec.other, err)
}

// HasErrors returns true if any error was collected.
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	return len(ec.errors) > 0 || len(ec.other) > 0
}

// Count returns the number of collected errors.
func (ec *ErrorCollector) Count() int {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	return len(ec.errors) + len(ec.other)
}

// Diagnostics returns the structured errors ordered by file, line and column.
func (ec *ErrorCollector) Diagnostics() []*SplicerError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	result := make([]*SplicerError, len(ec.errors))
	copy(result, ec.errors)
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	return result
}

// Err returns nil when nothing was collected, the sole error when there is
// one, and a joined error otherwise.
func (ec *ErrorCollector) Err() error {
	diags := ec.Diagnostics()

	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	all := make([]error, 0, len(diags)+len(ec.other))
	for _, d := range diags {
		all = append(all, d)
	}
	all = append(all, ec.other...)

	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return errors.Join(all...)
	}
}

// Clear removes all collected errors.
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	ec.errors = ec.errors[:0]
	ec.other = ec.other[:0]
}

// Summary renders one line per diagnostic followed by a count.
func (ec *ErrorCollector) Summary() string {
	if !ec.HasErrors() {
		return ""
	}

	var b strings.Builder
	for _, d := range ec.Diagnostics() {
		b.WriteString(d.Error())
		b.WriteByte('\n')
	}

	ec.mutex.RLock()
	for _, err := range ec.other {
		b.WriteString(err.Error())
		b.WriteByte('\n')
	}
	ec.mutex.RUnlock()

	fmt.Fprintf(&b, "%d error(s)", ec.Count())

	return b.String()
}
