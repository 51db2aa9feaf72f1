// Package progress reports the progress of a running import to an optional sink.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Tracker interface defines methods for tracking operation progress.
// A fetch reports one operation per transfer stage (counting, compressing,
// receiving, resolving).
type Tracker interface {
	Start(operation string) *Operation
	Update(current, total int64)
	Complete()
	Error(err error)
}

// Operation status values
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Operation represents a tracked operation
type Operation struct {
	Name         string
	StartTime    time.Time
	Status       string
	LastUpdate   time.Time
	LastCurrent  int64
	LastTotal    int64
	ProgressRate float64 // items per second
	RateHistory  []float64
	EstimatedETA time.Time
}

const (
	rateHistorySize = 10 // Keep last 10 rate measurements for averaging
)

func newOperation(name string) *Operation {
	now := time.Now()
	return &Operation{
		Name:        name,
		StartTime:   now,
		LastUpdate:  now,
		Status:      StatusInProgress,
		RateHistory: make([]float64, 0, rateHistorySize),
	}
}

// record folds a new sample into the rolling rate and ETA.
func (op *Operation) record(current, total int64, now time.Time) {
	if op.LastCurrent > 0 {
		timeDiff := now.Sub(op.LastUpdate).Seconds()
		if timeDiff > 0 {
			currentRate := float64(current-op.LastCurrent) / timeDiff

			if len(op.RateHistory) >= rateHistorySize {
				op.RateHistory = op.RateHistory[1:]
			}
			op.RateHistory = append(op.RateHistory, currentRate)

			var totalRate float64
			for _, rate := range op.RateHistory {
				totalRate += rate
			}
			op.ProgressRate = totalRate / float64(len(op.RateHistory))

			if op.ProgressRate > 0 {
				remainingSeconds := float64(total-current) / op.ProgressRate
				op.EstimatedETA = now.Add(time.Duration(remainingSeconds) * time.Second)
			}
		}
	}

	op.LastUpdate = now
	op.LastCurrent = current
	op.LastTotal = total
}

// Percent returns the completion ratio of the last sample in [0, 100].
func (op *Operation) Percent() float64 {
	if op.LastTotal <= 0 {
		return 0
	}
	return float64(op.LastCurrent) / float64(op.LastTotal) * 100
}

// DefaultTracker records progress without printing anything
type DefaultTracker struct {
	CurrentOperation *Operation
}

// Start begins tracking a new operation
func (t *DefaultTracker) Start(operation string) *Operation {
	t.CurrentOperation = newOperation(operation)
	return t.CurrentOperation
}

// Complete marks the operation as completed
func (t *DefaultTracker) Complete() {
	if t.CurrentOperation != nil {
		t.CurrentOperation.Status = StatusCompleted
	}
}

// Error marks the operation as failed with an error
func (t *DefaultTracker) Error(err error) {
	if t.CurrentOperation != nil {
		t.CurrentOperation.Status = StatusFailed
	}
}

// Update updates the progress of the current operation
func (t *DefaultTracker) Update(current, total int64) {
	if t.CurrentOperation == nil {
		return
	}
	t.CurrentOperation.record(current, total, time.Now())
}

// ConsoleTracker implements Tracker for terminal output
type ConsoleTracker struct {
	out              io.Writer
	currentOperation *Operation
}

// NewConsoleTracker creates a tracker writing to out; nil means stderr.
func NewConsoleTracker(out io.Writer) *ConsoleTracker {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleTracker{out: out}
}

// Start begins tracking a new operation
func (t *ConsoleTracker) Start(operation string) *Operation {
	t.currentOperation = newOperation(operation)
	fmt.Fprintf(t.out, "Starting: %s\n", operation)
	return t.currentOperation
}

// Update updates the progress of the current operation
func (t *ConsoleTracker) Update(current, total int64) {
	if t.currentOperation == nil {
		return
	}

	now := time.Now()
	t.currentOperation.record(current, total, now)

	etaStr := "calculating..."
	if !t.currentOperation.EstimatedETA.IsZero() {
		remaining := t.currentOperation.EstimatedETA.Sub(now).Round(time.Second)
		if remaining > 0 {
			etaStr = remaining.String()
		} else {
			etaStr = "almost done"
		}
	}

	fmt.Fprintf(t.out, "\r%s: %.2f%% (%d/%d, %.1f/s, ETA: %s)",
		t.currentOperation.Name,
		t.currentOperation.Percent(),
		current,
		total,
		t.currentOperation.ProgressRate,
		etaStr)
}

// Complete marks the current operation as completed
func (t *ConsoleTracker) Complete() {
	if t.currentOperation == nil {
		return
	}
	duration := time.Since(t.currentOperation.StartTime).Round(time.Millisecond)
	fmt.Fprintf(t.out, "\nCompleted: %s (took %v)\n", t.currentOperation.Name, duration)
	t.currentOperation = nil
}

// Error marks the current operation as failed
func (t *ConsoleTracker) Error(err error) {
	if t.currentOperation == nil {
		return
	}
	fmt.Fprintf(t.out, "\nError: %s - %v\n", t.currentOperation.Name, err)
	t.currentOperation = nil
}
