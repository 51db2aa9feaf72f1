package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultTracker_Start(t *testing.T) {
	tracker := &DefaultTracker{}
	op := tracker.Start("Receiving objects")

	if op == nil {
		t.Fatal("Expected non-nil operation")
	}
	if op.Name != "Receiving objects" {
		t.Errorf("Expected operation name 'Receiving objects', got '%s'", op.Name)
	}
	if op.StartTime.IsZero() {
		t.Error("Expected non-zero start time")
	}
	if op.Status != StatusInProgress {
		t.Errorf("Expected status '%s', got '%s'", StatusInProgress, op.Status)
	}
}

func TestDefaultTracker_Update(t *testing.T) {
	tracker := &DefaultTracker{}
	tracker.Start("Counting objects")

	tracker.Update(50, 100)
	if tracker.CurrentOperation.LastCurrent != 50 {
		t.Errorf("Expected LastCurrent 50, got %d", tracker.CurrentOperation.LastCurrent)
	}
	if got := tracker.CurrentOperation.Percent(); got != 50 {
		t.Errorf("Expected 50%%, got %.2f", got)
	}

	time.Sleep(50 * time.Millisecond)
	tracker.Update(75, 100)
	if tracker.CurrentOperation.ProgressRate <= 0 {
		t.Error("Expected positive progress rate")
	}
	if tracker.CurrentOperation.EstimatedETA.IsZero() {
		t.Error("Expected an ETA once a rate is known")
	}
}

func TestDefaultTracker_CompleteAndError(t *testing.T) {
	tracker := &DefaultTracker{}
	tracker.Start("op")
	tracker.Complete()
	if tracker.CurrentOperation.Status != StatusCompleted {
		t.Errorf("Expected status '%s', got '%s'", StatusCompleted, tracker.CurrentOperation.Status)
	}

	tracker.Start("op")
	tracker.Error(errors.New("boom"))
	if tracker.CurrentOperation.Status != StatusFailed {
		t.Errorf("Expected status '%s', got '%s'", StatusFailed, tracker.CurrentOperation.Status)
	}
}

func TestDefaultTracker_EdgeCases(t *testing.T) {
	tracker := &DefaultTracker{}

	tracker.Update(50, 100)
	tracker.Complete()
	tracker.Error(errors.New("test error"))
	if tracker.CurrentOperation != nil {
		t.Error("Expected nil operation without start")
	}

	tracker.Start("op")
	for i := 1; i <= rateHistorySize+5; i++ {
		time.Sleep(2 * time.Millisecond)
		tracker.Update(int64(i), 100)
		if len(tracker.CurrentOperation.RateHistory) > rateHistorySize {
			t.Errorf("Rate history exceeded max size: %d", len(tracker.CurrentOperation.RateHistory))
		}
	}

	var zero Operation
	if zero.Percent() != 0 {
		t.Error("Expected 0% for an operation without a total")
	}
}

func TestConsoleTracker(t *testing.T) {
	var out bytes.Buffer
	tracker := NewConsoleTracker(&out)

	tracker.Update(1, 2) // ignored, nothing started
	tracker.Start("Compressing objects")
	tracker.Update(1, 4)
	tracker.Complete()
	tracker.Start("Resolving deltas")
	tracker.Error(errors.New("connection reset"))

	got := out.String()
	for _, want := range []string{
		"Starting: Compressing objects",
		"Compressing objects: 25.00% (1/4",
		"Completed: Compressing objects",
		"Error: Resolving deltas - connection reset",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}
