package analyzer

import "fmt"

// Stage identifies one pipeline phase.
type Stage string

const (
	StageScan   Stage = "scan"
	StageParse  Stage = "parse"
	StageGraph  Stage = "graph"
	StageChains Stage = "chains"
	StageCheck  Stage = "check"
	StageReport Stage = "report"
)

// ProgressStatus is the state of a stage.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent is one progress update.
type ProgressEvent struct {
	Stage   Stage
	Status  ProgressStatus
	Message string
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel
// of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{ch: make(chan ProgressEvent, 64)}
}

// Emit sends a progress event without blocking. If the channel is full
// the event is dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	if pr == nil {
		return
	}
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Stage)
	case ProgressComplete:
		if event.Message != "" {
			return fmt.Sprintf("  ✓ %s (%s)", event.Stage, event.Message)
		}
		return fmt.Sprintf("  ✓ %s", event.Stage)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Stage, event.Message)
	default:
		return fmt.Sprintf("  ? %s", event.Stage)
	}
}
