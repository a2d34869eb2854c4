// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a lifecycle update for one batch.
type Event struct {
	Batch     string    // Batch label, e.g. "gofmt#1"
	Tool      string    // Tool name
	Index     int       // Position of the batch in the execution plan
	Files     int       // Number of files in the batch
	Type      EventType // What happened
	Message   string    // Human-readable status message
	Timestamp time.Time // When it happened
	Data      EventData // Type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventPlanned is sent once per batch before dispatch begins.
	EventPlanned EventType = iota
	// EventStarted indicates the batch process has been spawned.
	EventStarted
	// EventCompleted indicates the process exited zero.
	EventCompleted
	// EventFailed indicates a non-zero exit, a spawn failure or a missing executable.
	EventFailed
	// EventSkipped indicates the batch was never attempted.
	EventSkipped
	// EventOutput carries the latest output line of a running batch.
	EventOutput
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventPlanned:
		return "planned"
	case EventStarted:
		return "started"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	case EventOutput:
		return "output"
	default:
		return "unknown"
	}
}

// MsgNotFound is the Message of an EventFailed sent for a batch whose
// executable could not be resolved.
const MsgNotFound = "not found"

// EventData contains type-specific information for progress events.
type EventData struct {
	// For EventCompleted/EventFailed
	ExitCode int
	Error    error
	// First line of stderr (or stdout when stderr is empty) for EventFailed,
	// the latest line for EventOutput.
	OutputLine string
	Duration   time.Duration
}

// Reporter is the interface for sending progress events.
type Reporter interface {
	// Report sends an event. Implementations must not block.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener receives progress events.
type Listener interface {
	OnEvent(event Event)
}

// NullReporter is a no-op Reporter.
type NullReporter struct{}

// Report does nothing.
func (NullReporter) Report(Event) {}

// Close does nothing.
func (NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return NullReporter{}
}
