// Package notify defines the one-way event sink the focus room core emits
// into. Rendering of toasts or sounds happens entirely in the consumer.
package notify

import "sync"

// Sink consumes session-complete and operation-failure events
type Sink interface {
	// SessionCompleted fires when a member's pomodoro countdown reaches zero
	SessionCompleted(roomID, memberID string)
	// OperationFailed fires when a user-initiated operation fails in a way
	// that needs surfacing for manual retry
	OperationFailed(operation string, err error)
}

// NopSink discards all events
type NopSink struct{}

func (NopSink) SessionCompleted(roomID, memberID string) {}
func (NopSink) OperationFailed(operation string, err error) {}

// CompletedEvent records a session-complete delivery
type CompletedEvent struct {
	RoomID   string
	MemberID string
}

// FailureEvent records an operation-failure delivery
type FailureEvent struct {
	Operation string
	Err       error
}

// Recorder captures events for inspection, used by tests and the adapter layer
type Recorder struct {
	mu        sync.Mutex
	completed []CompletedEvent
	failures  []FailureEvent
}

// NewRecorder creates an empty event recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SessionCompleted(roomID, memberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, CompletedEvent{RoomID: roomID, MemberID: memberID})
}

func (r *Recorder) OperationFailed(operation string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, FailureEvent{Operation: operation, Err: err})
}

// Completed returns a copy of the session-complete events seen so far
func (r *Recorder) Completed() []CompletedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CompletedEvent(nil), r.completed...)
}

// Failures returns a copy of the operation-failure events seen so far
func (r *Recorder) Failures() []FailureEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FailureEvent(nil), r.failures...)
}
