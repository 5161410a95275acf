package entities

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RecordingState is the state of the record button
type RecordingState string

const (
	RecordingIdle       RecordingState = "idle"
	RecordingActive     RecordingState = "recording"
	RecordingProcessing RecordingState = "processing"
)

var (
	// ErrInvalidTransition is returned when a gesture is not allowed in the current state
	ErrInvalidTransition = errors.New("invalid recording transition")
	// ErrStaleSession is returned when an event belongs to a session that is no longer current
	ErrStaleSession = errors.New("stale recording session")
)

// RecordingMachine guards the idle -> recording -> processing -> idle cycle.
// Every start opens a new session id; stop and complete must present it.
type RecordingMachine struct {
	mu        sync.Mutex
	state     RecordingState
	sessionID string
}

// NewRecordingMachine creates a machine in the idle state
func NewRecordingMachine() *RecordingMachine {
	return &RecordingMachine{state: RecordingIdle}
}

// State returns the current state
func (m *RecordingMachine) State() RecordingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID returns the id of the current or last session
func (m *RecordingMachine) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Start moves idle -> recording and returns the new session id
func (m *RecordingMachine) Start() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != RecordingIdle {
		return "", fmt.Errorf("%w: start while %s", ErrInvalidTransition, m.state)
	}
	m.sessionID = uuid.NewString()
	m.state = RecordingActive
	return m.sessionID, nil
}

// Stop moves recording -> processing
func (m *RecordingMachine) Stop(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID != m.sessionID {
		return ErrStaleSession
	}
	if m.state != RecordingActive {
		return fmt.Errorf("%w: stop while %s", ErrInvalidTransition, m.state)
	}
	m.state = RecordingProcessing
	return nil
}

// Complete moves processing -> idle once the relay answered, successfully or not
func (m *RecordingMachine) Complete(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID != m.sessionID {
		return ErrStaleSession
	}
	if m.state != RecordingProcessing {
		return fmt.Errorf("%w: complete while %s", ErrInvalidTransition, m.state)
	}
	m.state = RecordingIdle
	return nil
}

// Abort returns a recording session to idle when capture failed before any audio was produced
func (m *RecordingMachine) Abort(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID != m.sessionID {
		return ErrStaleSession
	}
	if m.state != RecordingActive {
		return fmt.Errorf("%w: abort while %s", ErrInvalidTransition, m.state)
	}
	m.state = RecordingIdle
	return nil
}
