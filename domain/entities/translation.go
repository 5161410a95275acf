package entities

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TranslationPhase is a step of the translate panel
type TranslationPhase string

const (
	PhaseInput            TranslationPhase = "input"
	PhaseTranslating      TranslationPhase = "translating"
	PhaseTranslated       TranslationPhase = "translated"
	PhaseRecording        TranslationPhase = "recording"
	PhaseTranslatingReply TranslationPhase = "translating-reply"
	PhaseDone             TranslationPhase = "done"
)

// TranslationLanguages are the targets offered by the translate panel
var TranslationLanguages = []string{
	"English",
	"Portuguese",
	"Spanish",
	"French",
	"German",
	"Italian",
	"Japanese",
	"Chinese (Simplified)",
	"Korean",
	"Arabic",
	"Russian",
	"Dutch",
}

// TranslationResult is what the first translate call yields
type TranslationResult struct {
	Translation      string `json:"translation"`
	FromLanguageName string `json:"fromLanguageName"`
	FromLanguageCode string `json:"fromLanguageCode"`
}

// TranslationFlow is the two step translate-then-reply state machine.
// Transitions only move forward; Reset is the only way back to input.
// Each call the panel starts gets a request id; answers carrying another id
// are rejected with ErrStaleSession.
type TranslationFlow struct {
	mu             sync.Mutex
	phase          TranslationPhase
	requestID      string
	SourceText     string
	TargetLanguage string
	Result         TranslationResult
	Reply          string
	Err            error
}

// NewTranslationFlow creates a flow in the input phase
func NewTranslationFlow() *TranslationFlow {
	return &TranslationFlow{phase: PhaseInput, TargetLanguage: TranslationLanguages[0]}
}

// Phase returns the current phase
func (f *TranslationFlow) Phase() TranslationPhase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Current reports whether id belongs to the call in flight
func (f *TranslationFlow) Current(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return id != "" && id == f.requestID
}

// RequestID returns the id of the call in flight, empty after Reset
func (f *TranslationFlow) RequestID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestID
}

func (f *TranslationFlow) check(id string) error {
	if id == "" || id != f.requestID {
		return ErrStaleSession
	}
	return nil
}

func (f *TranslationFlow) move(from, to TranslationPhase) error {
	if f.phase != from {
		return fmt.Errorf("%w: %s -> %s while %s", ErrInvalidTransition, from, to, f.phase)
	}
	f.phase = to
	return nil
}

// BeginTranslate moves input -> translating and returns the request id the
// answer must carry
func (f *TranslationFlow) BeginTranslate(text, target string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.move(PhaseInput, PhaseTranslating); err != nil {
		return "", err
	}
	f.requestID = uuid.NewString()
	f.SourceText = text
	f.TargetLanguage = target
	f.Err = nil
	return f.requestID, nil
}

// TranslateDone moves translating -> translated, or back to input on failure
func (f *TranslationFlow) TranslateDone(id string, result TranslationResult, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sErr := f.check(id); sErr != nil {
		return sErr
	}
	if err != nil {
		if mErr := f.move(PhaseTranslating, PhaseInput); mErr != nil {
			return mErr
		}
		f.Err = err
		return nil
	}
	if mErr := f.move(PhaseTranslating, PhaseTranslated); mErr != nil {
		return mErr
	}
	f.Result = result
	return nil
}

// BeginRecording moves translated -> recording and returns the id of the reply
func (f *TranslationFlow) BeginRecording() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.move(PhaseTranslated, PhaseRecording); err != nil {
		return "", err
	}
	f.requestID = uuid.NewString()
	f.Err = nil
	return f.requestID, nil
}

// AbortRecording returns recording -> translated when the microphone could not be used
func (f *TranslationFlow) AbortRecording(id string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sErr := f.check(id); sErr != nil {
		return sErr
	}
	if mErr := f.move(PhaseRecording, PhaseTranslated); mErr != nil {
		return mErr
	}
	f.Err = err
	return nil
}

// EndRecording moves recording -> translating-reply
func (f *TranslationFlow) EndRecording() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.move(PhaseRecording, PhaseTranslatingReply)
}

// ReplyDone moves translating-reply -> done, or back to translated on failure
func (f *TranslationFlow) ReplyDone(id, reply string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sErr := f.check(id); sErr != nil {
		return sErr
	}
	if err != nil {
		if mErr := f.move(PhaseTranslatingReply, PhaseTranslated); mErr != nil {
			return mErr
		}
		f.Err = err
		return nil
	}
	if mErr := f.move(PhaseTranslatingReply, PhaseDone); mErr != nil {
		return mErr
	}
	f.Reply = reply
	return nil
}

// Reset clears everything and returns to input
func (f *TranslationFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = PhaseInput
	f.requestID = ""
	f.SourceText = ""
	f.Result = TranslationResult{}
	f.Reply = ""
	f.Err = nil
}
