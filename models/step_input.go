package models

import (
	"sync"
	"time"
)

// Mutators are the callbacks a step uses to drive the wizard
type Mutators struct {
	Advance       func() error
	Reset         func()
	SetStatus     func(Status)
	RecordContext func(key ContextKey, value any) error
}

// StepInput contains everything the active step is given when presented
type StepInput struct {
	Label           string         // Label of the active step
	State           WorkflowState  // Snapshot with the context restricted to the step's reads
	Contract        Contract       // Keys the step declared it reads and writes
	EventID         string         // Unique presentation ID
	Timestamp       time.Time      // Presentation timestamp
	GlobalVariables map[string]any // Wizard variables
	GlobalSecrets   map[string]any // Wizard secrets
	mutators        Mutators
	mu              sync.RWMutex
}

// NewStepInput builds the input handed to a step
func NewStepInput(label string, state WorkflowState, mutators Mutators) *StepInput {
	return &StepInput{
		Label:     label,
		State:     state,
		Timestamp: time.Now(),
		mutators:  mutators,
	}
}

func (si *StepInput) Lock() {
	si.mu.Lock()
}

func (si *StepInput) Unlock() {
	si.mu.Unlock()
}

// Value returns a context value visible to the step
func (si *StepInput) Value(key ContextKey) (any, bool) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	v, ok := si.State.Context[key]
	return v, ok
}

// Advance moves the wizard to the next step
func (si *StepInput) Advance() error {
	if si.mutators.Advance == nil {
		return nil
	}
	return si.mutators.Advance()
}

// Reset brings the wizard back to the first step
func (si *StepInput) Reset() {
	if si.mutators.Reset != nil {
		si.mutators.Reset()
	}
}

// SetStatus changes the wizard status
func (si *StepInput) SetStatus(status Status) {
	if si.mutators.SetStatus != nil {
		si.mutators.SetStatus(status)
	}
}

// RecordContext stores a value produced by the step
func (si *StepInput) RecordContext(key ContextKey, value any) error {
	if si.mutators.RecordContext != nil {
		if err := si.mutators.RecordContext(key, value); err != nil {
			return err
		}
	}

	si.mu.Lock()
	if si.State.Context == nil {
		si.State.Context = make(Context)
	}
	si.State.Context[key] = value
	si.mu.Unlock()
	return nil
}
