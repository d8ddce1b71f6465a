package models

import (
	"time"
)

// EventType is the type of an event emitted by a wizard
type EventType string

const (
	EventWizardStarted   EventType = "wizard.started"
	EventWizardReset     EventType = "wizard.reset"
	EventStatusChanged   EventType = "status.changed"
	EventContextRecorded EventType = "context.recorded"

	EventStepPresented EventType = "step.presented"
	EventStepBlocked   EventType = "step.blocked"
	EventStepAdvanced  EventType = "step.advanced"
)

// Event is a generic wizard event
type Event struct {
	Type      EventType              `json:"type"`
	WizardID  string                 `json:"wizard_id"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// EventListener receives events from a wizard
type EventListener interface {
	OnEvent(event Event)
}

// EventListenerFunc adapts a function to EventListener
type EventListenerFunc func(event Event)

func (f EventListenerFunc) OnEvent(event Event) {
	f(event)
}
