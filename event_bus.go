package wizard

import (
	"log/slog"
	"sync"
	"time"

	"github.com/simon020286/go-wizard/models"
)

// eventBus delivers wizard events to registered listeners (private).
// Delivery is synchronous and in emission order so listeners observe the
// same sequence of transitions as the wizard.
type eventBus struct {
	wizardID  string
	listeners []models.EventListener
	mutex     sync.RWMutex
}

func newEventBus(wizardID string) *eventBus {
	return &eventBus{
		wizardID:  wizardID,
		listeners: make([]models.EventListener, 0),
	}
}

func (eb *eventBus) addListener(listener models.EventListener) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	eb.listeners = append(eb.listeners, listener)
}

// Emit sends an event to all registered listeners
func (eb *eventBus) Emit(eventType models.EventType, data map[string]interface{}) {
	eb.mutex.RLock()
	listeners := make([]models.EventListener, len(eb.listeners))
	copy(listeners, eb.listeners)
	eb.mutex.RUnlock()

	event := models.Event{
		Type:      eventType,
		WizardID:  eb.wizardID,
		Timestamp: time.Now(),
		Data:      data,
	}

	for _, listener := range listeners {
		func() {
			// A panicking listener must not break the wizard
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("Wizard listener panicked.", "event", eventType, "panic", r)
				}
			}()
			listener.OnEvent(event)
		}()
	}
}

func (eb *eventBus) EmitWizardStarted(steps int) {
	eb.Emit(models.EventWizardStarted, map[string]interface{}{
		"steps": steps,
	})
}

func (eb *eventBus) EmitWizardReset(from int) {
	eb.Emit(models.EventWizardReset, map[string]interface{}{
		"from": from,
	})
}

func (eb *eventBus) EmitStepAdvanced(from, to int, fromLabel, toLabel string) {
	eb.Emit(models.EventStepAdvanced, map[string]interface{}{
		"from":       from,
		"to":         to,
		"from_label": fromLabel,
		"to_label":   toLabel,
	})
}

func (eb *eventBus) EmitStatusChanged(from, to models.Status, index int) {
	eb.Emit(models.EventStatusChanged, map[string]interface{}{
		"from":  from.String(),
		"to":    to.String(),
		"index": index,
	})
}

func (eb *eventBus) EmitContextRecorded(key models.ContextKey) {
	eb.Emit(models.EventContextRecorded, map[string]interface{}{
		"key": string(key),
	})
}

func (eb *eventBus) EmitStepPresented(index int, label, kind, eventID string) {
	eb.Emit(models.EventStepPresented, map[string]interface{}{
		"index":    index,
		"label":    label,
		"kind":     kind,
		"event_id": eventID,
	})
}

func (eb *eventBus) EmitStepBlocked(index int, label string) {
	eb.Emit(models.EventStepBlocked, map[string]interface{}{
		"index": index,
		"label": label,
	})
}
