package logging

import (
	"context"
	"log/slog"
	"sort"

	"github.com/simon020286/go-wizard/models"
)

// EventLogger writes wizard events to a slog logger. Transitions a user
// notices (status changes, resets) are logged at info, the rest at debug.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger creates a listener logging to logger, or to the default
// logger when nil.
func NewEventLogger(logger *slog.Logger) *EventLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLogger{logger: logger}
}

// OnEvent implements models.EventListener
func (l *EventLogger) OnEvent(event models.Event) {
	level := slog.LevelDebug
	switch event.Type {
	case models.EventStatusChanged, models.EventWizardReset, models.EventWizardStarted:
		level = slog.LevelInfo
	}

	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("wizard", event.WizardID))

	keys := make([]string, 0, len(event.Data))
	for k := range event.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, event.Data[k]))
	}

	l.logger.LogAttrs(context.Background(), level, string(event.Type), attrs...)
}
