// Package telemetry turns wizard events into OpenTelemetry spans. A wizard
// run is one root span; each presented step opens a child span that ends
// when the wizard moves on.
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/simon020286/go-wizard/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	RootSpanName = "wizard"

	WizardIDKey  = "wizard.id"
	StepsKey     = "wizard.steps"
	StepIndexKey = "wizard.step.index"
	StepLabelKey = "wizard.step.label"
	StepKindKey  = "wizard.step.kind"
	EventIDKey   = "wizard.event_id"
	StatusKey    = "wizard.status"
	ContextKey   = "wizard.context.key"
)

// Listener records wizard events as spans
type Listener struct {
	mu      sync.Mutex
	base    context.Context
	rootCtx context.Context
	tracer  trace.Tracer
	root    trace.Span
	step    trace.Span
}

// NewListener creates a listener whose spans descend from ctx
func NewListener(ctx context.Context, tracer trace.Tracer) (*Listener, error) {
	if tracer == nil {
		return nil, fmt.Errorf("create telemetry listener: tracer is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Listener{base: ctx, rootCtx: ctx, tracer: tracer}, nil
}

// OnEvent implements models.EventListener
func (l *Listener) OnEvent(event models.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch event.Type {
	case models.EventWizardStarted:
		l.endStepLocked()
		l.endRootLocked(nil)
		ctx, span := l.tracer.Start(l.base, RootSpanName, trace.WithAttributes(
			attribute.String(WizardIDKey, event.WizardID),
			attribute.Int(StepsKey, intData(event, "steps")),
		))
		l.rootCtx = ctx
		l.root = span

	case models.EventStepPresented:
		l.endStepLocked()
		label := stringData(event, "label")
		_, span := l.tracer.Start(l.rootCtx, label, trace.WithAttributes(
			attribute.Int(StepIndexKey, intData(event, "index")),
			attribute.String(StepLabelKey, label),
			attribute.String(StepKindKey, stringData(event, "kind")),
			attribute.String(EventIDKey, stringData(event, "event_id")),
		))
		l.step = span

	case models.EventStepAdvanced:
		if l.step != nil {
			l.step.SetStatus(codes.Ok, "")
		}
		l.endStepLocked()
		l.addRootEventLocked(event,
			attribute.Int("wizard.from", intData(event, "from")),
			attribute.Int("wizard.to", intData(event, "to")),
		)

	case models.EventStepBlocked:
		l.addRootEventLocked(event,
			attribute.Int(StepIndexKey, intData(event, "index")),
			attribute.String(StepLabelKey, stringData(event, "label")),
		)

	case models.EventStatusChanged:
		status := stringData(event, "to")
		if l.step != nil {
			l.step.AddEvent(string(event.Type), trace.WithAttributes(attribute.String(StatusKey, status)))
		}
		l.addRootEventLocked(event, attribute.String(StatusKey, status))

	case models.EventContextRecorded:
		l.addRootEventLocked(event, attribute.String(ContextKey, stringData(event, "key")))

	case models.EventWizardReset:
		l.endStepLocked()
		l.addRootEventLocked(event, attribute.Int("wizard.from", intData(event, "from")))
	}
}

// Fail records err on the active step span
func (l *Listener) Fail(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.step != nil {
		l.step.RecordError(err)
		l.step.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
	}
}

// Close ends every open span. err, if any, marks the root span failed.
func (l *Listener) Close(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.endStepLocked()
	l.endRootLocked(err)
}

func (l *Listener) endStepLocked() {
	if l.step == nil {
		return
	}
	l.step.End()
	l.step = nil
}

func (l *Listener) endRootLocked(err error) {
	if l.root == nil {
		return
	}
	if err != nil {
		l.root.RecordError(err)
		l.root.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
	}
	l.root.End()
	l.root = nil
	l.rootCtx = l.base
}

func (l *Listener) addRootEventLocked(event models.Event, attrs ...attribute.KeyValue) {
	if l.root == nil {
		return
	}
	l.root.AddEvent(string(event.Type), trace.WithAttributes(attrs...))
}

func intData(event models.Event, key string) int {
	v, _ := event.Data[key].(int)
	return v
}

func stringData(event models.Event, key string) string {
	v, _ := event.Data[key].(string)
	return v
}
