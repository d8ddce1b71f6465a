package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/simon020286/go-wizard/builder"
	"github.com/simon020286/go-wizard/models"
)

// BlockedNotice is presented instead of the active step while the wizard is blocked
const BlockedNotice = "Approval request for this step has been sent"

var (
	// ErrNoSteps is returned when starting a wizard with no steps
	ErrNoSteps = errors.New("wizard has no steps")

	// ErrNotStarted is returned when operating on a wizard before Start
	ErrNotStarted = errors.New("wizard not started")
)

// OverflowPolicy decides what Advance does on the last step
type OverflowPolicy int

const (
	// OverflowFail returns an OutOfRangeError and keeps the index
	OverflowFail OverflowPolicy = iota
	// OverflowClamp keeps the index on the last step without error
	OverflowClamp
)

// ParseOverflowPolicy converts the configuration form of a policy.
// An empty string selects OverflowFail.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "fail":
		return OverflowFail, nil
	case "clamp":
		return OverflowClamp, nil
	default:
		return 0, fmt.Errorf("unknown overflow policy: %s", s)
	}
}

// Step is a labelled stage of the wizard
type Step struct {
	Label   string         // Label shown in the progress bar, unique within a wizard
	Handler models.Handler // Logic run while the step is active
}

// NewStep creates a new step
func NewStep(label string, handler models.Handler) *Step {
	return &Step{
		Label:   label,
		Handler: handler,
	}
}

// PresentationKind tells what a wizard presented
type PresentationKind int

const (
	// PresentStep means the active step handler ran
	PresentStep PresentationKind = iota
	// PresentBlocked means the blocked notice was shown instead
	PresentBlocked
)

// Presentation describes what Present showed to the host
type Presentation struct {
	Kind   PresentationKind
	Index  int
	Label  string
	Notice string // Set only for PresentBlocked
}

// Wizard owns an ordered sequence of steps and tracks which one is active
type Wizard struct {
	id    string
	steps []*Step
	mutex sync.Mutex

	started bool
	index   int
	status  models.Status
	context models.Context

	overflow OverflowPolicy

	eventBus *eventBus

	globalVariables map[string]any
	globalSecrets   map[string]any
}

// NewWizard creates a new wizard with a unique ID
func NewWizard() *Wizard {
	id := uuid.New().String()
	return &Wizard{
		id:       id,
		steps:    []*Step{},
		context:  make(models.Context),
		eventBus: newEventBus(id),
	}
}

// ID returns the unique wizard identifier
func (w *Wizard) ID() string {
	return w.id
}

// AddListener adds a listener to receive events from the wizard
func (w *Wizard) AddListener(listener models.EventListener) {
	w.eventBus.addListener(listener)
}

// SetOverflowPolicy sets the behaviour of Advance on the last step
func (w *Wizard) SetOverflowPolicy(policy OverflowPolicy) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.overflow = policy
}

// SetGlobalVariables sets the variables visible to every step
func (w *Wizard) SetGlobalVariables(variables map[string]any) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.globalVariables = variables
}

// SetGlobalSecrets sets the secrets visible to every step
func (w *Wizard) SetGlobalSecrets(secrets map[string]any) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.globalSecrets = secrets
}

// AddStep appends a step to the wizard
func (w *Wizard) AddStep(step *Step) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if step == nil {
		panic("step cannot be nil")
	}
	if step.Label == "" {
		panic("step label cannot be empty")
	}
	if step.Handler == nil {
		panic("step handler cannot be nil")
	}
	if w.started {
		panic("cannot add steps to a started wizard")
	}

	w.steps = append(w.steps, step)
}

// Validate checks that the wizard can be started
func (w *Wizard) Validate() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.validateLocked()
}

func (w *Wizard) validateLocked() error {
	if len(w.steps) == 0 {
		return ErrNoSteps
	}

	seen := make(map[string]bool, len(w.steps))
	for _, step := range w.steps {
		if seen[step.Label] {
			return fmt.Errorf("duplicate step label '%s'", step.Label)
		}
		seen[step.Label] = true
	}
	return nil
}

// Start initialises the state on the first step with the given context
func (w *Wizard) Start(initial models.Context) error {
	w.mutex.Lock()
	if err := w.validateLocked(); err != nil {
		w.mutex.Unlock()
		return fmt.Errorf("wizard validation failed: %w", err)
	}

	w.started = true
	w.index = 0
	w.status = models.StatusProceeding
	w.context = initial.Clone()
	steps := len(w.steps)
	w.mutex.Unlock()

	w.eventBus.EmitWizardStarted(steps)
	return nil
}

// State returns a snapshot of the wizard state
func (w *Wizard) State() models.WorkflowState {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return models.WorkflowState{
		CurrentIndex: w.index,
		Status:       w.status,
		Context:      w.context.Clone(),
	}
}

// ActiveStep returns the step at the current index
func (w *Wizard) ActiveStep() *Step {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if len(w.steps) == 0 {
		return nil
	}
	return w.steps[w.index]
}

// Labels returns the step labels in order
func (w *Wizard) Labels() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	labels := make([]string, len(w.steps))
	for i, step := range w.steps {
		labels[i] = step.Label
	}
	return labels
}

// Advance moves to the next step.
// On the last step the overflow policy decides between an OutOfRangeError
// and staying in place.
func (w *Wizard) Advance() error {
	w.mutex.Lock()
	if !w.started {
		w.mutex.Unlock()
		return ErrNotStarted
	}

	from := w.index
	next := from + 1
	if next >= len(w.steps) {
		policy := w.overflow
		length := len(w.steps)
		w.mutex.Unlock()

		if policy == OverflowClamp {
			return nil
		}
		return models.ErrOutOfRange(next, length)
	}

	w.index = next
	fromLabel := w.steps[from].Label
	toLabel := w.steps[next].Label
	w.mutex.Unlock()

	w.eventBus.EmitStepAdvanced(from, next, fromLabel, toLabel)
	return nil
}

// Reset brings the wizard back to the first step.
// Context and status are left untouched.
func (w *Wizard) Reset() {
	w.mutex.Lock()
	from := w.index
	w.index = 0
	w.mutex.Unlock()

	w.eventBus.EmitWizardReset(from)
}

// SetStatus blocks or unblocks the wizard.
// Values other than PROCEEDING and BLOCKED are ignored.
func (w *Wizard) SetStatus(status models.Status) {
	if !status.Valid() {
		slog.Warn("Ignoring unknown wizard status.", "wizard", w.id, "status", uint8(status))
		return
	}

	w.mutex.Lock()
	from := w.status
	if from == status {
		w.mutex.Unlock()
		return
	}
	w.status = status
	index := w.index
	w.mutex.Unlock()

	w.eventBus.EmitStatusChanged(from, status, index)
}

// RecordContext stores a value in the context, overwriting any previous one
func (w *Wizard) RecordContext(key models.ContextKey, value any) {
	w.mutex.Lock()
	w.context[key] = value
	w.mutex.Unlock()

	w.eventBus.EmitContextRecorded(key)
}

// Present runs the active step when proceeding, or shows the blocked notice.
// Errors returned by the step are passed back unchanged.
func (w *Wizard) Present(ctx context.Context) (Presentation, error) {
	w.mutex.Lock()
	if !w.started {
		w.mutex.Unlock()
		return Presentation{}, ErrNotStarted
	}

	index := w.index
	step := w.steps[index]

	if w.status == models.StatusBlocked {
		w.mutex.Unlock()
		w.eventBus.EmitStepBlocked(index, step.Label)
		return Presentation{
			Kind:   PresentBlocked,
			Index:  index,
			Label:  step.Label,
			Notice: BlockedNotice,
		}, nil
	}

	contract := step.Handler.Contract()
	state := models.WorkflowState{
		CurrentIndex: index,
		Status:       w.status,
		Context:      w.context.Filter(contract.Reads),
	}
	variables := w.globalVariables
	secrets := w.globalSecrets
	w.mutex.Unlock()

	input := models.NewStepInput(step.Label, state, w.mutatorsFor(step))
	input.Contract = contract
	input.EventID = builder.GenerateEventID()
	input.GlobalVariables = variables
	input.GlobalSecrets = secrets

	w.eventBus.EmitStepPresented(index, step.Label, step.Handler.Kind().String(), input.EventID)

	presentation := Presentation{
		Kind:  PresentStep,
		Index: index,
		Label: step.Label,
	}
	return presentation, step.Handler.Run(ctx, input)
}

// mutatorsFor scopes the wizard callbacks to the contract of a step
func (w *Wizard) mutatorsFor(step *Step) models.Mutators {
	contract := step.Handler.Contract()
	kind := step.Handler.Kind()

	return models.Mutators{
		Advance:   w.Advance,
		Reset:     w.Reset,
		SetStatus: w.SetStatus,
		RecordContext: func(key models.ContextKey, value any) error {
			if !contract.CanWrite(key) {
				return models.ErrUndeclaredWrite(kind, key)
			}
			w.RecordContext(key, value)
			return nil
		},
	}
}
