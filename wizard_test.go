package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/simon020286/go-wizard/models"
)

// mockHandler records how often it ran and delegates to run when set
type mockHandler struct {
	kind     models.StepKind
	contract models.Contract
	run      func(ctx context.Context, input *models.StepInput) error

	mu    sync.Mutex
	calls int
	seen  []models.Context
}

func (m *mockHandler) Kind() models.StepKind {
	if m.kind == 0 {
		return models.KindCreateApp
	}
	return m.kind
}

func (m *mockHandler) Contract() models.Contract { return m.contract }

func (m *mockHandler) Run(ctx context.Context, input *models.StepInput) error {
	m.mu.Lock()
	m.calls++
	m.seen = append(m.seen, input.State.Context.Clone())
	m.mu.Unlock()

	if m.run != nil {
		return m.run(ctx, input)
	}
	return nil
}

func (m *mockHandler) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// newTestWizard builds and starts a wizard with one mock handler per label
func newTestWizard(t *testing.T, labels ...string) (*Wizard, []*mockHandler) {
	t.Helper()

	w := NewWizard()
	handlers := make([]*mockHandler, len(labels))
	for i, label := range labels {
		handlers[i] = &mockHandler{}
		w.AddStep(NewStep(label, handlers[i]))
	}
	if err := w.Start(models.Context{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return w, handlers
}

func TestNewWizard(t *testing.T) {
	w := NewWizard()

	if w == nil {
		t.Fatal("NewWizard returned nil")
	}
	if w.ID() == "" {
		t.Error("wizard ID is empty")
	}
	if w.eventBus == nil {
		t.Error("eventBus not initialized")
	}
	if NewWizard().ID() == w.ID() {
		t.Error("two wizards share an ID")
	}
}

func TestWizard_AddStepPanics(t *testing.T) {
	tests := []struct {
		name string
		step *Step
	}{
		{"nil step", nil},
		{"empty label", NewStep("", &mockHandler{})},
		{"nil handler", NewStep("A", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("AddStep did not panic")
				}
			}()
			NewWizard().AddStep(tt.step)
		})
	}
}

func TestWizard_AddStepAfterStartPanics(t *testing.T) {
	w, _ := newTestWizard(t, "A")

	defer func() {
		if recover() == nil {
			t.Error("AddStep on a started wizard did not panic")
		}
	}()
	w.AddStep(NewStep("B", &mockHandler{}))
}

func TestWizard_StartValidation(t *testing.T) {
	t.Run("no steps", func(t *testing.T) {
		err := NewWizard().Start(nil)
		if !errors.Is(err, ErrNoSteps) {
			t.Fatalf("Start() error = %v, want ErrNoSteps", err)
		}
	})

	t.Run("duplicate labels", func(t *testing.T) {
		w := NewWizard()
		w.AddStep(NewStep("A", &mockHandler{}))
		w.AddStep(NewStep("A", &mockHandler{}))
		if err := w.Start(nil); err == nil {
			t.Fatal("Start() error = nil, want duplicate label error")
		}
	})
}

func TestWizard_StartState(t *testing.T) {
	for n := 1; n <= 4; n++ {
		labels := []string{"A", "B", "C", "D"}[:n]
		w, _ := newTestWizard(t, labels...)

		state := w.State()
		if state.CurrentIndex != 0 {
			t.Errorf("n=%d: CurrentIndex = %d, want 0", n, state.CurrentIndex)
		}
		if state.Status != models.StatusProceeding {
			t.Errorf("n=%d: Status = %s, want PROCEEDING", n, state.Status)
		}
	}
}

func TestWizard_StartCopiesInitialContext(t *testing.T) {
	w := NewWizard()
	w.AddStep(NewStep("A", &mockHandler{}))

	initial := models.Context{models.KeyAPIID: "api-1"}
	if err := w.Start(initial); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	initial[models.KeyAPIID] = "changed"

	if got, _ := w.State().Context.String(models.KeyAPIID); got != "api-1" {
		t.Fatalf("context api_id = %q, want api-1", got)
	}
}

func TestWizard_OperationsBeforeStart(t *testing.T) {
	w := NewWizard()
	w.AddStep(NewStep("A", &mockHandler{}))

	if err := w.Advance(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Advance() error = %v, want ErrNotStarted", err)
	}
	if _, err := w.Present(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Present() error = %v, want ErrNotStarted", err)
	}
}

func TestWizard_AdvanceKTimes(t *testing.T) {
	labels := []string{"A", "B", "C", "D", "E"}
	for k := 0; k < len(labels); k++ {
		w, _ := newTestWizard(t, labels...)
		for i := 0; i < k; i++ {
			if err := w.Advance(); err != nil {
				t.Fatalf("Advance() #%d error = %v", i, err)
			}
		}
		if got := w.State().CurrentIndex; got != k {
			t.Errorf("after %d advances CurrentIndex = %d", k, got)
		}
	}
}

func TestWizard_AdvanceOverflow(t *testing.T) {
	t.Run("fail", func(t *testing.T) {
		w, _ := newTestWizard(t, "A", "B")
		if err := w.Advance(); err != nil {
			t.Fatalf("first Advance() error = %v", err)
		}

		err := w.Advance()
		var oor *models.OutOfRangeError
		if !errors.As(err, &oor) {
			t.Fatalf("second Advance() error = %v, want *OutOfRangeError", err)
		}
		if oor.Index != 2 || oor.Len != 2 {
			t.Errorf("OutOfRangeError = %+v", oor)
		}
		if got := w.State().CurrentIndex; got != 1 {
			t.Errorf("CurrentIndex = %d, want 1", got)
		}
	})

	t.Run("clamp", func(t *testing.T) {
		w := NewWizard()
		w.SetOverflowPolicy(OverflowClamp)
		w.AddStep(NewStep("A", &mockHandler{}))
		w.AddStep(NewStep("B", &mockHandler{}))
		if err := w.Start(nil); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		for i := 0; i < 3; i++ {
			if err := w.Advance(); err != nil {
				t.Fatalf("Advance() #%d error = %v", i, err)
			}
		}
		if got := w.State().CurrentIndex; got != 1 {
			t.Errorf("CurrentIndex = %d, want 1", got)
		}
	})
}

func TestWizard_ResetKeepsContextAndStatus(t *testing.T) {
	w, _ := newTestWizard(t, "A", "B", "C")
	w.RecordContext(models.KeyAPIID, "api-1")
	_ = w.Advance()
	_ = w.Advance()
	w.SetStatus(models.StatusBlocked)

	w.Reset()

	state := w.State()
	if state.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0", state.CurrentIndex)
	}
	if state.Status != models.StatusBlocked {
		t.Errorf("Status = %s, want BLOCKED", state.Status)
	}
	if got, _ := state.Context.String(models.KeyAPIID); got != "api-1" {
		t.Errorf("context api_id = %q, want api-1", got)
	}
}

func TestWizard_RecordContextOverwrites(t *testing.T) {
	w, _ := newTestWizard(t, "A")

	w.RecordContext(models.KeyCreatedApp, "v1")
	w.RecordContext(models.KeyCreatedApp, "v2")

	if got := w.State().Context[models.KeyCreatedApp]; got != "v2" {
		t.Fatalf("created_app = %v, want v2", got)
	}
}

func TestWizard_SetStatusRoundTrip(t *testing.T) {
	w, _ := newTestWizard(t, "A", "B")
	_ = w.Advance()
	w.RecordContext(models.KeyAPIID, "api-1")
	before := w.State()

	w.SetStatus(models.StatusBlocked)
	w.SetStatus(models.StatusProceeding)

	after := w.State()
	if after.CurrentIndex != before.CurrentIndex {
		t.Errorf("CurrentIndex = %d, want %d", after.CurrentIndex, before.CurrentIndex)
	}
	if len(after.Context) != len(before.Context) || after.Context[models.KeyAPIID] != "api-1" {
		t.Errorf("Context = %v, want %v", after.Context, before.Context)
	}
}

func TestWizard_SetStatusIgnoresUnknown(t *testing.T) {
	w, handlers := newTestWizard(t, "A", "B")
	w.SetStatus(models.StatusBlocked)

	var events []models.EventType
	w.AddListener(models.EventListenerFunc(func(e models.Event) {
		events = append(events, e.Type)
	}))

	w.SetStatus(models.Status(7))

	if got := w.State().Status; got != models.StatusBlocked {
		t.Fatalf("Status = %s, want BLOCKED", got)
	}
	if len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}

	p, err := w.Present(context.Background())
	if err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if p.Kind != PresentBlocked || handlers[0].callCount() != 0 {
		t.Errorf("Present() = %+v after an unknown status, want the blocked notice", p)
	}
}

func TestWizard_StateIsSnapshot(t *testing.T) {
	w, _ := newTestWizard(t, "A")
	w.RecordContext(models.KeyAPIID, "api-1")

	state := w.State()
	state.Context[models.KeyAPIID] = "changed"

	if got, _ := w.State().Context.String(models.KeyAPIID); got != "api-1" {
		t.Fatalf("wizard context changed through snapshot: %q", got)
	}
}

func TestWizard_BlockedScenario(t *testing.T) {
	w, handlers := newTestWizard(t, "A", "B", "C")
	ctx := context.Background()

	if err := w.Advance(); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if got := w.State().CurrentIndex; got != 1 {
		t.Fatalf("CurrentIndex = %d, want 1", got)
	}

	w.RecordContext(models.KeyAPIID, "api-1")
	w.SetStatus(models.StatusBlocked)

	p, err := w.Present(ctx)
	if err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if p.Kind != PresentBlocked || p.Notice != BlockedNotice {
		t.Fatalf("blocked Present() = %+v", p)
	}
	if handlers[1].callCount() != 0 {
		t.Fatal("step B ran while blocked")
	}

	contextBefore := w.State().Context
	w.SetStatus(models.StatusProceeding)

	p, err = w.Present(ctx)
	if err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if p.Kind != PresentStep || p.Label != "B" || p.Index != 1 {
		t.Fatalf("Present() = %+v, want step B", p)
	}
	if handlers[1].callCount() != 1 {
		t.Fatalf("step B calls = %d, want 1", handlers[1].callCount())
	}

	contextAfter := w.State().Context
	if len(contextAfter) != len(contextBefore) || contextAfter[models.KeyAPIID] != contextBefore[models.KeyAPIID] {
		t.Fatalf("context changed across unblock: %v -> %v", contextBefore, contextAfter)
	}
}

func TestWizard_PresentFiltersContextByReads(t *testing.T) {
	handler := &mockHandler{
		contract: models.Contract{Reads: []models.ContextKey{models.KeyAPIID}},
	}
	w := NewWizard()
	w.AddStep(NewStep("A", handler))
	if err := w.Start(models.Context{
		models.KeyAPIID:           "api-1",
		models.KeyCreatedToken:    "secret",
		models.KeyPendingWorkflow: "x",
	}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := w.Present(context.Background()); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	seen := handler.seen[0]
	if len(seen) != 1 || seen[models.KeyAPIID] != "api-1" {
		t.Fatalf("step saw context %v, want only api_id", seen)
	}
}

func TestWizard_PresentInputCarriesContract(t *testing.T) {
	contract := models.Contract{
		Reads:  []models.ContextKey{models.KeyAPIID},
		Writes: []models.ContextKey{models.KeyRedirect},
	}
	var got models.Contract
	handler := &mockHandler{
		contract: contract,
		run: func(ctx context.Context, input *models.StepInput) error {
			got = input.Contract
			return nil
		},
	}
	w := NewWizard()
	w.AddStep(NewStep("A", handler))
	if err := w.Start(nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := w.Present(context.Background()); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	if !got.CanRead(models.KeyAPIID) || got.CanRead(models.KeyCreatedToken) {
		t.Errorf("input contract reads = %v, want %v", got.Reads, contract.Reads)
	}
	if !got.CanWrite(models.KeyRedirect) {
		t.Errorf("input contract writes = %v, want %v", got.Writes, contract.Writes)
	}
}

func TestWizard_GlobalsSetDuringPresent(t *testing.T) {
	w, _ := newTestWizard(t, "A")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			w.SetGlobalVariables(map[string]any{"i": i})
			w.SetGlobalSecrets(map[string]any{"token": "s3cret"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if _, err := w.Present(context.Background()); err != nil {
				t.Errorf("Present() error = %v", err)
				return
			}
		}
	}()
	wg.Wait()
}

func TestWizard_PresentEnforcesWrites(t *testing.T) {
	var writeErr, undeclaredErr error
	handler := &mockHandler{
		contract: models.Contract{Writes: []models.ContextKey{models.KeyCreatedApp}},
		run: func(ctx context.Context, input *models.StepInput) error {
			writeErr = input.RecordContext(models.KeyCreatedApp, "app-1")
			undeclaredErr = input.RecordContext(models.KeyCreatedToken, "tok")
			return nil
		},
	}
	w := NewWizard()
	w.AddStep(NewStep("A", handler))
	_ = w.Start(nil)

	if _, err := w.Present(context.Background()); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	if writeErr != nil {
		t.Errorf("declared write error = %v", writeErr)
	}
	var undeclared *models.UndeclaredWriteError
	if !errors.As(undeclaredErr, &undeclared) || undeclared.Key != models.KeyCreatedToken {
		t.Errorf("undeclared write error = %v, want *UndeclaredWriteError", undeclaredErr)
	}

	state := w.State()
	if state.Context[models.KeyCreatedApp] != "app-1" {
		t.Errorf("created_app = %v, want app-1", state.Context[models.KeyCreatedApp])
	}
	if _, ok := state.Context[models.KeyCreatedToken]; ok {
		t.Error("undeclared key was recorded")
	}
}

func TestWizard_PresentMutatorsDriveWizard(t *testing.T) {
	first := &mockHandler{run: func(ctx context.Context, input *models.StepInput) error {
		return input.Advance()
	}}
	second := &mockHandler{run: func(ctx context.Context, input *models.StepInput) error {
		input.SetStatus(models.StatusBlocked)
		return nil
	}}
	w := NewWizard()
	w.AddStep(NewStep("A", first))
	w.AddStep(NewStep("B", second))
	_ = w.Start(nil)
	ctx := context.Background()

	if _, err := w.Present(ctx); err != nil {
		t.Fatalf("Present() A error = %v", err)
	}
	if got := w.State().CurrentIndex; got != 1 {
		t.Fatalf("CurrentIndex after A = %d, want 1", got)
	}

	if _, err := w.Present(ctx); err != nil {
		t.Fatalf("Present() B error = %v", err)
	}
	if got := w.State().Status; got != models.StatusBlocked {
		t.Fatalf("Status after B = %s, want BLOCKED", got)
	}
}

func TestWizard_PresentReturnsStepError(t *testing.T) {
	boom := errors.New("portal unavailable")
	w := NewWizard()
	w.AddStep(NewStep("A", &mockHandler{run: func(context.Context, *models.StepInput) error {
		return boom
	}}))
	_ = w.Start(nil)

	p, err := w.Present(context.Background())
	if err != boom {
		t.Fatalf("Present() error = %v, want the step error unchanged", err)
	}
	if p.Label != "A" {
		t.Errorf("Presentation.Label = %q, want A", p.Label)
	}
	if got := w.State().CurrentIndex; got != 0 {
		t.Errorf("CurrentIndex = %d, want 0", got)
	}
}

func TestWizard_PresentInputCarriesGlobals(t *testing.T) {
	var input *models.StepInput
	w := NewWizard()
	w.SetGlobalVariables(map[string]any{"app_name": "demo"})
	w.SetGlobalSecrets(map[string]any{"access_token": "s3cret"})
	w.AddStep(NewStep("A", &mockHandler{run: func(_ context.Context, in *models.StepInput) error {
		input = in
		return nil
	}}))
	_ = w.Start(nil)

	if _, err := w.Present(context.Background()); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if input.GlobalVariables["app_name"] != "demo" || input.GlobalSecrets["access_token"] != "s3cret" {
		t.Errorf("globals not passed: %v %v", input.GlobalVariables, input.GlobalSecrets)
	}
	if input.EventID == "" || input.Label != "A" {
		t.Errorf("input EventID = %q Label = %q", input.EventID, input.Label)
	}
}

func TestWizard_Events(t *testing.T) {
	var (
		mu     sync.Mutex
		events []models.EventType
	)
	w := NewWizard()
	w.AddListener(models.EventListenerFunc(func(e models.Event) {
		mu.Lock()
		defer mu.Unlock()
		if e.WizardID != w.ID() {
			t.Errorf("event wizard ID = %q, want %q", e.WizardID, w.ID())
		}
		events = append(events, e.Type)
	}))
	w.AddStep(NewStep("A", &mockHandler{}))
	w.AddStep(NewStep("B", &mockHandler{}))

	_ = w.Start(nil)
	_, _ = w.Present(context.Background())
	w.RecordContext(models.KeyAPIID, "api-1")
	_ = w.Advance()
	w.SetStatus(models.StatusBlocked)
	w.SetStatus(models.StatusBlocked)
	_, _ = w.Present(context.Background())
	w.Reset()

	want := []models.EventType{
		models.EventWizardStarted,
		models.EventStepPresented,
		models.EventContextRecorded,
		models.EventStepAdvanced,
		models.EventStatusChanged,
		models.EventStepBlocked,
		models.EventWizardReset,
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, events[i], want[i])
		}
	}
}

func TestWizard_PanickingListener(t *testing.T) {
	w := NewWizard()
	w.AddListener(models.EventListenerFunc(func(models.Event) { panic("listener bug") }))

	var delivered bool
	w.AddListener(models.EventListenerFunc(func(models.Event) { delivered = true }))
	w.AddStep(NewStep("A", &mockHandler{}))

	if err := w.Start(nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !delivered {
		t.Fatal("listener after a panicking one did not receive the event")
	}
}

func TestWizard_ActiveStepAndLabels(t *testing.T) {
	w, _ := newTestWizard(t, "A", "B")
	_ = w.Advance()

	if got := w.ActiveStep().Label; got != "B" {
		t.Errorf("ActiveStep().Label = %q, want B", got)
	}
	labels := w.Labels()
	if len(labels) != 2 || labels[0] != "A" || labels[1] != "B" {
		t.Errorf("Labels() = %v", labels)
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    OverflowPolicy
		wantErr bool
	}{
		{"", OverflowFail, false},
		{"fail", OverflowFail, false},
		{"clamp", OverflowClamp, false},
		{"wrap", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseOverflowPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOverflowPolicy(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOverflowPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
