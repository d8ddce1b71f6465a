package apiconfig

import "sync"

// Editor owns the configuration of one API
type Editor struct {
	mu       sync.Mutex
	original Config
	current  Config
}

// NewEditor starts editing initial
func NewEditor(initial Config) *Editor {
	return &Editor{
		original: initial.clone(),
		current:  initial.clone(),
	}
}

// Dispatch applies an action. The configuration is unchanged when the
// action is rejected.
func (e *Editor) Dispatch(a Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// reduce works on a copy so a rejected action leaves no partial edit
	next, err := reduce(e.current.clone(), a)
	if err != nil {
		return err
	}
	e.current = next
	return nil
}

// Config returns a copy of the edited configuration
func (e *Editor) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.clone()
}

// Dirty reports whether the configuration differs from the one editing started with
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.current.equal(e.original)
}

// Discard drops all edits
func (e *Editor) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = e.original.clone()
}

// Commit makes the edited configuration the new baseline and returns it
func (e *Editor) Commit() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.original = e.current.clone()
	return e.current.clone()
}
