package models

import (
	"context"
	"fmt"
)

// StepKind identifies the variant of a wizard step
type StepKind uint8

const (
	KindCreateApp StepKind = iota + 1
	KindSubscribeApp
	KindGenerateKeys
	KindGenerateToken
	KindCopyToken
)

var stepKindNames = map[StepKind]string{
	KindCreateApp:     "create_app",
	KindSubscribeApp:  "subscribe_app",
	KindGenerateKeys:  "generate_keys",
	KindGenerateToken: "generate_token",
	KindCopyToken:     "copy_token",
}

func (k StepKind) String() string {
	if name, ok := stepKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("step_kind(%d)", uint8(k))
}

// ParseStepKind converts the configuration name of a step kind
func ParseStepKind(s string) (StepKind, error) {
	for kind, name := range stepKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown step kind: %s", s)
}

// Contract declares which context keys a step reads and which it writes.
// The wizard only shows a step the keys it reads and rejects writes to
// keys it did not declare.
type Contract struct {
	Reads  []ContextKey
	Writes []ContextKey
}

// CanRead reports whether key is part of the read set
func (c Contract) CanRead(key ContextKey) bool {
	for _, k := range c.Reads {
		if k == key {
			return true
		}
	}
	return false
}

// CanWrite reports whether key is part of the write set
func (c Contract) CanWrite(key ContextKey) bool {
	for _, k := range c.Writes {
		if k == key {
			return true
		}
	}
	return false
}

// Handler is the logic behind a single wizard step.
// Run is invoked each time the step is presented while the wizard is
// proceeding. It reports progress only through the mutators on the input;
// a returned error is the step's own failure and is handed back to the host
// untouched.
type Handler interface {
	Kind() StepKind
	Contract() Contract
	Run(ctx context.Context, input *StepInput) error
}
