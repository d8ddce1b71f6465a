package models

import "fmt"

type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	return "missing required configuration key: " + e.Key
}

func ErrMissingConfig(key string) error {
	return &MissingConfigError{Key: key}
}

// OutOfRangeError is returned when advancing past the last step
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("step index %d out of range [0, %d)", e.Index, e.Len)
}

func ErrOutOfRange(index, length int) error {
	return &OutOfRangeError{Index: index, Len: length}
}

// UndeclaredWriteError is returned when a step records a key outside its contract
type UndeclaredWriteError struct {
	Step StepKind
	Key  ContextKey
}

func (e *UndeclaredWriteError) Error() string {
	return fmt.Sprintf("step '%s' cannot write undeclared context key '%s'", e.Step, e.Key)
}

func ErrUndeclaredWrite(step StepKind, key ContextKey) error {
	return &UndeclaredWriteError{Step: step, Key: key}
}

// MissingContextError is returned by a step when a value it reads is absent
type MissingContextError struct {
	Step StepKind
	Key  ContextKey
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("step '%s' requires context key '%s'", e.Step, e.Key)
}

func ErrMissingContext(step StepKind, key ContextKey) error {
	return &MissingContextError{Step: step, Key: key}
}
