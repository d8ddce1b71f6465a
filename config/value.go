package config

import (
	"fmt"
	"os"

	"github.com/dop251/goja"
	"github.com/simon020286/go-wizard/models"
)

// ValueSpec represents a value that can be static or dynamic
type ValueSpec interface {
	IsStatic() bool
	GetStaticValue() (any, bool)
	GetDynamicExpression() (DynamicValue, bool)
	// Resolve resolves the value against the input of the active step
	Resolve(state *models.StepInput) (any, error)
}

// StaticValue represents a literal value (number, string, bool, etc.)
type StaticValue struct {
	Value any
}

func NewStaticValue(value any) StaticValue {
	return StaticValue{
		Value: value,
	}
}

func (s StaticValue) IsStatic() bool {
	return true
}

func (s StaticValue) GetStaticValue() (any, bool) {
	return s.Value, true
}

func (s StaticValue) GetDynamicExpression() (DynamicValue, bool) {
	return DynamicValue{}, false
}

func (s StaticValue) Resolve(state *models.StepInput) (any, error) {
	return s.Value, nil
}

// DynamicValue represents an expression to be evaluated at runtime
type DynamicValue struct {
	Language   string // "js" is the only supported language
	Expression string // the expression to evaluate
}

func (d DynamicValue) IsStatic() bool {
	return false
}

func (d DynamicValue) GetStaticValue() (any, bool) {
	return nil, false
}

func (d DynamicValue) GetDynamicExpression() (DynamicValue, bool) {
	return d, true
}

func (d DynamicValue) Resolve(state *models.StepInput) (any, error) {
	switch d.Language {
	case "js", "javascript", "":
		return d.resolveJS(state)
	default:
		return nil, fmt.Errorf("unsupported language: %s", d.Language)
	}
}

// resolveJS evaluates a JavaScript expression using Goja.
// The step's visible context is exposed as ctx, wizard variables as $vars
// and secrets as $secrets. Go structs are exposed through their json tags.
func (d DynamicValue) resolveJS(state *models.StepInput) (any, error) {
	runtime := goja.New()
	runtime.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	ctx := make(map[string]any)
	state.Lock()
	for key, value := range state.State.Context {
		ctx[string(key)] = value
	}
	ctx["_step"] = map[string]any{
		"label": state.Label,
		"index": state.State.CurrentIndex,
	}
	if state.EventID != "" {
		ctx["_execution"] = map[string]any{
			"id": state.EventID,
		}
	}
	state.Unlock()

	if err := runtime.Set("ctx", ctx); err != nil {
		return nil, fmt.Errorf("failed to set context: %w", err)
	}

	if state.GlobalVariables != nil {
		if err := runtime.Set("$vars", state.GlobalVariables); err != nil {
			return nil, fmt.Errorf("failed to set global variables: %w", err)
		}
	}

	if state.GlobalSecrets != nil {
		if err := runtime.Set("$secrets", state.GlobalSecrets); err != nil {
			return nil, fmt.Errorf("failed to set global secrets: %w", err)
		}
	}

	wrappedCode := "(function() {\n return " + d.Expression + "\n})()"

	result, err := runtime.RunString(wrappedCode)
	if err != nil {
		return nil, fmt.Errorf("failed to execute JS expression '%s': %w", d.Expression, err)
	}

	return result.Export(), nil
}

// HasDynamicValues checks if at least one value is dynamic
func HasDynamicValues(values map[string]ValueSpec) bool {
	for _, v := range values {
		if !v.IsStatic() {
			return true
		}
	}
	return false
}

// ExtractStaticValues extracts only static values into a map[string]any
func ExtractStaticValues(values map[string]ValueSpec) map[string]any {
	result := make(map[string]any)
	for k, v := range values {
		if staticVal, ok := v.GetStaticValue(); ok {
			result[k] = staticVal
		}
	}
	return result
}

// VariableReference represents a reference to a wizard variable ($var:name)
type VariableReference struct {
	Name string
}

func (v VariableReference) IsStatic() bool {
	return false
}

func (v VariableReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (v VariableReference) GetDynamicExpression() (DynamicValue, bool) {
	return DynamicValue{}, false
}

func (v VariableReference) Resolve(state *models.StepInput) (any, error) {
	if state.GlobalVariables == nil {
		return nil, fmt.Errorf("variable '%s' not found: no global variables defined", v.Name)
	}

	value, exists := state.GlobalVariables[v.Name]
	if !exists {
		return nil, fmt.Errorf("variable '%s' not found in global variables", v.Name)
	}

	return value, nil
}

// SecretReference represents a reference to a wizard secret ($secret:name)
type SecretReference struct {
	Name string
}

func (s SecretReference) IsStatic() bool {
	return false
}

func (s SecretReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (s SecretReference) GetDynamicExpression() (DynamicValue, bool) {
	return DynamicValue{}, false
}

func (s SecretReference) Resolve(state *models.StepInput) (any, error) {
	if state.GlobalSecrets == nil {
		return nil, fmt.Errorf("secret '%s' not found: no global secrets defined", s.Name)
	}

	value, exists := state.GlobalSecrets[s.Name]
	if !exists {
		return nil, fmt.Errorf("secret '%s' not found in global secrets", s.Name)
	}

	return value, nil
}

// String returns a masked representation of the secret for logging
func (s SecretReference) String() string {
	return fmt.Sprintf("$secret:%s=***", s.Name)
}

// EnvReference represents a reference to an environment variable ($env:NAME)
type EnvReference struct {
	Name string
}

func (e EnvReference) IsStatic() bool {
	return false
}

func (e EnvReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (e EnvReference) GetDynamicExpression() (DynamicValue, bool) {
	return DynamicValue{}, false
}

func (e EnvReference) Resolve(state *models.StepInput) (any, error) {
	value := os.Getenv(e.Name)
	if value == "" {
		return nil, fmt.Errorf("environment variable '%s' is not set or is empty", e.Name)
	}

	return value, nil
}

// ContextReference reads a value recorded by an earlier step ($ctx:key).
// Only keys in the step's read set are visible.
type ContextReference struct {
	Key models.ContextKey
}

func (c ContextReference) IsStatic() bool {
	return false
}

func (c ContextReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (c ContextReference) GetDynamicExpression() (DynamicValue, bool) {
	return DynamicValue{}, false
}

func (c ContextReference) Resolve(state *models.StepInput) (any, error) {
	value, ok := state.Value(c.Key)
	if !ok {
		if !state.Contract.CanRead(c.Key) {
			return nil, fmt.Errorf("context key '%s' is not visible to step '%s'", c.Key, state.Label)
		}
		return nil, fmt.Errorf("context key '%s' has not been recorded yet", c.Key)
	}
	return value, nil
}
