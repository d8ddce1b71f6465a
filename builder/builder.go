package builder

import (
	"strings"

	"github.com/google/uuid"
	"github.com/simon020286/go-wizard/config"
	"github.com/simon020286/go-wizard/models"
)

// CreateHandler creates a handler based on kind and configuration
func CreateHandler(kind models.StepKind, stepConfig map[string]any, deps Dependencies) (models.Handler, error) {
	factory, err := GetHandlerFactory(kind)
	if err != nil {
		return nil, err
	}
	if stepConfig == nil {
		stepConfig = map[string]any{}
	}
	return factory(stepConfig, deps)
}

// GenerateEventID generates a unique ID for an event
func GenerateEventID() string {
	return "evt_" + uuid.New().String()
}

// ParseConfigValue converts a configuration value to config.ValueSpec.
// Strings with a "$js:", "$var:", "$secret:", "$env:" or "$ctx:" prefix
// become dynamic values; everything else is static.
func ParseConfigValue(v any) config.ValueSpec {
	if vs, ok := v.(config.ValueSpec); ok {
		return vs
	}

	str, ok := v.(string)
	if !ok {
		return config.StaticValue{Value: v}
	}

	switch {
	case strings.HasPrefix(str, "$js:"):
		return config.DynamicValue{
			Language:   "js",
			Expression: strings.TrimSpace(strings.TrimPrefix(str, "$js:")),
		}
	case strings.HasPrefix(str, "$var:"):
		return config.VariableReference{Name: strings.TrimSpace(strings.TrimPrefix(str, "$var:"))}
	case strings.HasPrefix(str, "$secret:"):
		return config.SecretReference{Name: strings.TrimSpace(strings.TrimPrefix(str, "$secret:"))}
	case strings.HasPrefix(str, "$env:"):
		return config.EnvReference{Name: strings.TrimSpace(strings.TrimPrefix(str, "$env:"))}
	case strings.HasPrefix(str, "$ctx:"):
		return config.ContextReference{Key: models.ContextKey(strings.TrimSpace(strings.TrimPrefix(str, "$ctx:")))}
	}

	return config.StaticValue{Value: v}
}

// GetRegisteredStepKinds returns all registered step kinds
func GetRegisteredStepKinds() []models.StepKind {
	return ListStepKinds()
}
