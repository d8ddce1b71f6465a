package config

import (
	"fmt"
	"strings"
)

// ValidateServiceDefinition runs the base validation and checks auth and
// templates in depth
func ValidateServiceDefinition(def *ServiceDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	if def.Defaults.BaseURL == "" {
		return fmt.Errorf("service %s: base_url is required", def.Service.Name)
	}

	if def.Defaults.Auth != nil {
		if err := validateAuth(def.Defaults.Auth); err != nil {
			return fmt.Errorf("invalid auth: %w", err)
		}
	}

	for opName, opDef := range def.Operations {
		if err := validateOperation(opName, opDef); err != nil {
			return fmt.Errorf("invalid operation '%s': %w", opName, err)
		}
	}

	return nil
}

// RequireOperations checks that the definition exposes every named operation
func RequireOperations(def *ServiceDefinition, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := def.Operations[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("service %s is missing operations: %s", def.Service.Name, strings.Join(missing, ", "))
	}
	return nil
}

func validateAuth(auth *AuthConfig) error {
	switch auth.Type {
	case "bearer", "api_key", "custom":
		if auth.Header == "" {
			return fmt.Errorf("auth type '%s' requires a header", auth.Type)
		}
		if auth.Value == "" {
			return fmt.Errorf("auth type '%s' requires a value", auth.Type)
		}
	case "basic":
		if auth.Username == "" || auth.Password == "" {
			return fmt.Errorf("basic auth requires username and password")
		}
	case "none", "":
	default:
		return fmt.Errorf("unknown auth type '%s'", auth.Type)
	}
	return nil
}

func validateOperation(_ string, op OperationDef) error {
	if !strings.HasPrefix(op.Path, "/") {
		return fmt.Errorf("path '%s' must start with '/'", op.Path)
	}

	if strings.Count(op.Path, "{{") != strings.Count(op.Path, "}}") {
		return fmt.Errorf("unbalanced template markers in path '%s'", op.Path)
	}

	if op.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}
