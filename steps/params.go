package steps

import (
	"fmt"
	"strconv"

	"github.com/simon020286/go-wizard/builder"
	"github.com/simon020286/go-wizard/config"
	"github.com/simon020286/go-wizard/devportal"
	"github.com/simon020286/go-wizard/models"
)

// optionalSpec returns the value spec of key, or nil when absent
func optionalSpec(cfg map[string]any, key string) config.ValueSpec {
	raw, ok := cfg[key]
	if !ok || raw == nil {
		return nil
	}
	return builder.ParseConfigValue(raw)
}

// requiredSpec returns the value spec of key or a MissingConfigError
func requiredSpec(cfg map[string]any, key string) (config.ValueSpec, error) {
	spec := optionalSpec(cfg, key)
	if spec == nil {
		return nil, models.ErrMissingConfig(key)
	}
	return spec, nil
}

func resolveString(input *models.StepInput, spec config.ValueSpec, def string) (string, error) {
	if spec == nil {
		return def, nil
	}
	v, err := spec.Resolve(input)
	if err != nil {
		return "", err
	}
	if v == nil {
		return def, nil
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return def, nil
	}
	return s, nil
}

func resolveInt(input *models.StepInput, spec config.ValueSpec, def int) (int, error) {
	if spec == nil {
		return def, nil
	}
	v, err := spec.Resolve(input)
	if err != nil {
		return 0, err
	}

	switch n := v.(type) {
	case nil:
		return def, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q: %w", n, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func resolveStrings(input *models.StepInput, spec config.ValueSpec, def []string) ([]string, error) {
	if spec == nil {
		return def, nil
	}
	v, err := spec.Resolve(input)
	if err != nil {
		return nil, err
	}

	switch list := v.(type) {
	case nil:
		return def, nil
	case []string:
		return list, nil
	case string:
		return []string{list}, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", v)
	}
}

// firstPolicy returns the first advertised throttling policy, or Unlimited
func firstPolicy(input *models.StepInput) string {
	input.Lock()
	policies := input.State.Context.Strings(models.KeyThrottlingPolicies)
	input.Unlock()
	if len(policies) > 0 {
		return policies[0]
	}
	return "Unlimited"
}

// createdApp reads the application recorded by the create_app step.
// A map is accepted so the value can also come from an initial YAML context.
func createdApp(input *models.StepInput, kind models.StepKind) (*devportal.Application, error) {
	v, ok := input.Value(models.KeyCreatedApp)
	if !ok || v == nil {
		return nil, models.ErrMissingContext(kind, models.KeyCreatedApp)
	}

	switch app := v.(type) {
	case *devportal.Application:
		return app, nil
	case devportal.Application:
		return &app, nil
	case map[string]any:
		id, _ := app["applicationId"].(string)
		if id == "" {
			return nil, fmt.Errorf("context key '%s' has no applicationId", models.KeyCreatedApp)
		}
		name, _ := app["name"].(string)
		return &devportal.Application{ID: id, Name: name}, nil
	default:
		return nil, fmt.Errorf("context key '%s' has unexpected type %T", models.KeyCreatedApp, v)
	}
}

// block records the approval request that holds the wizard and blocks it
func block(input *models.StepInput, workflowType, externalRef, description string) error {
	pending := models.PendingWorkflow{
		Type:        workflowType,
		ExternalRef: externalRef,
		Description: description,
	}
	if err := input.RecordContext(models.KeyPendingWorkflow, pending); err != nil {
		return err
	}
	input.SetStatus(models.StatusBlocked)
	return nil
}
