package config

import (
	"fmt"
	"os"

	"github.com/simon020286/go-wizard/models"
	"gopkg.in/yaml.v3"
)

// WizardConfig represents the complete wizard configuration from YAML
type WizardConfig struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Overflow    string                 `yaml:"overflow,omitempty"`  // fail (default) or clamp
	Variables   map[string]interface{} `yaml:"variables,omitempty"` // Reusable values
	Secrets     map[string]interface{} `yaml:"secrets,omitempty"`   // Sensitive values (API keys, tokens)
	Context     map[string]interface{} `yaml:"context,omitempty"`   // Initial wizard context
	Steps       []StepConfig           `yaml:"steps"`
}

// StepConfig represents the configuration of a step from YAML
type StepConfig struct {
	Label  string                 `yaml:"label"`
	Kind   string                 `yaml:"kind"`   // Kind of step to instantiate
	Config map[string]interface{} `yaml:"config"` // Specific step configuration
}

// LoadWizardConfig reads and validates a wizard definition file
func LoadWizardConfig(path string) (*WizardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wizard file: %w", err)
	}
	return ParseWizardConfig(data)
}

// ParseWizardConfig decodes and validates a wizard definition
func ParseWizardConfig(data []byte) (*WizardConfig, error) {
	var cfg WizardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the wizard definition
func (wc *WizardConfig) Validate() error {
	if len(wc.Steps) == 0 {
		return fmt.Errorf("wizard %s must have at least one step", wc.Name)
	}

	switch wc.Overflow {
	case "", "fail", "clamp":
	default:
		return fmt.Errorf("invalid overflow policy '%s'", wc.Overflow)
	}

	labels := make(map[string]bool, len(wc.Steps))
	for i, step := range wc.Steps {
		if step.Label == "" {
			return fmt.Errorf("step %d: label is required", i)
		}
		if labels[step.Label] {
			return fmt.Errorf("step %d: duplicate label '%s'", i, step.Label)
		}
		labels[step.Label] = true

		if _, err := models.ParseStepKind(step.Kind); err != nil {
			return fmt.Errorf("step '%s': %w", step.Label, err)
		}
	}

	return nil
}

// InitialContext returns the configured initial context
func (wc *WizardConfig) InitialContext() models.Context {
	return models.ContextFromMap(wc.Context)
}
