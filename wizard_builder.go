package wizard

import (
	"fmt"

	"github.com/simon020286/go-wizard/builder"
	"github.com/simon020286/go-wizard/config"
	"github.com/simon020286/go-wizard/models"
	_ "github.com/simon020286/go-wizard/steps"
)

// BuildFromConfig builds a wizard from a configuration.
// The wizard is not started; call Start with cfg.InitialContext().
func BuildFromConfig(cfg *config.WizardConfig, deps builder.Dependencies) (*Wizard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wizard config: %w", err)
	}

	policy, err := ParseOverflowPolicy(cfg.Overflow)
	if err != nil {
		return nil, err
	}

	w := NewWizard()
	w.SetOverflowPolicy(policy)
	w.SetGlobalVariables(cfg.Variables)
	w.SetGlobalSecrets(cfg.Secrets)

	for _, stepConfig := range cfg.Steps {
		kind, err := models.ParseStepKind(stepConfig.Kind)
		if err != nil {
			return nil, fmt.Errorf("step '%s': %w", stepConfig.Label, err)
		}

		handler, err := builder.CreateHandler(kind, stepConfig.Config, deps)
		if err != nil {
			return nil, fmt.Errorf("step '%s': %w", stepConfig.Label, err)
		}

		w.AddStep(NewStep(stepConfig.Label, handler))
	}

	return w, nil
}
