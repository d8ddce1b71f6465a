package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/simon020286/go-wizard/builder"
	"github.com/simon020286/go-wizard/config"
	"github.com/simon020286/go-wizard/devportal"
	"github.com/simon020286/go-wizard/models"
)

// CreateAppStep creates the application the credentials are issued for
type CreateAppStep struct {
	portal           devportal.API
	name             config.ValueSpec
	throttlingPolicy config.ValueSpec
	description      config.ValueSpec
}

func (s *CreateAppStep) Kind() models.StepKind {
	return models.KindCreateApp
}

func (s *CreateAppStep) Contract() models.Contract {
	return models.Contract{
		Reads:  []models.ContextKey{models.KeyThrottlingPolicies},
		Writes: []models.ContextKey{models.KeyCreatedApp, models.KeyPendingWorkflow},
	}
}

func (s *CreateAppStep) Run(ctx context.Context, input *models.StepInput) error {
	name, err := resolveString(input, s.name, "")
	if err != nil {
		return fmt.Errorf("failed to resolve name: %w", err)
	}
	if name == "" {
		return errors.New("application name resolved to an empty value")
	}

	policy, err := resolveString(input, s.throttlingPolicy, firstPolicy(input))
	if err != nil {
		return fmt.Errorf("failed to resolve throttling_policy: %w", err)
	}

	description, err := resolveString(input, s.description, "")
	if err != nil {
		return fmt.Errorf("failed to resolve description: %w", err)
	}

	app, err := s.portal.CreateApplication(ctx, devportal.ApplicationRequest{
		Name:             name,
		ThrottlingPolicy: policy,
		Description:      description,
	})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if err := input.RecordContext(models.KeyCreatedApp, app); err != nil {
		return err
	}

	if app.Pending() {
		return block(input, models.WorkflowApplicationCreation, app.ID, "create application "+app.Name)
	}
	return input.Advance()
}

func init() {
	builder.RegisterStepKind(models.KindCreateApp, func(cfg map[string]any, deps builder.Dependencies) (models.Handler, error) {
		if deps.Portal == nil {
			return nil, errors.New("create_app step requires a developer portal")
		}

		name, err := requiredSpec(cfg, "name")
		if err != nil {
			return nil, err
		}

		return &CreateAppStep{
			portal:           deps.Portal,
			name:             name,
			throttlingPolicy: optionalSpec(cfg, "throttling_policy"),
			description:      optionalSpec(cfg, "description"),
		}, nil
	})
}
