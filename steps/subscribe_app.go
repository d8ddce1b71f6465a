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

// SubscribeAppStep subscribes the created application to the API
type SubscribeAppStep struct {
	portal devportal.API
	tier   config.ValueSpec
}

func (s *SubscribeAppStep) Kind() models.StepKind {
	return models.KindSubscribeApp
}

func (s *SubscribeAppStep) Contract() models.Contract {
	return models.Contract{
		Reads:  []models.ContextKey{models.KeyAPIID, models.KeyCreatedApp, models.KeyThrottlingPolicies},
		Writes: []models.ContextKey{models.KeyPendingWorkflow},
	}
}

func (s *SubscribeAppStep) Run(ctx context.Context, input *models.StepInput) error {
	apiID, ok := input.Value(models.KeyAPIID)
	if !ok || apiID == "" {
		return models.ErrMissingContext(s.Kind(), models.KeyAPIID)
	}

	app, err := createdApp(input, s.Kind())
	if err != nil {
		return err
	}

	tier, err := resolveString(input, s.tier, firstPolicy(input))
	if err != nil {
		return fmt.Errorf("failed to resolve tier: %w", err)
	}

	sub, err := s.portal.Subscribe(ctx, devportal.SubscriptionRequest{
		APIID:         fmt.Sprintf("%v", apiID),
		ApplicationID: app.ID,
		Tier:          tier,
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe application: %w", err)
	}

	if sub.Pending() {
		return block(input, models.WorkflowSubscriptionCreation, sub.ID, "subscribe "+app.Name+" to "+sub.APIID)
	}
	return input.Advance()
}

func init() {
	builder.RegisterStepKind(models.KindSubscribeApp, func(cfg map[string]any, deps builder.Dependencies) (models.Handler, error) {
		if deps.Portal == nil {
			return nil, errors.New("subscribe_app step requires a developer portal")
		}

		return &SubscribeAppStep{
			portal: deps.Portal,
			tier:   optionalSpec(cfg, "tier"),
		}, nil
	})
}
