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

// GenerateTokenStep generates an access token with the generated keys
type GenerateTokenStep struct {
	portal         devportal.API
	scopes         config.ValueSpec
	validityPeriod config.ValueSpec
}

func (s *GenerateTokenStep) Kind() models.StepKind {
	return models.KindGenerateToken
}

func (s *GenerateTokenStep) Contract() models.Contract {
	return models.Contract{
		Reads:  []models.ContextKey{models.KeyCreatedApp, models.KeyCreatedKeyType},
		Writes: []models.ContextKey{models.KeyCreatedToken},
	}
}

func (s *GenerateTokenStep) Run(ctx context.Context, input *models.StepInput) error {
	app, err := createdApp(input, s.Kind())
	if err != nil {
		return err
	}

	rawKeyType, ok := input.Value(models.KeyCreatedKeyType)
	if !ok {
		return models.ErrMissingContext(s.Kind(), models.KeyCreatedKeyType)
	}
	keyType, err := parseKeyType(fmt.Sprintf("%v", rawKeyType))
	if err != nil {
		return err
	}

	scopes, err := resolveStrings(input, s.scopes, nil)
	if err != nil {
		return fmt.Errorf("failed to resolve scopes: %w", err)
	}

	validity, err := resolveInt(input, s.validityPeriod, defaultValidityPeriod)
	if err != nil {
		return fmt.Errorf("failed to resolve validity_period: %w", err)
	}

	token, err := s.portal.GenerateToken(ctx, app.ID, devportal.TokenRequest{
		KeyType:        keyType,
		ValidityPeriod: validity,
		Scopes:         scopes,
	})
	if err != nil {
		return fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := input.RecordContext(models.KeyCreatedToken, token); err != nil {
		return err
	}
	return input.Advance()
}

func init() {
	builder.RegisterStepKind(models.KindGenerateToken, func(cfg map[string]any, deps builder.Dependencies) (models.Handler, error) {
		if deps.Portal == nil {
			return nil, errors.New("generate_token step requires a developer portal")
		}

		return &GenerateTokenStep{
			portal:         deps.Portal,
			scopes:         optionalSpec(cfg, "scopes"),
			validityPeriod: optionalSpec(cfg, "validity_period"),
		}, nil
	})
}
