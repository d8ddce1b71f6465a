package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/simon020286/go-wizard/builder"
	"github.com/simon020286/go-wizard/config"
	"github.com/simon020286/go-wizard/devportal"
	"github.com/simon020286/go-wizard/models"
)

const defaultValidityPeriod = 3600

// GenerateKeysStep generates consumer keys for the created application
type GenerateKeysStep struct {
	portal         devportal.API
	keyType        config.ValueSpec
	grantTypes     config.ValueSpec
	validityPeriod config.ValueSpec
}

func (s *GenerateKeysStep) Kind() models.StepKind {
	return models.KindGenerateKeys
}

func (s *GenerateKeysStep) Contract() models.Contract {
	return models.Contract{
		Reads:  []models.ContextKey{models.KeyCreatedApp},
		Writes: []models.ContextKey{models.KeyCreatedKeyType, models.KeyPendingWorkflow},
	}
}

func (s *GenerateKeysStep) Run(ctx context.Context, input *models.StepInput) error {
	app, err := createdApp(input, s.Kind())
	if err != nil {
		return err
	}

	rawKeyType, err := resolveString(input, s.keyType, string(devportal.KeyTypeProduction))
	if err != nil {
		return fmt.Errorf("failed to resolve key_type: %w", err)
	}
	keyType, err := parseKeyType(rawKeyType)
	if err != nil {
		return err
	}

	grantTypes, err := resolveStrings(input, s.grantTypes, []string{"client_credentials"})
	if err != nil {
		return fmt.Errorf("failed to resolve grant_types: %w", err)
	}

	validity, err := resolveInt(input, s.validityPeriod, defaultValidityPeriod)
	if err != nil {
		return fmt.Errorf("failed to resolve validity_period: %w", err)
	}

	keys, err := s.portal.GenerateKeys(ctx, app.ID, devportal.KeyRequest{
		KeyType:        keyType,
		GrantTypes:     grantTypes,
		ValidityPeriod: validity,
	})
	if err != nil {
		return fmt.Errorf("failed to generate keys: %w", err)
	}

	if err := input.RecordContext(models.KeyCreatedKeyType, keyType); err != nil {
		return err
	}

	if keys.Pending() {
		workflowType := models.WorkflowApplicationRegistrationProd
		if keyType == devportal.KeyTypeSandbox {
			workflowType = models.WorkflowApplicationRegistrationSandbox
		}
		return block(input, workflowType, app.ID, "register "+strings.ToLower(string(keyType))+" keys for "+app.Name)
	}
	return input.Advance()
}

func parseKeyType(s string) (devportal.KeyType, error) {
	switch devportal.KeyType(strings.ToUpper(s)) {
	case devportal.KeyTypeProduction:
		return devportal.KeyTypeProduction, nil
	case devportal.KeyTypeSandbox:
		return devportal.KeyTypeSandbox, nil
	default:
		return "", fmt.Errorf("invalid key type '%s'", s)
	}
}

func init() {
	builder.RegisterStepKind(models.KindGenerateKeys, func(cfg map[string]any, deps builder.Dependencies) (models.Handler, error) {
		if deps.Portal == nil {
			return nil, errors.New("generate_keys step requires a developer portal")
		}

		return &GenerateKeysStep{
			portal:         deps.Portal,
			keyType:        optionalSpec(cfg, "key_type"),
			grantTypes:     optionalSpec(cfg, "grant_types"),
			validityPeriod: optionalSpec(cfg, "validity_period"),
		}, nil
	})
}
