package steps

import (
	"context"
	"fmt"
	"io"

	"github.com/simon020286/go-wizard/builder"
	"github.com/simon020286/go-wizard/devportal"
	"github.com/simon020286/go-wizard/models"
)

// CopyTokenStep hands the generated token to the user and points them at
// the API test console. It is the last step and never advances.
type CopyTokenStep struct {
	out io.Writer
}

func (s *CopyTokenStep) Kind() models.StepKind {
	return models.KindCopyToken
}

func (s *CopyTokenStep) Contract() models.Contract {
	return models.Contract{
		Reads:  []models.ContextKey{models.KeyAPIID, models.KeyCreatedToken},
		Writes: []models.ContextKey{models.KeyRedirect},
	}
}

func (s *CopyTokenStep) Run(ctx context.Context, input *models.StepInput) error {
	token, err := accessToken(input, s.Kind())
	if err != nil {
		return err
	}

	if s.out != nil {
		if _, err := fmt.Fprintln(s.out, token); err != nil {
			return fmt.Errorf("failed to write access token: %w", err)
		}
	}

	if apiID, ok := input.Value(models.KeyAPIID); ok {
		return input.RecordContext(models.KeyRedirect, fmt.Sprintf("/apis/%v/test", apiID))
	}
	return nil
}

func accessToken(input *models.StepInput, kind models.StepKind) (string, error) {
	v, ok := input.Value(models.KeyCreatedToken)
	if !ok || v == nil {
		return "", models.ErrMissingContext(kind, models.KeyCreatedToken)
	}

	switch t := v.(type) {
	case *devportal.AccessToken:
		return t.Token, nil
	case string:
		return t, nil
	case map[string]any:
		if s, ok := t["accessToken"].(string); ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("context key '%s' has unexpected type %T", models.KeyCreatedToken, v)
}

func init() {
	builder.RegisterStepKind(models.KindCopyToken, func(cfg map[string]any, deps builder.Dependencies) (models.Handler, error) {
		return &CopyTokenStep{out: deps.Out}, nil
	})
}
