package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/simon020286/go-wizard/models"
)

// Controller is the part of a wizard the gate drives
type Controller interface {
	Advance() error
	Reset()
	SetStatus(status models.Status)
}

// Gate connects blocked wizards to approval requests
type Gate struct {
	store *Store
}

// NewGate creates a gate over store
func NewGate(store *Store) *Gate {
	return &Gate{store: store}
}

// Track persists the pending workflow of a blocked wizard state.
// It returns false when the state is not blocked.
func (g *Gate) Track(ctx context.Context, wizardID string, state models.WorkflowState) (Request, bool, error) {
	if state.Status != models.StatusBlocked {
		return Request{}, false, nil
	}

	pending, ok := state.Context[models.KeyPendingWorkflow].(models.PendingWorkflow)
	if !ok {
		return Request{}, false, errors.New("wizard is blocked without a pending workflow")
	}

	req := Request{
		ExternalRef:  pending.ExternalRef,
		WorkflowType: pending.Type,
		Status:       StatusCreated,
		WizardID:     wizardID,
		StepIndex:    state.CurrentIndex,
		Description:  pending.Description,
	}
	if err := g.store.Add(ctx, req); err != nil {
		return Request{}, false, err
	}

	slog.Info("Approval requested.", "ref", req.ExternalRef, "type", req.WorkflowType, "wizard", wizardID)
	return req, true, nil
}

// Resolve records a decision and applies it to the wizard
func (g *Gate) Resolve(ctx context.Context, c Controller, externalRef string, decision Status, comment string) error {
	if err := g.store.Complete(ctx, externalRef, decision, comment); err != nil {
		return err
	}
	return apply(c, decision)
}

// Poll waits until the request is decided out of band, then applies the
// decision to the wizard
func (g *Gate) Poll(ctx context.Context, c Controller, externalRef string, interval time.Duration) (Status, error) {
	if interval <= 0 {
		return "", fmt.Errorf("waiting for approval of %s: %w", externalRef, ErrInvalidInterval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		req, err := g.store.GetByExternalRef(ctx, externalRef, "")
		if err != nil {
			return "", err
		}
		if req.Status != StatusCreated {
			return req.Status, apply(c, req.Status)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for approval of %s: %w", externalRef, ctx.Err())
		case <-ticker.C:
		}
	}
}

// apply unblocks the wizard. An approval moves past the step whose work was
// held; a rejection sends the user back to the first step.
func apply(c Controller, decision Status) error {
	switch decision {
	case StatusApproved:
		if err := c.Advance(); err != nil {
			return fmt.Errorf("advance after approval: %w", err)
		}
	case StatusRejected:
		c.Reset()
	default:
		return fmt.Errorf("cannot apply status '%s'", decision)
	}
	c.SetStatus(models.StatusProceeding)
	return nil
}
