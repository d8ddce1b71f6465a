package approval

import (
	"errors"
	"fmt"
	"time"
)

// Status is the state of an approval request
type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseDecision converts the decision given by an approver
func ParseDecision(s string) (Status, error) {
	switch Status(s) {
	case StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid decision '%s': must be %s or %s", s, StatusApproved, StatusRejected)
	}
}

var (
	// ErrNotFound is returned when no request matches an external reference
	ErrNotFound = errors.New("approval request not found")

	// ErrAlreadyCompleted is returned when completing a request twice
	ErrAlreadyCompleted = errors.New("approval request already completed")

	// ErrInvalidInterval is returned when polling with a non-positive interval
	ErrInvalidInterval = errors.New("polling interval must be positive")
)

// Request is a pending workflow waiting for an approver
type Request struct {
	ExternalRef  string
	WorkflowType string
	Status       Status
	WizardID     string
	StepIndex    int
	Description  string
	Decision     string // Comment left by the approver
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
