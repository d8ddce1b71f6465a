package steps

import (
	"context"
	"sync"

	"github.com/simon020286/go-wizard/devportal"
	"github.com/simon020286/go-wizard/models"
)

// fakePortal returns canned responses and records requests
type fakePortal struct {
	mu sync.Mutex

	appStatus string
	subStatus string
	keyState  string
	err       error

	appRequests   []devportal.ApplicationRequest
	subRequests   []devportal.SubscriptionRequest
	keyRequests   []devportal.KeyRequest
	tokenRequests []devportal.TokenRequest
	appIDs        []string
}

func (f *fakePortal) CreateApplication(_ context.Context, req devportal.ApplicationRequest) (*devportal.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appRequests = append(f.appRequests, req)
	if f.err != nil {
		return nil, f.err
	}
	status := f.appStatus
	if status == "" {
		status = devportal.StatusApproved
	}
	return &devportal.Application{ID: "app-1", Name: req.Name, ThrottlingPolicy: req.ThrottlingPolicy, Status: status}, nil
}

func (f *fakePortal) Subscribe(_ context.Context, req devportal.SubscriptionRequest) (*devportal.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subRequests = append(f.subRequests, req)
	if f.err != nil {
		return nil, f.err
	}
	status := f.subStatus
	if status == "" {
		status = devportal.StatusActive
	}
	return &devportal.Subscription{ID: "sub-1", APIID: req.APIID, ApplicationID: req.ApplicationID, Tier: req.Tier, Status: status}, nil
}

func (f *fakePortal) GenerateKeys(_ context.Context, appID string, req devportal.KeyRequest) (*devportal.Keys, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyRequests = append(f.keyRequests, req)
	f.appIDs = append(f.appIDs, appID)
	if f.err != nil {
		return nil, f.err
	}
	state := f.keyState
	if state == "" {
		state = "COMPLETED"
	}
	return &devportal.Keys{ConsumerKey: "ck", ConsumerSecret: "cs", KeyType: req.KeyType, State: state}, nil
}

func (f *fakePortal) GenerateToken(_ context.Context, appID string, req devportal.TokenRequest) (*devportal.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenRequests = append(f.tokenRequests, req)
	f.appIDs = append(f.appIDs, appID)
	if f.err != nil {
		return nil, f.err
	}
	return &devportal.AccessToken{Token: "tok-123", Scopes: req.Scopes, ValidityTime: req.ValidityPeriod}, nil
}

// recorder captures what a step does to the wizard
type recorder struct {
	advanced int
	reset    int
	status   models.Status
	context  models.Context
	contract models.Contract
}

func (r *recorder) input(label string, visible models.Context) *models.StepInput {
	r.context = make(models.Context)
	state := models.WorkflowState{Status: models.StatusProceeding, Context: visible}
	return models.NewStepInput(label, state, models.Mutators{
		Advance:   func() error { r.advanced++; return nil },
		Reset:     func() { r.reset++ },
		SetStatus: func(s models.Status) { r.status = s },
		RecordContext: func(key models.ContextKey, value any) error {
			if !r.contract.CanWrite(key) {
				return models.ErrUndeclaredWrite(0, key)
			}
			r.context[key] = value
			return nil
		},
	})
}
