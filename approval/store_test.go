package approval

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "approvals.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_AddAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Add(ctx, Request{
		ExternalRef:  "app-1",
		WorkflowType: "AM_APPLICATION_CREATION",
		WizardID:     "wiz-1",
		StepIndex:    0,
		Description:  "create application demo",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	req, err := store.GetByExternalRef(ctx, "app-1", "")
	if err != nil {
		t.Fatalf("GetByExternalRef() error = %v", err)
	}
	if req.Status != StatusCreated || req.WizardID != "wiz-1" || req.Description != "create application demo" {
		t.Errorf("request = %+v", req)
	}
	if req.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	if _, err := store.GetByExternalRef(ctx, "app-1", StatusApproved); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByExternalRef(APPROVED) error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByExternalRef(ctx, "nope", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByExternalRef(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStore_AddValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, Request{WorkflowType: "AM_APPLICATION_CREATION"}); err == nil {
		t.Error("Add() without reference error = nil")
	}
	if err := store.Add(ctx, Request{ExternalRef: "app-1"}); err == nil {
		t.Error("Add() without type error = nil")
	}
}

func TestStore_List(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, r := range []Request{
		{ExternalRef: "app-1", WorkflowType: "AM_APPLICATION_CREATION"},
		{ExternalRef: "sub-1", WorkflowType: "AM_SUBSCRIPTION_CREATION"},
		{ExternalRef: "app-2", WorkflowType: "AM_APPLICATION_CREATION"},
	} {
		if err := store.Add(ctx, r); err != nil {
			t.Fatalf("Add(%s) error = %v", r.ExternalRef, err)
		}
	}
	if err := store.Complete(ctx, "app-2", StatusApproved, ""); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	tests := []struct {
		name         string
		workflowType string
		status       Status
		want         int
	}{
		{"all", "", "", 3},
		{"by type", "AM_APPLICATION_CREATION", "", 2},
		{"by status", "", StatusCreated, 2},
		{"by type and status", "AM_APPLICATION_CREATION", StatusApproved, 1},
		{"no match", "AM_SUBSCRIPTION_CREATION", StatusRejected, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.workflowType, tt.status)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("List() = %d requests, want %d", len(got), tt.want)
			}
		})
	}
}

func TestStore_Complete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, Request{ExternalRef: "sub-1", WorkflowType: "AM_SUBSCRIPTION_CREATION"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := store.Complete(ctx, "sub-1", StatusCreated, ""); err == nil {
		t.Error("Complete(CREATED) error = nil, want invalid decision")
	}

	if err := store.Complete(ctx, "sub-1", StatusRejected, "tier not allowed"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	req, err := store.GetByExternalRef(ctx, "sub-1", StatusRejected)
	if err != nil {
		t.Fatalf("GetByExternalRef() error = %v", err)
	}
	if req.Decision != "tier not allowed" {
		t.Errorf("Decision = %q", req.Decision)
	}

	if err := store.Complete(ctx, "sub-1", StatusApproved, ""); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("second Complete() error = %v, want ErrAlreadyCompleted", err)
	}
	if err := store.Complete(ctx, "nope", StatusApproved, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Complete(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStore_AddReopensRequest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_ = store.Add(ctx, Request{ExternalRef: "app-1", WorkflowType: "AM_APPLICATION_CREATION"})
	_ = store.Complete(ctx, "app-1", StatusApproved, "ok")
	if err := store.Add(ctx, Request{ExternalRef: "app-1", WorkflowType: "AM_APPLICATION_REGISTRATION_PRODUCTION"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	req, err := store.GetByExternalRef(ctx, "app-1", StatusCreated)
	if err != nil {
		t.Fatalf("GetByExternalRef() error = %v", err)
	}
	if req.WorkflowType != "AM_APPLICATION_REGISTRATION_PRODUCTION" || req.Decision != "" {
		t.Errorf("request = %+v", req)
	}
}

func TestParseDecision(t *testing.T) {
	for _, s := range []string{"APPROVED", "REJECTED"} {
		if _, err := ParseDecision(s); err != nil {
			t.Errorf("ParseDecision(%q) error = %v", s, err)
		}
	}
	for _, s := range []string{"", "CREATED", "approved"} {
		if _, err := ParseDecision(s); err == nil {
			t.Errorf("ParseDecision(%q) error = nil", s)
		}
	}
}
