package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS workflows (
	external_ref  TEXT PRIMARY KEY,
	workflow_type TEXT NOT NULL,
	status        TEXT NOT NULL,
	wizard_id     TEXT NOT NULL DEFAULT '',
	step_index    INTEGER NOT NULL DEFAULT 0,
	description   TEXT NOT NULL DEFAULT '',
	decision      TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS workflows_type_status ON workflows (workflow_type, status);
`

// Store keeps approval requests in SQLite
type Store struct {
	db *sql.DB
}

// Open opens or creates the approval database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in effect.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add records a new pending request. Adding the same external reference
// again replaces the previous request.
func (s *Store) Add(ctx context.Context, req Request) error {
	if req.ExternalRef == "" {
		return errors.New("external reference is required")
	}
	if req.WorkflowType == "" {
		return errors.New("workflow type is required")
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflows (external_ref, workflow_type, status, wizard_id, step_index, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_ref) DO UPDATE SET
			workflow_type = excluded.workflow_type,
			status = excluded.status,
			wizard_id = excluded.wizard_id,
			step_index = excluded.step_index,
			description = excluded.description,
			decision = '',
			updated_at = excluded.updated_at`,
		req.ExternalRef, req.WorkflowType, string(StatusCreated), req.WizardID, req.StepIndex, req.Description,
		now.UnixNano(), now.UnixNano())
	if err != nil {
		return fmt.Errorf("insert approval request: %w", err)
	}
	return nil
}

// List returns requests filtered by workflow type and status.
// Empty filters match everything.
func (s *Store) List(ctx context.Context, workflowType string, status Status) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT external_ref, workflow_type, status, wizard_id, step_index, description, decision, created_at, updated_at
		FROM workflows
		WHERE (? = '' OR workflow_type = ?) AND (? = '' OR status = ?)
		ORDER BY created_at`,
		workflowType, workflowType, string(status), string(status))
	if err != nil {
		return nil, fmt.Errorf("query approval requests: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approval requests: %w", err)
	}
	return out, nil
}

// GetByExternalRef returns the request with the given reference.
// An empty status matches any status.
func (s *Store) GetByExternalRef(ctx context.Context, externalRef string, status Status) (Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT external_ref, workflow_type, status, wizard_id, step_index, description, decision, created_at, updated_at
		FROM workflows
		WHERE external_ref = ? AND (? = '' OR status = ?)`,
		externalRef, string(status), string(status))

	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, fmt.Errorf("external workflow reference %s: %w", externalRef, ErrNotFound)
	}
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// Complete records the approver's decision on a pending request
func (s *Store) Complete(ctx context.Context, externalRef string, decision Status, comment string) error {
	if decision != StatusApproved && decision != StatusRejected {
		return fmt.Errorf("invalid decision '%s'", decision)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE workflows SET status = ?, decision = ?, updated_at = ?
		WHERE external_ref = ? AND status = ?`,
		string(decision), comment, time.Now().UTC().UnixNano(), externalRef, string(StatusCreated))
	if err != nil {
		return fmt.Errorf("complete approval request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete approval request: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Distinguish an unknown reference from one already decided
	if _, err := s.GetByExternalRef(ctx, externalRef, ""); err != nil {
		return err
	}
	return fmt.Errorf("external workflow reference %s: %w", externalRef, ErrAlreadyCompleted)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (Request, error) {
	var (
		req                  Request
		status               string
		createdAt, updatedAt int64
	)
	err := row.Scan(&req.ExternalRef, &req.WorkflowType, &status, &req.WizardID, &req.StepIndex,
		&req.Description, &req.Decision, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Request{}, err
		}
		return Request{}, fmt.Errorf("scan approval request: %w", err)
	}
	req.Status = Status(status)
	req.CreatedAt = time.Unix(0, createdAt).UTC()
	req.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return req, nil
}
