package devportal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/simon020286/go-wizard/config"
)

// Operation names a service definition must provide
const (
	OpCreateApplication = "create_application"
	OpSubscribe         = "subscribe"
	OpGenerateKeys      = "generate_keys"
	OpGenerateToken     = "generate_token"
)

const defaultTimeout = 30 * time.Second

// StatusError is returned when the portal answers with a non-2xx status
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err is a 401 from the portal
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// Client talks to the developer portal REST API described by a service definition
type Client struct {
	def        *config.ServiceDefinition
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

// NewClient creates a client. values fill the base_url, header and auth
// templates of the definition, typically the wizard variables and secrets.
func NewClient(def *config.ServiceDefinition, values map[string]any) (*Client, error) {
	if err := config.ValidateServiceDefinition(def); err != nil {
		return nil, fmt.Errorf("invalid service definition: %w", err)
	}
	if err := config.RequireOperations(def, OpCreateApplication, OpSubscribe, OpGenerateKeys, OpGenerateToken); err != nil {
		return nil, err
	}

	baseURL, err := renderGoTemplate(def.Defaults.BaseURL, values)
	if err != nil {
		return nil, fmt.Errorf("failed to render base_url: %w", err)
	}

	headers, err := renderHeaders(def, values)
	if err != nil {
		return nil, err
	}

	return &Client{
		def:        def,
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    headers,
		httpClient: &http.Client{},
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

func (c *Client) CreateApplication(ctx context.Context, req ApplicationRequest) (*Application, error) {
	var app Application
	if err := c.do(ctx, OpCreateApplication, nil, req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) Subscribe(ctx context.Context, req SubscriptionRequest) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, OpSubscribe, nil, req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) GenerateKeys(ctx context.Context, applicationID string, req KeyRequest) (*Keys, error) {
	var keys Keys
	params := map[string]any{"application_id": applicationID}
	if err := c.do(ctx, OpGenerateKeys, params, req, &keys); err != nil {
		return nil, err
	}
	return &keys, nil
}

func (c *Client) GenerateToken(ctx context.Context, applicationID string, req TokenRequest) (*AccessToken, error) {
	var token AccessToken
	params := map[string]any{
		"application_id": applicationID,
		"key_type":       string(req.KeyType),
	}
	if err := c.do(ctx, OpGenerateToken, params, req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// do executes an operation of the service definition and decodes the JSON answer into out
func (c *Client) do(ctx context.Context, opName string, params map[string]any, body any, out any) error {
	op, err := c.def.GetOperation(opName)
	if err != nil {
		return err
	}

	path, err := renderGoTemplate(op.Path, params)
	if err != nil {
		return fmt.Errorf("failed to render path for %s: %w", opName, err)
	}
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	ctx, cancel := context.WithTimeout(ctx, c.timeout(op))
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to serialize body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range op.Headers {
		req.Header.Set(key, value)
	}
	if bodyReader != nil {
		contentType := c.def.Defaults.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Calling developer portal.", "operation", opName, "method", op.Method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", opName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{
			Operation:  opName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", opName, err)
	}
	return nil
}

func (c *Client) timeout(op *config.OperationDef) time.Duration {
	if op.Timeout > 0 {
		return time.Duration(op.Timeout) * time.Second
	}
	if c.def.Defaults.Timeout > 0 {
		return time.Duration(c.def.Defaults.Timeout) * time.Second
	}
	return defaultTimeout
}
