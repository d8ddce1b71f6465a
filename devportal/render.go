package devportal

import (
	"encoding/base64"
	"fmt"
	"strings"
	"text/template"

	"github.com/simon020286/go-wizard/config"
)

// renderHeaders builds the default and authentication headers of a service
func renderHeaders(def *config.ServiceDefinition, values map[string]any) (map[string]string, error) {
	headers := make(map[string]string)

	for k, v := range def.Defaults.Headers {
		rendered, err := renderGoTemplate(v, values)
		if err != nil {
			return nil, fmt.Errorf("failed to render default header %s: %w", k, err)
		}
		headers[k] = rendered
	}

	if def.Defaults.Auth != nil {
		authHeaders, err := renderAuthHeaders(def.Defaults.Auth, values)
		if err != nil {
			return nil, fmt.Errorf("failed to render auth headers: %w", err)
		}
		for k, v := range authHeaders {
			headers[k] = v
		}
	}

	return headers, nil
}

// renderAuthHeaders builds authentication headers
func renderAuthHeaders(auth *config.AuthConfig, values map[string]any) (map[string]string, error) {
	headers := make(map[string]string)

	switch auth.Type {
	case "bearer", "api_key", "custom":
		value, err := renderGoTemplate(auth.Value, values)
		if err != nil {
			return nil, fmt.Errorf("failed to render auth value: %w", err)
		}
		headers[auth.Header] = value

	case "basic":
		username, err := renderGoTemplate(auth.Username, values)
		if err != nil {
			return nil, fmt.Errorf("failed to render auth username: %w", err)
		}
		password, err := renderGoTemplate(auth.Password, values)
		if err != nil {
			return nil, fmt.Errorf("failed to render auth password: %w", err)
		}
		credentials := fmt.Sprintf("%s:%s", username, password)
		encoded := base64.StdEncoding.EncodeToString([]byte(credentials))
		headers["Authorization"] = "Basic " + encoded
	}

	return headers, nil
}

// renderGoTemplate renders tmplStr with Go's template engine.
// Missing keys are an error so a misspelt secret never yields an empty header.
func renderGoTemplate(tmplStr string, values map[string]any) (string, error) {
	if !strings.Contains(tmplStr, "{{") {
		return tmplStr, nil
	}

	tmpl, err := template.New("tpl").Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
