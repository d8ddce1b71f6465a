package builder

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/simon020286/go-wizard/config"
	"gopkg.in/yaml.v3"
)

// ServiceRegistry maintains all loaded service definitions
type ServiceRegistry struct {
	services map[string]*config.ServiceDefinition
}

// NewServiceRegistry creates a new registry
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[string]*config.ServiceDefinition),
	}
}

// Register registers a service definition
func (sr *ServiceRegistry) Register(def *config.ServiceDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid service definition: %w", err)
	}
	sr.services[def.Service.Name] = def
	return nil
}

// Get returns a service definition by name
func (sr *ServiceRegistry) Get(name string) (*config.ServiceDefinition, bool) {
	def, exists := sr.services[name]
	return def, exists
}

// List returns all registered service names, sorted
func (sr *ServiceRegistry) List() []string {
	names := make([]string, 0, len(sr.services))
	for name := range sr.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered services
func (sr *ServiceRegistry) Count() int {
	return len(sr.services)
}

// LoadServicesFromEmbed loads services from an embed.FS
func (sr *ServiceRegistry) LoadServicesFromEmbed(embedFS embed.FS, basePath string) error {
	entries, err := fs.ReadDir(embedFS, basePath)
	if err != nil {
		return fmt.Errorf("failed to read embedded services directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		// embed.FS paths always use forward slashes
		filePath := basePath + "/" + entry.Name()
		data, err := fs.ReadFile(embedFS, filePath)
		if err != nil {
			return fmt.Errorf("failed to read embedded file %s: %w", filePath, err)
		}

		if err := sr.LoadServiceFromBytes(data, entry.Name()); err != nil {
			return fmt.Errorf("failed to load embedded service %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// LoadServicesFromDirectory loads services from a filesystem directory.
// A missing directory is not an error.
func (sr *ServiceRegistry) LoadServicesFromDirectory(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read services directory %s: %w", dirPath, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		filePath := filepath.Join(dirPath, entry.Name())
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filePath, err)
		}

		if err := sr.LoadServiceFromBytes(data, entry.Name()); err != nil {
			slog.Warn("Skipping invalid service definition.", "file", entry.Name(), "err", err)
			continue
		}
	}

	return nil
}

// LoadServiceFromBytes loads a service definition from YAML bytes.
// The file name is used when the definition has no name.
func (sr *ServiceRegistry) LoadServiceFromBytes(data []byte, filename string) error {
	var def config.ServiceDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if def.Service.Name == "" {
		def.Service.Name = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	return sr.Register(&def)
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// GetServicesPath returns the path to the custom services directory.
// Checks environment variable first, then uses default directory.
func GetServicesPath() string {
	if path := os.Getenv("GO_WIZARD_SERVICES_PATH"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./services"
	}

	return filepath.Join(homeDir, ".go-wizard", "services")
}
