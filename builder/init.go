package builder

import (
	"embed"
	"fmt"
	"log/slog"
	"sync"
)

//go:embed services/*.yaml
var embeddedServices embed.FS

var (
	globalServiceRegistry *ServiceRegistry
	servicesMu            sync.RWMutex
)

func init() {
	registry := NewServiceRegistry()

	if err := registry.LoadServicesFromEmbed(embeddedServices, "services"); err != nil {
		slog.Warn("Failed to load embedded services.", "err", err)
	}

	customServicesPath := GetServicesPath()
	if err := registry.LoadServicesFromDirectory(customServicesPath); err != nil {
		slog.Warn("Failed to load custom services.", "path", customServicesPath, "err", err)
	}

	globalServiceRegistry = registry
}

// GetGlobalServiceRegistry returns the global service registry
func GetGlobalServiceRegistry() *ServiceRegistry {
	servicesMu.RLock()
	defer servicesMu.RUnlock()
	return globalServiceRegistry
}

// ReloadServices reloads embedded and custom services
func ReloadServices() error {
	newRegistry := NewServiceRegistry()

	if err := newRegistry.LoadServicesFromEmbed(embeddedServices, "services"); err != nil {
		return fmt.Errorf("failed to load embedded services: %w", err)
	}

	customServicesPath := GetServicesPath()
	if err := newRegistry.LoadServicesFromDirectory(customServicesPath); err != nil {
		return fmt.Errorf("failed to load custom services: %w", err)
	}

	servicesMu.Lock()
	globalServiceRegistry = newRegistry
	servicesMu.Unlock()

	slog.Info("Reloaded services.", "count", newRegistry.Count(), "services", newRegistry.List())
	return nil
}
